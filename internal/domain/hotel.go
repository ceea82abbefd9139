package domain

type Hotel struct {
	ID          int64
	NameCN      string
	NameEN      *string
	City        string
	Address     *string
	Stars       int
	Tags        []string
	Images      []string
	Description *string
	LowestPrice *float64
	Status      string // online|offline|pending
	MerchantID  *int64
	RawJSON     []byte // full merchant payload
}

const StatusOnline = "online"

// HotelSummary is the list-card projection of a hotel.
type HotelSummary struct {
	ID          int64    `json:"id"`
	NameCN      string   `json:"name_cn"`
	NameEN      *string  `json:"name_en,omitempty"`
	City        string   `json:"city"`
	Address     *string  `json:"address,omitempty"`
	Star        int      `json:"star"`
	Tags        []string `json:"tags"`
	Thumbnail   *string  `json:"thumbnail,omitempty"`
	LowestPrice *float64 `json:"lowestPrice,omitempty"`
}

// DisplayName picks the english name when asked for and present.
func (h HotelSummary) DisplayName(lang string) string {
	if lang == "en" && h.NameEN != nil && *h.NameEN != "" {
		return *h.NameEN
	}
	return h.NameCN
}
