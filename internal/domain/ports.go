package domain

import "context"

type HotelRepository interface {
	// Write paths
	UpsertHotel(ctx context.Context, h Hotel) error

	// Read paths
	GetHotel(ctx context.Context, id int64) (HotelView, error)
	SearchHotels(ctx context.Context, q SearchQuery) (SearchPage, error)
	ListBanners(ctx context.Context, limit int) ([]HotelSummary, error)
}

// SearchTransport is the remote paginated search endpoint.
// Implementations must stop delivering a result once ctx is cancelled.
type SearchTransport interface {
	Search(ctx context.Context, q SearchQuery) (SearchPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models
type HotelView struct {
	ID          int64    `json:"id"`
	NameCN      string   `json:"name_cn"`
	NameEN      *string  `json:"name_en,omitempty"`
	City        string   `json:"city"`
	Address     *string  `json:"address,omitempty"`
	Star        int      `json:"star"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	Description *string  `json:"description,omitempty"`
	LowestPrice *float64 `json:"lowestPrice,omitempty"`
}
