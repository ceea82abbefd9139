package domain

import (
	"fmt"
	"net/url"
	"strconv"
)

// SearchQuery is one page request against the hotel search endpoint.
type SearchQuery struct {
	Page        int
	PageSize    int
	Destination *string
	Keyword     *string
	StarRating  *int
	PriceMin    *float64
	PriceMax    *float64
	Tag         *string
}

// Offset of the first row for this page.
func (q SearchQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// Values encodes the query the way the search endpoint expects it.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Destination != nil {
		v.Set("city", *q.Destination)
	}
	if q.Keyword != nil {
		v.Set("keyword", *q.Keyword)
	}
	if q.StarRating != nil {
		v.Set("star", strconv.Itoa(*q.StarRating))
	}
	if q.PriceMin != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.PriceMin, 'f', -1, 64))
	}
	if q.PriceMax != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.PriceMax, 'f', -1, 64))
	}
	if q.Tag != nil {
		v.Set("tag", *q.Tag)
	}
	return v
}

// CacheKey is stable for equal queries.
func (q SearchQuery) CacheKey() string {
	return "search:" + q.Values().Encode()
}

type SearchPage struct {
	Items    []HotelSummary `json:"data"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// Validate rejects pages carrying items the list cannot render.
func (p SearchPage) Validate() error {
	for i, it := range p.Items {
		if it.ID <= 0 {
			return fmt.Errorf("item %d: invalid id %d: %w", i, it.ID, ErrMalformedPayload)
		}
		if it.NameCN == "" {
			return fmt.Errorf("item %d (id %d): missing name: %w", i, it.ID, ErrMalformedPayload)
		}
	}
	return nil
}
