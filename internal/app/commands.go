package app

import (
	"context"
	"errors"
	"fmt"

	"trip_hotel/internal/adapters/observability"
	"trip_hotel/internal/domain"
)

// ErrSkipped marks a payload that cannot become a listable hotel.
var ErrSkipped = errors.New("import: skipped")

type ImportService struct {
	repo  domain.HotelRepository
	cache domain.Cache
}

func NewImportService(r domain.HotelRepository, cache domain.Cache) *ImportService {
	return &ImportService{repo: r, cache: cache}
}

// ImportHotel maps one merchant payload and upserts it, returning the hotel id.
// Payloads without id, name or city are rejected with ErrSkipped.
func (s *ImportService) ImportHotel(ctx context.Context, payload map[string]any) (int64, error) {
	id, err := s.importHotel(ctx, payload)
	switch {
	case err == nil:
		observability.ObserveImport("ok")
	case errors.Is(err, ErrSkipped):
		observability.ObserveImport("skipped")
	default:
		observability.ObserveImport("failed")
	}
	return id, err
}

func (s *ImportService) importHotel(ctx context.Context, payload map[string]any) (int64, error) {
	h := mapHotel(payload)
	switch {
	case h.ID <= 0:
		return 0, fmt.Errorf("missing id: %w", ErrSkipped)
	case h.NameCN == "":
		return h.ID, fmt.Errorf("hotel %d: missing name: %w", h.ID, ErrSkipped)
	case h.City == "":
		return h.ID, fmt.Errorf("hotel %d: missing city: %w", h.ID, ErrSkipped)
	}

	if err := s.repo.UpsertHotel(ctx, h); err != nil {
		return h.ID, fmt.Errorf("upsert hotel %d: %w", h.ID, err)
	}

	// Listing pages expire by TTL; detail and banners are evicted now.
	if s.cache != nil {
		_ = s.cache.Del(ctx, hotelKey(h.ID))
		_ = s.cache.Del(ctx, bannersKey(BannerLimit))
	}
	return h.ID, nil
}
