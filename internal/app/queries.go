package app

import (
	"context"
	"fmt"
	"time"

	"trip_hotel/internal/domain"
)

type QueryService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func hotelKey(id int64) string    { return fmt.Sprintf("hotel:%d", id) }
func bannersKey(limit int) string { return fmt.Sprintf("banners:%d", limit) }

// BannerLimit is the number of banner hotels served on the home screen.
const BannerLimit = 5

func (s *QueryService) GetHotel(ctx context.Context, id int64) (domain.HotelView, error) {
	key := hotelKey(id)
	var hv domain.HotelView
	if ok, _ := s.cache.Get(ctx, key, &hv); ok {
		return hv, nil
	}
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.HotelView{}, err
	}
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

// SearchHotels serves one page, cached per normalised query.
func (s *QueryService) SearchHotels(ctx context.Context, q domain.SearchQuery) (domain.SearchPage, error) {
	key := q.CacheKey()
	var out domain.SearchPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok && out.Items != nil {
		return out, nil
	}

	page, err := s.repo.SearchHotels(ctx, q)
	if err != nil {
		return domain.SearchPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array
	page = copySearchPage(page)
	_ = s.cache.Set(ctx, key, page, int(s.cacheTTL.Seconds()))
	return page, nil
}

func (s *QueryService) Banners(ctx context.Context, limit int) ([]domain.HotelSummary, error) {
	key := bannersKey(limit)
	var out []domain.HotelSummary
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	bs, err := s.repo.ListBanners(ctx, limit)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, bs, int(s.cacheTTL.Seconds()))
	return bs, nil
}

func copySearchPage(in domain.SearchPage) domain.SearchPage {
	out := domain.SearchPage{Page: in.Page, PageSize: in.PageSize, Items: make([]domain.HotelSummary, len(in.Items))}
	copy(out.Items, in.Items)
	return out
}
