package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"trip_hotel/internal/app"
	"trip_hotel/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	hv       domain.HotelView
	page     domain.SearchPage
	banners  []domain.HotelSummary
	upserts  []domain.Hotel
	searches int
}

func (f *fakeRepo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	f.upserts = append(f.upserts, h)
	return nil
}
func (f *fakeRepo) GetHotel(ctx context.Context, id int64) (domain.HotelView, error) {
	if f.hv.ID != id {
		return domain.HotelView{}, domain.ErrNotFound
	}
	return f.hv, nil
}
func (f *fakeRepo) SearchHotels(ctx context.Context, q domain.SearchQuery) (domain.SearchPage, error) {
	f.searches++
	return f.page, nil
}
func (f *fakeRepo) ListBanners(ctx context.Context, limit int) ([]domain.HotelSummary, error) {
	return f.banners, nil
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

// ---- tests ----

func TestGetHotel_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{hv: domain.HotelView{ID: 42, NameCN: "测试酒店"}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	h, err := q.GetHotel(context.Background(), 42)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h.ID != 42 || h.NameCN != "测试酒店" {
		t.Fatalf("unexpected hotel: %+v", h)
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.hv.NameCN = "SHOULD NOT SEE THIS"

	h2, err := q.GetHotel(context.Background(), 42)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h2.NameCN != "测试酒店" {
		t.Fatalf("expected cached name, got %s", h2.NameCN)
	}
}

func TestSearchHotels_CachedPerQuery(t *testing.T) {
	repo := &fakeRepo{page: domain.SearchPage{Items: []domain.HotelSummary{{ID: 1, NameCN: "a"}}, Page: 1, PageSize: 10}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, time.Minute)
	ctx := context.Background()

	city := "上海"
	sq := domain.SearchQuery{Page: 1, PageSize: 10, Destination: &city}
	if _, err := q.SearchHotels(ctx, sq); err != nil {
		t.Fatalf("err: %v", err)
	}
	repo.page.Items[0].NameCN = "changed"
	out, _ := q.SearchHotels(ctx, sq)
	if repo.searches != 1 || out.Items[0].NameCN != "a" {
		t.Fatalf("expected cached page, searches=%d item=%+v", repo.searches, out.Items[0])
	}

	// a different page is a different key
	sq.Page = 2
	_, _ = q.SearchHotels(ctx, sq)
	if repo.searches != 2 {
		t.Fatalf("page 2 must miss the cache")
	}
}

func TestBanners_Cached(t *testing.T) {
	repo := &fakeRepo{banners: []domain.HotelSummary{{ID: 3, NameCN: "banner"}}}
	q := app.NewQueryService(repo, &fakeCache{}, time.Minute)

	bs, err := q.Banners(context.Background(), 5)
	if err != nil || len(bs) != 1 {
		t.Fatalf("unexpected banners %v err=%v", bs, err)
	}
	repo.banners = nil
	bs, _ = q.Banners(context.Background(), 5)
	if len(bs) != 1 {
		t.Fatalf("expected cached banners")
	}
}
