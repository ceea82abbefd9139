package search_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"trip_hotel/internal/domain"
	"trip_hotel/internal/search"
)

// ---- fakes ----

type call struct {
	q        domain.SearchQuery
	ctx      context.Context
	reply    chan reply
	returned chan struct{}
}

type reply struct {
	page domain.SearchPage
	err  error
}

// fakeTransport blocks every Search until the test answers it.
type fakeTransport struct {
	mu     sync.Mutex
	calls  []*call
	issued chan *call
	// ignoreCancel makes Search wait for its reply even after ctx is
	// cancelled, like a transport whose abort arrives too late.
	ignoreCancel bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{issued: make(chan *call, 64)}
}

func (f *fakeTransport) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchPage, error) {
	c := &call{q: q, ctx: ctx, reply: make(chan reply, 1), returned: make(chan struct{})}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	f.issued <- c
	defer close(c.returned)

	if f.ignoreCancel {
		r := <-c.reply
		return r.page, r.err
	}
	select {
	case r := <-c.reply:
		return r.page, r.err
	case <-ctx.Done():
		return domain.SearchPage{}, ctx.Err()
	}
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.issued:
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a fetch to be issued")
		return nil
	}
}

func (c *call) answer(t *testing.T, r reply) {
	t.Helper()
	c.reply <- r
	select {
	case <-c.returned:
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch for page %d did not return", c.q.Page)
	}
}

func hotels(from, n int) []domain.HotelSummary {
	out := make([]domain.HotelSummary, n)
	for i := range out {
		id := int64(from + i)
		out[i] = domain.HotelSummary{ID: id, NameCN: fmt.Sprintf("hotel-%d", id), City: "上海"}
	}
	return out
}

func ok(items []domain.HotelSummary) reply {
	return reply{page: domain.SearchPage{Items: items}}
}

// waitSettled lets the settling goroutine finish applying.
func waitSettled(c *search.Controller) { c.Wait() }

func ids(items []domain.HotelSummary) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// ---- tests ----

func TestController_TwoPagesThenEnd(t *testing.T) {
	tr := newFakeTransport()
	c := search.NewController(tr)
	defer c.Close()

	if c.State() != search.Idle {
		t.Fatalf("initial state = %s", c.State())
	}

	c.NotifyFilterChanged()
	if !c.IsLoadingFirstPage() {
		t.Fatalf("expected first page loading, got %s", c.State())
	}
	first := tr.next(t)
	if first.q.Page != 1 || first.q.PageSize != search.PageSize || first.q.Destination != nil {
		t.Fatalf("unexpected first query: %+v", first.q)
	}
	first.answer(t, ok(hotels(1, 10)))
	waitSettled(c)

	if c.State() != search.Ready || !c.HasMore() {
		t.Fatalf("after page 1: state=%s hasMore=%v", c.State(), c.HasMore())
	}

	c.NotifyScrollNearEnd()
	if !c.IsLoadingMore() {
		t.Fatalf("expected next page loading, got %s", c.State())
	}
	second := tr.next(t)
	if second.q.Page != 2 {
		t.Fatalf("expected page 2, got %d", second.q.Page)
	}
	second.answer(t, ok(hotels(11, 4)))
	waitSettled(c)

	items := c.CurrentItems()
	if len(items) != 14 || items[0].ID != 1 || items[13].ID != 14 {
		t.Fatalf("unexpected items: %v", ids(items))
	}
	if c.HasMore() {
		t.Fatalf("short page must end pagination")
	}

	c.NotifyScrollNearEnd()
	c.NotifyScrollNearEnd()
	waitSettled(c)
	if n := tr.count(); n != 2 {
		t.Fatalf("expected 2 fetches, got %d", n)
	}
}

func TestController_LoadMoreIsIdempotentWhileFetching(t *testing.T) {
	tr := newFakeTransport()
	c := search.NewController(tr)
	defer c.Close()

	c.NotifyFilterChanged()
	// duplicate triggers during the first page are ignored
	c.NotifyScrollNearEnd()
	tr.next(t).answer(t, ok(hotels(1, 10)))
	waitSettled(c)

	for i := 0; i < 5; i++ {
		c.NotifyScrollNearEnd()
	}
	p2 := tr.next(t)
	if tr.count() != 2 {
		t.Fatalf("expected exactly one next-page fetch, total=%d", tr.count())
	}
	p2.answer(t, ok(hotels(11, 10)))
	waitSettled(c)

	if !c.HasMore() || len(c.CurrentItems()) != 20 {
		t.Fatalf("full page must keep hasMore; items=%d", len(c.CurrentItems()))
	}
}

func TestController_FilterChangeDiscardsInFlightNextPage(t *testing.T) {
	tr := newFakeTransport()
	tr.ignoreCancel = true
	c := search.NewController(tr)
	defer c.Close()

	c.NotifyFilterChanged()
	tr.next(t).answer(t, ok(hotels(1, 10)))
	waitSettled(c)

	c.NotifyScrollNearEnd()
	oldPage2 := tr.next(t)

	c.Apply(func(f *search.FilterState) { f.SetDestination("北京") })
	if oldPage2.ctx.Err() == nil {
		t.Fatalf("superseded fetch must be cancelled when the new one is issued")
	}
	newPage1 := tr.next(t)
	if newPage1.q.Page != 1 || newPage1.q.Destination == nil || *newPage1.q.Destination != "北京" {
		t.Fatalf("unexpected new query: %+v", newPage1.q)
	}

	newPage1.answer(t, ok(hotels(100, 3)))
	// the stale page 2 resolves successfully after the new first page
	oldPage2.answer(t, ok(hotels(11, 10)))
	waitSettled(c)

	got := ids(c.CurrentItems())
	if len(got) != 3 || got[0] != 100 || got[2] != 102 {
		t.Fatalf("store must hold only the new generation's first page, got %v", got)
	}
	if c.HasMore() {
		t.Fatalf("3 < page size must end pagination")
	}
	if c.LastError() != nil {
		t.Fatalf("unexpected error: %v", c.LastError())
	}
}

func TestController_StaleFailureIsSwallowed(t *testing.T) {
	tr := newFakeTransport()
	tr.ignoreCancel = true
	c := search.NewController(tr)
	defer c.Close()

	c.NotifyFilterChanged()
	old := tr.next(t)
	c.Apply(func(f *search.FilterState) { f.SetKeyword("spa") })
	fresh := tr.next(t)

	old.answer(t, reply{err: errors.New("connection reset")})
	fresh.answer(t, ok(hotels(1, 10)))
	waitSettled(c)

	if c.LastError() != nil {
		t.Fatalf("stale failure surfaced: %v", c.LastError())
	}
	if !c.HasMore() || len(c.CurrentItems()) != 10 {
		t.Fatalf("stale failure mutated cursor or store")
	}
}

func TestController_RapidFilterChangesKeepSingleFlight(t *testing.T) {
	tr := newFakeTransport()
	c := search.NewController(tr)
	defer c.Close()

	var calls []*call
	for i := 0; i < 5; i++ {
		kw := fmt.Sprintf("kw-%d", i)
		c.Apply(func(f *search.FilterState) { f.SetKeyword(kw) })
		calls = append(calls, tr.next(t))
	}
	for _, old := range calls[:4] {
		if old.ctx.Err() == nil {
			t.Fatalf("older fetch %q still live", *old.q.Keyword)
		}
	}
	last := calls[4]
	if *last.q.Keyword != "kw-4" {
		t.Fatalf("latest query keyword = %q", *last.q.Keyword)
	}
	last.answer(t, ok(hotels(1, 2)))
	waitSettled(c)
	if got := ids(c.CurrentItems()); len(got) != 2 {
		t.Fatalf("unexpected items %v", got)
	}
	if c.Generation() != c.Filters().Generation {
		t.Fatalf("cursor generation %d != filter generation %d", c.Generation(), c.Filters().Generation)
	}
}

func TestController_FailureKeepsItemsAndStopsPaging(t *testing.T) {
	tr := newFakeTransport()
	c := search.NewController(tr)
	defer c.Close()

	c.NotifyFilterChanged()
	tr.next(t).answer(t, ok(hotels(1, 10)))
	waitSettled(c)

	c.NotifyScrollNearEnd()
	boom := errors.New("remote 503")
	tr.next(t).answer(t, reply{err: boom})
	waitSettled(c)

	err := c.LastError()
	var fe *search.FetchError
	if !errors.As(err, &fe) || fe.Page != 2 || !errors.Is(err, boom) {
		t.Fatalf("expected FetchError for page 2, got %v", err)
	}
	if len(c.CurrentItems()) != 10 || c.HasMore() || c.State() != search.Ready {
		t.Fatalf("failure must keep items and stop paging")
	}

	c.NotifyScrollNearEnd()
	if tr.count() != 2 {
		t.Fatalf("no automatic retry expected")
	}

	// explicit reload clears the error and restarts from page 1
	c.Reload()
	p := tr.next(t)
	if p.q.Page != 1 {
		t.Fatalf("reload must fetch page 1, got %d", p.q.Page)
	}
	if c.LastError() != nil {
		t.Fatalf("error must clear on new generation")
	}
	p.answer(t, ok(hotels(1, 10)))
	waitSettled(c)
	if !c.HasMore() {
		t.Fatalf("reload must restore pagination")
	}
}

func TestController_MalformedPageIsNotApplied(t *testing.T) {
	tr := newFakeTransport()
	c := search.NewController(tr)
	defer c.Close()

	c.NotifyFilterChanged()
	bad := hotels(1, 10)
	bad[5].NameCN = ""
	tr.next(t).answer(t, ok(bad))
	waitSettled(c)

	if !errors.Is(c.LastError(), domain.ErrMalformedPayload) {
		t.Fatalf("expected malformed payload error, got %v", c.LastError())
	}
	if len(c.CurrentItems()) != 0 {
		t.Fatalf("malformed page partially applied")
	}
}

func TestController_EmptyFirstPage(t *testing.T) {
	tr := newFakeTransport()
	c := search.NewController(tr)
	defer c.Close()

	c.NotifyFilterChanged()
	tr.next(t).answer(t, ok(nil))
	waitSettled(c)

	if c.State() != search.Ready || c.HasMore() || c.LastError() != nil || len(c.CurrentItems()) != 0 {
		t.Fatalf("empty first page must be a quiet empty Ready state")
	}
}

func TestController_QueryUsesSnapshotFromEntry(t *testing.T) {
	tr := newFakeTransport()
	fs := search.NewFilterState()
	star := 5
	fs.SetStarRating(&star)
	fs.SetPriceBand(search.PriceBands[2])
	fs.SetTag("亲子")
	c := search.NewController(tr, search.WithFilters(fs))
	defer c.Close()

	c.NotifyFilterChanged()
	q := tr.next(t).q
	if q.StarRating == nil || *q.StarRating != 5 || q.Tag == nil || *q.Tag != "亲子" {
		t.Fatalf("unexpected query: %+v", q)
	}
	if q.PriceMin == nil || *q.PriceMin != 500 || q.PriceMax == nil || *q.PriceMax != 1000 {
		t.Fatalf("unexpected price band: %+v", q)
	}
}

func TestController_ApplyWithoutChangeIssuesNothing(t *testing.T) {
	tr := newFakeTransport()
	c := search.NewController(tr)
	defer c.Close()

	if c.Apply(func(f *search.FilterState) { f.SetRoomCount(1) }) {
		t.Fatalf("writing the default room count is not a mutation")
	}
	if tr.count() != 0 {
		t.Fatalf("unexpected fetch")
	}
}

func TestController_OnChangeAndClose(t *testing.T) {
	tr := newFakeTransport()
	var mu sync.Mutex
	changes := 0
	c := search.NewController(tr, search.WithOnChange(func() {
		mu.Lock()
		changes++
		mu.Unlock()
	}))

	c.NotifyFilterChanged()
	inflight := tr.next(t)
	c.Close()
	if inflight.ctx.Err() == nil {
		t.Fatalf("close must cancel the in-flight fetch")
	}

	if c.State() != search.Ready || c.HasMore() {
		t.Fatalf("closed controller must not stay loading: state=%s hasMore=%v", c.State(), c.HasMore())
	}

	mu.Lock()
	defer mu.Unlock()
	if changes != 1 {
		t.Fatalf("expected 1 change notification, got %d", changes)
	}
}

func TestController_RepeatedNotifyGetsNewGeneration(t *testing.T) {
	tr := newFakeTransport()
	tr.ignoreCancel = true
	c := search.NewController(tr)
	defer c.Close()

	c.NotifyFilterChanged()
	first := tr.next(t)
	gen1 := c.Generation()

	c.NotifyFilterChanged()
	second := tr.next(t)
	if c.Generation() == gen1 {
		t.Fatalf("second notify reused generation %d", gen1)
	}
	if c.Generation() != c.Filters().Generation {
		t.Fatalf("cursor generation %d != filter generation %d", c.Generation(), c.Filters().Generation)
	}

	second.answer(t, ok(hotels(100, 3)))
	first.answer(t, ok(hotels(1, 10)))
	waitSettled(c)
	if got := ids(c.CurrentItems()); len(got) != 3 || got[0] != 100 {
		t.Fatalf("superseded page leaked into the list: %v", got)
	}
}
