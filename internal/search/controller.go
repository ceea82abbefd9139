// Package search drives the hotel list: it turns filter changes into a fresh
// paginated query, fetches further pages on demand and makes sure a
// superseded response never reaches the list being shown.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"trip_hotel/internal/adapters/observability"
	"trip_hotel/internal/domain"
)

type State int

const (
	Idle State = iota
	FetchingFirstPage
	Ready
	FetchingNextPage
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchingFirstPage:
		return "fetching_first_page"
	case Ready:
		return "ready"
	case FetchingNextPage:
		return "fetching_next_page"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// FetchError is a failed fetch of the current generation, kept for display.
type FetchError struct {
	Generation uint64
	Page       int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("search page %d failed: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithOnChange registers fn to run after every visible state change.
// fn runs without the controller lock held and may read from the controller.
func WithOnChange(fn func()) Option { return func(c *Controller) { c.onChange = fn } }

// WithFilters starts the controller from an existing filter state.
func WithFilters(f *FilterState) Option { return func(c *Controller) { c.filters = f } }

// Controller is safe for concurrent use. Every event runs to completion under
// one lock; fetches run on their own goroutine and re-enter on settlement.
type Controller struct {
	mu        sync.Mutex
	transport domain.SearchTransport
	filters   *FilterState
	snapshot  Filter
	guard     RequestGuard
	cursor    PageCursor
	store     ResultStore
	state     State
	lastErr   *FetchError

	log      zerolog.Logger
	onChange func()

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

func NewController(t domain.SearchTransport, opts ...Option) *Controller {
	c := &Controller{transport: t, log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	if c.filters == nil {
		c.filters = NewFilterState()
	}
	c.snapshot = c.filters.Snapshot()
	c.base, c.stop = context.WithCancel(context.Background())
	return c
}

// NotifyFilterChanged starts a new generation from the current filters.
// Unchanged filters still get a fresh generation once a search has run.
func (c *Controller) NotifyFilterChanged() {
	c.mu.Lock()
	if c.state != Idle && c.filters.Generation() == c.cursor.Generation {
		c.filters.Touch()
	}
	c.onFilterChanged()
	c.mu.Unlock()
	c.changed()
}

// NotifyScrollNearEnd asks for the next page. Safe to call repeatedly.
func (c *Controller) NotifyScrollNearEnd() {
	c.mu.Lock()
	issued := c.onLoadMoreRequested()
	c.mu.Unlock()
	if issued {
		c.changed()
	}
}

// Apply mutates the filters and restarts the search when they changed.
func (c *Controller) Apply(fn func(f *FilterState)) bool {
	c.mu.Lock()
	before := c.filters.Generation()
	fn(c.filters)
	mutated := c.filters.Generation() != before
	if mutated {
		c.onFilterChanged()
	}
	c.mu.Unlock()
	if mutated {
		c.changed()
	}
	return mutated
}

// Reload restarts the current criteria under a new generation.
func (c *Controller) Reload() {
	c.mu.Lock()
	c.filters.Touch()
	c.onFilterChanged()
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) onFilterChanged() {
	c.snapshot = c.filters.Snapshot()
	gen := c.snapshot.Generation
	c.guard.Cancel()
	c.cursor.Reset(gen)
	c.store.Reset(gen)
	c.lastErr = nil
	c.state = FetchingFirstPage
	c.issue(1)
}

func (c *Controller) onLoadMoreRequested() bool {
	if c.state != Ready || !c.cursor.ShouldFetchMore(c.guard.InFlight()) {
		return false
	}
	c.state = FetchingNextPage
	c.issue(c.cursor.NextPage)
	return true
}

func (c *Controller) issue(page int) {
	h := c.guard.Issue(c.base, c.cursor.Generation, page)
	q := c.snapshot.Query(page, PageSize)
	c.log.Debug().Uint64("generation", h.Generation).Int("page", page).Msg("search fetch issued")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res, err := c.transport.Search(h.Context(), q)

		c.mu.Lock()
		applied := c.onFetchSettled(h, res, err)
		c.mu.Unlock()
		if applied {
			c.changed()
		}
	}()
}

// onFetchSettled applies a settled fetch and reports whether state changed.
func (c *Controller) onFetchSettled(h *Handle, res domain.SearchPage, err error) bool {
	if !h.IsCurrent() {
		outcome := "stale"
		if errors.Is(err, context.Canceled) {
			outcome = "cancelled"
		}
		observability.ObserveFetch(outcome)
		c.log.Debug().Uint64("generation", h.Generation).Int("page", h.Page).Str("outcome", outcome).Msg("search fetch discarded")
		return false
	}
	c.guard.Release(h)

	if err == nil {
		err = res.Validate()
	}
	if errors.Is(err, context.Canceled) {
		observability.ObserveFetch("cancelled")
		c.cursor.Stop()
		c.state = Ready
		return true
	}
	if err != nil {
		observability.ObserveFetch("failed")
		c.log.Warn().Err(err).Uint64("generation", h.Generation).Int("page", h.Page).Msg("search fetch failed")
		c.cursor.Stop()
		c.state = Ready
		c.lastErr = &FetchError{Generation: h.Generation, Page: h.Page, Err: err}
		return true
	}

	var ok bool
	if h.Page == 1 {
		ok = c.store.Replace(h.Generation, res.Items)
	} else {
		ok = c.store.Append(h.Generation, res.Items)
	}
	if !ok {
		observability.ObserveFetch("stale")
		c.log.Warn().Uint64("generation", h.Generation).Uint64("store_generation", c.store.Generation()).Msg("search page rejected by result store")
		c.cursor.Stop()
		c.state = Ready
		return true
	}
	observability.ObserveFetch("applied")
	c.cursor.Advance(len(res.Items))
	c.state = Ready
	c.lastErr = nil
	return true
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller) CurrentItems() []domain.HotelSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Items()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsLoadingFirstPage() bool { return c.State() == FetchingFirstPage }

func (c *Controller) IsLoadingMore() bool { return c.State() == FetchingNextPage }

func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor.HasMore()
}

// LastError returns the failure of the current generation, or nil.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastErr == nil {
		return nil
	}
	return c.lastErr
}

// Filters returns the criteria as they are now, which may be newer than
// the snapshot of an in-flight fetch.
func (c *Controller) Filters() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Snapshot()
}

func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor.Generation
}

// Wait blocks until every issued fetch has settled.
func (c *Controller) Wait() { c.wg.Wait() }

// Close cancels in-flight work and waits for it to return.
func (c *Controller) Close() {
	c.stop()
	c.mu.Lock()
	c.guard.Cancel()
	if c.state == FetchingFirstPage || c.state == FetchingNextPage {
		c.cursor.Stop()
		c.state = Ready
	}
	c.mu.Unlock()
	c.wg.Wait()
}
