package search

import (
	"context"
	"sync/atomic"
)

// Handle identifies one issued fetch. Its context is cancelled as soon as a
// newer fetch is issued or the guard is cancelled.
type Handle struct {
	Generation uint64
	Page       int

	ctx    context.Context
	cancel context.CancelFunc
	guard  *RequestGuard
}

func (h *Handle) Context() context.Context { return h.ctx }

// IsCurrent reports whether h is still the guard's in-flight request.
// Results of a handle that is not current must be dropped.
func (h *Handle) IsCurrent() bool { return h.guard.current.Load() == h }

// RequestGuard keeps at most one fetch in flight.
type RequestGuard struct {
	current atomic.Pointer[Handle]
}

// Issue cancels whatever is held and returns the new current handle.
// Cancellation does not wait for the previous fetch to return.
func (g *RequestGuard) Issue(parent context.Context, generation uint64, page int) *Handle {
	ctx, cancel := context.WithCancel(parent)
	h := &Handle{Generation: generation, Page: page, ctx: ctx, cancel: cancel, guard: g}
	if prev := g.current.Swap(h); prev != nil {
		prev.cancel()
	}
	return h
}

// Release clears h once its settlement has been handled. No-op for stale handles.
func (g *RequestGuard) Release(h *Handle) {
	if g.current.CompareAndSwap(h, nil) {
		h.cancel()
	}
}

// Cancel aborts the in-flight fetch, if any, and leaves nothing current.
func (g *RequestGuard) Cancel() {
	if prev := g.current.Swap(nil); prev != nil {
		prev.cancel()
	}
}

func (g *RequestGuard) InFlight() bool { return g.current.Load() != nil }
