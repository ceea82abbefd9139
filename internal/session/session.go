// Package session keeps per-user browsing state that outlives a single run:
// keyword search history and favorite hotels. State is loaded explicitly at
// start and written back on every mutation.
package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Store persists a named ordered list.
type Store interface {
	Load(ctx context.Context, name string) ([]string, error)
	Save(ctx context.Context, name string, values []string) error
}

const MaxHistory = 6

// History is the most-recent-first list of searched keywords.
type History struct {
	mu    sync.Mutex
	store Store
	items []string
}

func NewHistory(s Store) *History { return &History{store: s} }

func (h *History) Load(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	items, err := h.store.Load(ctx, "history")
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	h.mu.Lock()
	h.items = items
	if len(h.items) > MaxHistory {
		h.items = h.items[:MaxHistory]
	}
	h.mu.Unlock()
	return nil
}

// Add moves kw to the front. Blank keywords are ignored.
func (h *History) Add(ctx context.Context, kw string) error {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return nil
	}
	h.mu.Lock()
	next := []string{kw}
	for _, it := range h.items {
		if it != kw {
			next = append(next, it)
		}
	}
	if len(next) > MaxHistory {
		next = next[:MaxHistory]
	}
	h.items = next
	snapshot := append([]string(nil), next...)
	h.mu.Unlock()
	return h.save(ctx, snapshot)
}

func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.items = nil
	h.mu.Unlock()
	return h.save(ctx, nil)
}

func (h *History) List() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.items...)
}

func (h *History) save(ctx context.Context, items []string) error {
	if h.store == nil {
		return nil
	}
	if err := h.store.Save(ctx, "history", items); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Favorites is the set of favorited hotel ids in the order they were added.
type Favorites struct {
	mu    sync.Mutex
	store Store
	ids   []int64
}

func NewFavorites(s Store) *Favorites { return &Favorites{store: s} }

func (f *Favorites) Load(ctx context.Context) error {
	if f.store == nil {
		return nil
	}
	raw, err := f.store.Load(ctx, "favorites")
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		if id, err := strconv.ParseInt(r, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	f.mu.Lock()
	f.ids = ids
	f.mu.Unlock()
	return nil
}

// Toggle adds or removes id and reports whether it is now a favorite.
func (f *Favorites) Toggle(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	next := make([]int64, 0, len(f.ids)+1)
	found := false
	for _, v := range f.ids {
		if v == id {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, id)
	}
	f.ids = next
	raw := make([]string, len(next))
	for i, v := range next {
		raw[i] = strconv.FormatInt(v, 10)
	}
	f.mu.Unlock()

	if f.store != nil {
		if err := f.store.Save(ctx, "favorites", raw); err != nil {
			return !found, fmt.Errorf("save favorites: %w", err)
		}
	}
	return !found, nil
}

func (f *Favorites) Contains(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (f *Favorites) List() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}
