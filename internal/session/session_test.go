package session_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "trip_hotel/internal/adapters/redis"
	"trip_hotel/internal/session"
	"trip_hotel/internal/shared"
)

func newStore(t *testing.T, id string) session.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return redisad.NewSessionStore(c, id)
}

func TestHistory_DedupeOrderAndCap(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "u1")
	h := session.NewHistory(store)

	for _, kw := range []string{"a", "b", "  c  ", "", "b", "d", "e", "f", "g"} {
		if err := h.Add(ctx, kw); err != nil {
			t.Fatalf("add %q: %v", kw, err)
		}
	}
	got := h.List()
	want := []string{"g", "f", "e", "d", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("history = %v, want %v", got, want)
		}
	}

	// a fresh instance sees the saved state after Load
	h2 := session.NewHistory(store)
	if err := h2.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(h2.List()) != session.MaxHistory || h2.List()[0] != "g" {
		t.Fatalf("reloaded history = %v", h2.List())
	}

	if err := h2.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	h3 := session.NewHistory(store)
	_ = h3.Load(ctx)
	if len(h3.List()) != 0 {
		t.Fatalf("history not cleared: %v", h3.List())
	}
}

func TestFavorites_TogglePersists(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "u2")
	f := session.NewFavorites(store)

	on, err := f.Toggle(ctx, 42)
	if err != nil || !on || !f.Contains(42) {
		t.Fatalf("toggle on failed: on=%v err=%v", on, err)
	}
	_, _ = f.Toggle(ctx, 7)

	f2 := session.NewFavorites(store)
	if err := f2.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := f2.List(); len(got) != 2 || got[0] != 42 || got[1] != 7 {
		t.Fatalf("reloaded favorites = %v", got)
	}

	on, _ = f2.Toggle(ctx, 42)
	if on || f2.Contains(42) {
		t.Fatalf("toggle off failed")
	}
}

func TestNilStoreIsMemoryOnly(t *testing.T) {
	ctx := context.Background()
	h := session.NewHistory(nil)
	if err := h.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := h.Add(ctx, "x"); err != nil || h.List()[0] != "x" {
		t.Fatalf("memory-only history broken")
	}
	f := session.NewFavorites(nil)
	if on, err := f.Toggle(ctx, 1); err != nil || !on {
		t.Fatalf("memory-only favorites broken")
	}
}

func TestHistory_SurvivesRestartWithDefaultSession(t *testing.T) {
	ctx := context.Background()
	t.Setenv("SESSION_ID", "")
	mr := miniredis.RunT(t)
	open := func() *session.History {
		c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		return session.NewHistory(redisad.NewSessionStore(c, shared.Load().SessionID))
	}

	run1 := open()
	if err := run1.Add(ctx, "spa"); err != nil {
		t.Fatalf("add: %v", err)
	}

	run2 := open()
	if err := run2.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := run2.List(); len(got) != 1 || got[0] != "spa" {
		t.Fatalf("history after restart = %v", got)
	}
}
