package search_test

import (
	"context"
	"testing"

	"trip_hotel/internal/domain"
	"trip_hotel/internal/search"
)

func TestPageCursor_Advance(t *testing.T) {
	c := search.NewCursor(7)
	if c.NextPage != 1 || !c.HasMore() || c.Generation != 7 {
		t.Fatalf("unexpected fresh cursor: %+v", c)
	}

	c.Advance(search.PageSize)
	if c.NextPage != 2 || !c.HasMore() {
		t.Fatalf("full page must keep hasMore: %+v", c)
	}
	c.Advance(search.PageSize - 1)
	if c.NextPage != 3 || c.HasMore() {
		t.Fatalf("short page must clear hasMore: %+v", c)
	}
	if c.ShouldFetchMore(false) {
		t.Fatalf("exhausted cursor must not fetch")
	}

	c.Reset(8)
	if c.NextPage != 1 || !c.HasMore() || c.Generation != 8 {
		t.Fatalf("reset failed: %+v", c)
	}
	if c.ShouldFetchMore(true) {
		t.Fatalf("must not fetch while a request is in flight")
	}
	c.Stop()
	if c.HasMore() {
		t.Fatalf("stop must clear hasMore")
	}
}

func TestResultStore_RejectsOtherGenerations(t *testing.T) {
	var s search.ResultStore
	s.Reset(2)

	if s.Replace(1, []domain.HotelSummary{{ID: 1, NameCN: "a"}}) {
		t.Fatalf("replace from older generation accepted")
	}
	if !s.Replace(2, []domain.HotelSummary{{ID: 2, NameCN: "b"}}) {
		t.Fatalf("replace from own generation rejected")
	}
	if s.Append(3, []domain.HotelSummary{{ID: 3, NameCN: "c"}}) {
		t.Fatalf("append from newer generation accepted")
	}
	s.Append(2, []domain.HotelSummary{{ID: 4, NameCN: "d"}})

	items := s.Items()
	if s.Len() != 2 || items[0].ID != 2 || items[1].ID != 4 {
		t.Fatalf("unexpected items %+v", items)
	}
	items[0].ID = 99
	if s.Items()[0].ID != 2 {
		t.Fatalf("Items must return a copy")
	}

	s.Reset(3)
	if s.Len() != 0 || s.Generation() != 3 {
		t.Fatalf("reset must clear the store")
	}
}

func TestRequestGuard_SingleFlight(t *testing.T) {
	var g search.RequestGuard
	a := g.Issue(context.Background(), 1, 1)
	if !a.IsCurrent() || !g.InFlight() {
		t.Fatalf("first handle must be current")
	}

	b := g.Issue(context.Background(), 2, 1)
	if a.IsCurrent() || a.Context().Err() == nil {
		t.Fatalf("issuing b must cancel and supersede a")
	}
	if !b.IsCurrent() {
		t.Fatalf("b must be current")
	}

	// releasing a stale handle must not drop the current one
	g.Release(a)
	if !b.IsCurrent() {
		t.Fatalf("stale release cleared the current handle")
	}

	g.Release(b)
	if g.InFlight() || b.IsCurrent() {
		t.Fatalf("release must clear the guard")
	}

	c := g.Issue(context.Background(), 3, 2)
	g.Cancel()
	if c.IsCurrent() || c.Context().Err() == nil || g.InFlight() {
		t.Fatalf("cancel must abort and clear")
	}
}
