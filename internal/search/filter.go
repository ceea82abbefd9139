package search

import (
	"strings"
	"time"

	"trip_hotel/internal/domain"
)

const (
	MinRooms  = 1
	MaxRooms  = 10
	MinAdults = 1
	MaxAdults = 20
	MinStar   = 3
	MaxStar   = 5
)

// Filter is an immutable snapshot of the search criteria.
type Filter struct {
	Generation  uint64
	Destination string
	CheckIn     time.Time
	CheckOut    time.Time
	RoomCount   int
	AdultCount  int
	StarRating  *int
	PriceMin    *float64
	PriceMax    *float64
	Tag         string
	Keyword     string
}

// Nights between check-in and check-out, always >= 1.
func (f Filter) Nights() int {
	return int(f.CheckOut.Sub(f.CheckIn).Hours() / 24)
}

// Query builds the page request for this snapshot. Empty strings are omitted.
func (f Filter) Query(page, size int) domain.SearchQuery {
	q := domain.SearchQuery{Page: page, PageSize: size}
	if f.Destination != "" {
		d := f.Destination
		q.Destination = &d
	}
	if f.Keyword != "" {
		k := f.Keyword
		q.Keyword = &k
	}
	if f.StarRating != nil {
		s := *f.StarRating
		q.StarRating = &s
	}
	if f.PriceMin != nil {
		p := *f.PriceMin
		q.PriceMin = &p
	}
	if f.PriceMax != nil {
		p := *f.PriceMax
		q.PriceMax = &p
	}
	if f.Tag != "" {
		t := f.Tag
		q.Tag = &t
	}
	return q
}

// FilterState holds the mutable criteria. Every effective setter call bumps
// the generation; writing the current value again is not a mutation.
// FilterState is not safe for concurrent use; the controller serialises access.
type FilterState struct {
	cur Filter
}

func NewFilterState() *FilterState {
	return newFilterState(time.Now)
}

func newFilterState(now func() time.Time) *FilterState {
	today := Day(now())
	return &FilterState{
		cur: Filter{
			CheckIn:    today,
			CheckOut:   today.AddDate(0, 0, 1),
			RoomCount:  MinRooms,
			AdultCount: MinAdults,
		},
	}
}

// Day truncates t to a calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *FilterState) Snapshot() Filter { return s.cur }

func (s *FilterState) Generation() uint64 { return s.cur.Generation }

func (s *FilterState) commit(next Filter) bool {
	if equalFilter(s.cur, next) {
		return false
	}
	next.Generation = s.cur.Generation + 1
	s.cur = next
	return true
}

// Touch forces a new generation without changing any criteria (explicit reload).
func (s *FilterState) Touch() {
	s.cur.Generation++
}

func (s *FilterState) SetDestination(city string) bool {
	next := s.cur
	next.Destination = strings.TrimSpace(city)
	return s.commit(next)
}

func (s *FilterState) SetKeyword(kw string) bool {
	next := s.cur
	next.Keyword = strings.TrimSpace(kw)
	return s.commit(next)
}

func (s *FilterState) SetTag(tag string) bool {
	next := s.cur
	next.Tag = strings.TrimSpace(tag)
	return s.commit(next)
}

// SetDateRange sets both dates; a check-out not after check-in becomes check-in + 1 day.
func (s *FilterState) SetDateRange(checkIn, checkOut time.Time) bool {
	next := s.cur
	next.CheckIn, next.CheckOut = Day(checkIn), Day(checkOut)
	if !next.CheckOut.After(next.CheckIn) {
		next.CheckOut = next.CheckIn.AddDate(0, 0, 1)
	}
	return s.commit(next)
}

// SetCheckIn moves check-in and pushes check-out forward when it would no longer follow it.
func (s *FilterState) SetCheckIn(d time.Time) bool {
	return s.SetDateRange(d, s.cur.CheckOut)
}

func (s *FilterState) SetCheckOut(d time.Time) bool {
	return s.SetDateRange(s.cur.CheckIn, d)
}

func (s *FilterState) SetRoomCount(n int) bool {
	next := s.cur
	next.RoomCount = clamp(n, MinRooms, MaxRooms)
	return s.commit(next)
}

func (s *FilterState) SetAdultCount(n int) bool {
	next := s.cur
	next.AdultCount = clamp(n, MinAdults, MaxAdults)
	return s.commit(next)
}

// SetStarRating clears the rating for nil or zero and clamps anything else into [3,5].
func (s *FilterState) SetStarRating(star *int) bool {
	next := s.cur
	next.StarRating = nil
	if star != nil && *star != 0 {
		v := clamp(*star, MinStar, MaxStar)
		next.StarRating = &v
	}
	return s.commit(next)
}

// SetPriceRange clamps negatives to zero and swaps an inverted band.
func (s *FilterState) SetPriceRange(lo, hi *float64) bool {
	next := s.cur
	next.PriceMin, next.PriceMax = nonNeg(lo), nonNeg(hi)
	if next.PriceMin != nil && next.PriceMax != nil && *next.PriceMin > *next.PriceMax {
		next.PriceMin, next.PriceMax = next.PriceMax, next.PriceMin
	}
	return s.commit(next)
}

func (s *FilterState) SetPriceBand(b PriceBand) bool {
	return s.SetPriceRange(b.Min, b.Max)
}

// Reset clears star, tag and price filters, keeping destination, dates and occupancy.
func (s *FilterState) Reset() bool {
	next := s.cur
	next.StarRating, next.PriceMin, next.PriceMax, next.Tag = nil, nil, nil, ""
	return s.commit(next)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func nonNeg(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if v < 0 {
		v = 0
	}
	return &v
}

func equalFilter(a, b Filter) bool {
	return a.Destination == b.Destination &&
		a.CheckIn.Equal(b.CheckIn) && a.CheckOut.Equal(b.CheckOut) &&
		a.RoomCount == b.RoomCount && a.AdultCount == b.AdultCount &&
		eqPtr(a.StarRating, b.StarRating) &&
		eqPtr(a.PriceMin, b.PriceMin) && eqPtr(a.PriceMax, b.PriceMax) &&
		a.Tag == b.Tag && a.Keyword == b.Keyword
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
