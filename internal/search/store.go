package search

import "trip_hotel/internal/domain"

// ResultStore holds the hotels fetched for one generation. Writes tagged
// with any other generation are dropped.
type ResultStore struct {
	generation uint64
	items      []domain.HotelSummary
}

func (s *ResultStore) Generation() uint64 { return s.generation }

// Reset empties the store and binds it to generation.
func (s *ResultStore) Reset(generation uint64) {
	s.generation = generation
	s.items = nil
}

func (s *ResultStore) Replace(generation uint64, items []domain.HotelSummary) bool {
	if generation != s.generation {
		return false
	}
	s.items = append([]domain.HotelSummary(nil), items...)
	return true
}

func (s *ResultStore) Append(generation uint64, items []domain.HotelSummary) bool {
	if generation != s.generation {
		return false
	}
	s.items = append(s.items, items...)
	return true
}

// Items returns a copy in fetch order.
func (s *ResultStore) Items() []domain.HotelSummary {
	out := make([]domain.HotelSummary, len(s.items))
	copy(out, s.items)
	return out
}

func (s *ResultStore) Len() int { return len(s.items) }
