package search

// PageSize is the fixed number of hotels requested per page.
const PageSize = 10

// PageCursor tracks pagination for a single filter generation.
type PageCursor struct {
	Generation uint64
	NextPage   int
	hasMore    bool
}

func NewCursor(generation uint64) PageCursor {
	return PageCursor{Generation: generation, NextPage: 1, hasMore: true}
}

func (c *PageCursor) Reset(generation uint64) { *c = NewCursor(generation) }

// Advance records a settled page; a short page ends the generation.
func (c *PageCursor) Advance(returned int) {
	c.NextPage++
	c.hasMore = returned >= PageSize
}

// Stop ends automatic pagination for this generation.
func (c *PageCursor) Stop() { c.hasMore = false }

func (c PageCursor) HasMore() bool { return c.hasMore }

func (c PageCursor) ShouldFetchMore(inFlight bool) bool { return c.hasMore && !inFlight }
