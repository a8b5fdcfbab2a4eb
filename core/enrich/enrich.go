package enrich

import "strings"

// Border separates catalog ids (below) from locally invented ids (above).
const Border int64 = 1_000_000_000_000

// External reports whether id belongs to an external catalog.
func External(id int64) bool {
	return id > 0 && id < Border
}

// FillString sets *field to value when the caller left it blank.
func FillString(field **string, value string) {
	if value == "" {
		return
	}
	if *field == nil || strings.TrimSpace(**field) == "" {
		v := value
		*field = &v
	}
}

// FillInt sets *field to value when the caller left it blank.
func FillInt(field **int, value int) {
	if value <= 0 || *field != nil {
		return
	}
	v := value
	*field = &v
}

// Counter hands out local ids above Border. It remembers the highest local
// id it has seen; callers serialize access.
type Counter struct {
	last int64
}

// NewCounter creates a counter whose first id is Border+1.
func NewCounter() *Counter {
	return &Counter{last: Border}
}

// See records an id loaded from the store or supplied by a caller.
func (c *Counter) See(id int64) {
	if id > c.last {
		c.last = id
	}
}

// Next returns a fresh local id.
func (c *Counter) Next() int64 {
	c.last++
	return c.last
}

// NextFree returns the next local id that taken does not claim.
func (c *Counter) NextFree(taken func(int64) bool) int64 {
	for {
		if id := c.Next(); !taken(id) {
			return id
		}
	}
}

// Reset forgets every id seen so far.
func (c *Counter) Reset() {
	c.last = Border
}
