package rollup

import "sync"

type cacheKey struct {
	version   uint64
	expansion string
	sort      string
}

// Cache memoizes Flatten on (tree version, expansion snapshot, sort) so
// repeated renders of unchanged state are cheap.
type Cache struct {
	mu       sync.Mutex
	key      cacheKey
	rows     []DisplayRow
	valid    bool
	computed int
}

// Rows returns the flattened rows for the given state, recomputing only when
// the state differs from the previous call.
func (c *Cache) Rows(t *Tree, exp Expansion, s *Sort) []DisplayRow {
	var version uint64
	if t != nil {
		version = t.Version
	}
	key := cacheKey{version: version, expansion: exp.Snapshot(), sort: s.String()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.key == key {
		return c.rows
	}
	c.rows = Flatten(t, exp, s)
	c.key = key
	c.valid = true
	c.computed++
	return c.rows
}

// Computations returns how many times Rows had to flatten.
func (c *Cache) Computations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computed
}

// Reset drops the memoized rows.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.rows = nil
}
