package duckbridge

import (
	"sync"
)

// defaultInternLimit bounds the payload size the cache will intern. Long
// strings rarely repeat and would bloat the map.
const defaultInternLimit = 64

// StringCache deduplicates decoded VARCHAR payloads. Analytical results are
// full of repeated values (dimension columns, enums-as-strings); interning
// them trades one map probe for an allocation per repeated value.
//
// A cache may be shared across streams; all methods are safe for concurrent
// use.
type StringCache struct {
	mu     sync.Mutex
	intern map[string]string
	limit  int

	hits   int
	misses int
}

// NewStringCache returns a cache that interns payloads up to maxLen bytes.
// maxLen <= 0 selects the default limit.
func NewStringCache(maxLen int) *StringCache {
	if maxLen <= 0 {
		maxLen = defaultInternLimit
	}
	return &StringCache{
		intern: make(map[string]string),
		limit:  maxLen,
	}
}

// Intern returns a string equal to b, reusing a previous allocation when the
// same payload has been seen before. Payloads over the limit are converted
// without caching.
func (c *StringCache) Intern(b []byte) string {
	if len(b) > c.limit {
		return string(b)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The map lookup on a byte slice does not allocate; only a miss pays
	// for the string conversion.
	if s, ok := c.intern[string(b)]; ok {
		c.hits++
		return s
	}
	c.misses++
	s := string(b)
	c.intern[s] = s
	return s
}

// Stats reports cache hits and misses since creation or the last Reset.
func (c *StringCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Reset drops all interned strings and statistics.
func (c *StringCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intern = make(map[string]string)
	c.hits = 0
	c.misses = 0
}
