package duckbridge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringCacheIntern(t *testing.T) {
	c := NewStringCache(0)

	a := c.Intern([]byte("region-eu"))
	b := c.Intern([]byte("region-eu"))
	assert.Equal(t, "region-eu", a)
	assert.Equal(t, a, b)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestStringCacheSkipsLongPayloads(t *testing.T) {
	c := NewStringCache(4)

	got := c.Intern([]byte("too-long-to-intern"))
	assert.Equal(t, "too-long-to-intern", got)

	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestStringCacheCopiesPayload(t *testing.T) {
	// The cache must not retain a view into the caller's buffer: interned
	// strings survive mutation of the source bytes.
	c := NewStringCache(0)
	buf := []byte("mutable")
	got := c.Intern(buf)
	buf[0] = 'X'

	assert.Equal(t, "mutable", got)
	assert.Equal(t, "mutable", c.Intern([]byte("mutable")))
}

func TestStringCacheReset(t *testing.T) {
	c := NewStringCache(0)
	c.Intern([]byte("x"))
	c.Intern([]byte("x"))
	c.Reset()

	hits, misses := c.Stats()
	require.Zero(t, hits)
	require.Zero(t, misses)
}

func TestStringCacheConcurrent(t *testing.T) {
	c := NewStringCache(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Intern([]byte("shared-value"))
			}
		}()
	}
	wg.Wait()

	hits, misses := c.Stats()
	assert.Equal(t, 8000, hits+misses)
	assert.Equal(t, 1, misses)
}
