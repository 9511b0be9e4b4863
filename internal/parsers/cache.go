package parsers

import (
	"fmt"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/repo-digest/internal/extraction"
	"github.com/zeebo/xxh3"
)

// Reducer turns a file into its signature-only text.
type Reducer interface {
	Reduce(path string, source []byte) (string, extraction.Result)
}

type cacheEntry struct {
	text string
	res  extraction.Result
}

// CachedReducer memoizes reductions by language and content hash, so
// unchanged files are not re-parsed across rebuilds in one process.
type CachedReducer struct {
	registry *Registry
	cache    otter.Cache[[16]byte, cacheEntry]
}

// NewCachedReducer wraps registry with a cache holding up to maxEntries results.
func NewCachedReducer(registry *Registry, maxEntries int) (*CachedReducer, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", maxEntries)
	}
	cache, err := otter.MustBuilder[[16]byte, cacheEntry](maxEntries).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("build extraction cache: %w", err)
	}
	return &CachedReducer{registry: registry, cache: cache}, nil
}

func (c *CachedReducer) Reduce(path string, source []byte) (string, extraction.Result) {
	lang, ok := c.registry.Lookup(path)
	if !ok {
		return c.registry.Reduce(path, source)
	}

	key := cacheKey(lang.Name, source)
	if entry, ok := c.cache.Get(key); ok {
		res := entry.res
		res.Path = path
		return entry.text, res
	}

	text, res := c.registry.Reduce(path, source)
	c.cache.Set(key, cacheEntry{text: text, res: res})
	return text, res
}

// Hits returns the number of cache hits so far.
func (c *CachedReducer) Hits() int64 {
	return c.cache.Stats().Hits()
}

// Close releases the cache.
func (c *CachedReducer) Close() {
	c.cache.Close()
}

func cacheKey(lang string, source []byte) [16]byte {
	data := make([]byte, 0, len(lang)+1+len(source))
	data = append(data, lang...)
	data = append(data, 0)
	data = append(data, source...)
	return xxh3.Hash128(data).Bytes()
}
