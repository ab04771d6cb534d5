// cache.go provides an in-memory cache for compiled designs.
// This is the L1 cache — it avoids re-flattening styles and re-ordering
// sections on every render. Entries are keyed by design ID and version,
// so an update (which bumps the patch version) automatically produces a
// cache miss.
package engine

import (
	"log/slog"
	"sync"
)

// cacheKey uniquely identifies a compiled design version.
type cacheKey struct {
	id      string // UUID as string
	version string // semantic version
}

// renderCache is a concurrency-safe in-memory cache of compiled designs.
type renderCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*compiledDesign
}

// newRenderCache creates an empty render cache.
func newRenderCache() *renderCache {
	return &renderCache{
		entries: make(map[cacheKey]*compiledDesign),
	}
}

// get retrieves a compiled design from cache. Returns nil on miss.
func (c *renderCache) get(id, version string) *compiledDesign {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[cacheKey{id: id, version: version}]
}

// put stores a compiled design in the cache.
func (c *renderCache) put(id, version string, d *compiledDesign) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{id: id, version: version}] = d
	slog.Debug("design compilation cached", "id", id, "version", version, "size", len(c.entries))
}

// invalidate removes all cached versions for a given design ID.
// Called when a design is updated or deleted.
func (c *renderCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id {
			delete(c.entries, k)
		}
	}
	slog.Debug("design compilation invalidated", "id", id)
}
