// Package speccache keeps parsed parameter declarations for the life of the
// process, keyed by template identity and revalidated by a freshness probe.
package speccache

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pthm/hxprops/lib/paramspec"
)

// DefaultSize bounds a cache created with size <= 0.
const DefaultSize = 1024

// Entry is what a Loader returns for a template.
type Entry struct {
	Source  paramspec.Source
	Version string
}

// Loader fetches the declaration for key.
type Loader func(key string) (Entry, error)

// Probe reports whether the entry loaded at version is still current.
type Probe func(key, version string) bool

// AlwaysFresh never invalidates. Use it for embedded templates.
func AlwaysFresh(string, string) bool { return true }

type cached struct {
	specs   *paramspec.List
	version string
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Reloads uint64
}

// Cache is safe for concurrent use. Two goroutines missing the same key
// both parse it and the later store wins; both results are identical.
type Cache struct {
	parser *paramspec.Parser
	store  *lru.Cache[string, cached]
	log    *slog.Logger

	hits, misses, reloads atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for Debug lookups.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// New creates a cache holding up to size declarations.
func New(parser *paramspec.Parser, size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if parser == nil {
		parser = paramspec.NewParser(paramspec.DefaultOptions())
	}
	store, err := lru.New[string, cached](size)
	if err != nil {
		return nil, fmt.Errorf("speccache: %w", err)
	}
	c := &Cache{parser: parser, store: store, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the parsed declaration for key, loading and parsing it when
// absent or when probe reports it stale. A nil probe trusts cached entries.
// Syntax errors are returned as *paramspec.SyntaxError and never cached.
func (c *Cache) Get(key string, load Loader, probe Probe) (*paramspec.List, error) {
	if e, ok := c.store.Get(key); ok {
		if probe == nil || probe(key, e.version) {
			c.hits.Add(1)
			c.log.Debug("spec cache hit", "key", key)
			return e.specs, nil
		}
		c.reloads.Add(1)
		c.log.Debug("spec cache stale", "key", key, "version", e.version)
	} else {
		c.misses.Add(1)
		c.log.Debug("spec cache miss", "key", key)
	}

	if load == nil {
		return nil, fmt.Errorf("speccache: no loader for %q", key)
	}
	entry, err := load(key)
	if err != nil {
		return nil, fmt.Errorf("speccache: load %q: %w", key, err)
	}
	specs, err := c.parser.Parse(entry.Source)
	if err != nil {
		c.store.Remove(key)
		return nil, err
	}
	c.store.Add(key, cached{specs: specs, version: entry.Version})
	return specs, nil
}

// Invalidate drops key.
func (c *Cache) Invalidate(key string) {
	if c.store.Remove(key) {
		c.log.Debug("spec cache invalidated", "key", key)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.store.Purge()
}

// Len returns the number of cached declarations.
func (c *Cache) Len() int {
	return c.store.Len()
}

// Stats returns lookup counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Reloads: c.reloads.Load()}
}
