// Package tagcache keeps a short-lived per-file tag summary so outer
// file-list views stay consistent with inline tag mutations without a full
// reload. The backing tag service may lag its own writes; entries expire
// quickly so a later list fetch re-converges on the service's view. This is
// a best-effort consistency measure, not a correctness guarantee.
package tagcache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a written-back tag summary is trusted before the
// next service fetch wins again.
const DefaultTTL = 2 * time.Minute

// Cache holds per-document tag summaries.
type Cache struct {
	entries *gocache.Cache
}

// New creates a tag summary cache with the given entry TTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: gocache.New(ttl, 2*ttl),
	}
}

// Put records the complete tag set for a document, replacing any prior
// summary.
func (c *Cache) Put(documentID string, tags []string) {
	cp := make([]string, len(tags))
	copy(cp, tags)
	c.entries.SetDefault(documentID, cp)
}

// Get returns the cached tag set for a document, if present and fresh.
func (c *Cache) Get(documentID string) ([]string, bool) {
	v, ok := c.entries.Get(documentID)
	if !ok {
		return nil, false
	}
	tags := v.([]string)
	out := make([]string, len(tags))
	copy(out, tags)
	return out, true
}

// Invalidate drops a document's summary so the next read goes to the
// service.
func (c *Cache) Invalidate(documentID string) {
	c.entries.Delete(documentID)
}
