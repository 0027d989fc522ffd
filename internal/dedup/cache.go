// Package dedup holds the in-memory signature cache that short-circuits
// reprocessing. The cache is only an optimization layer; the database
// unique constraints remain the ground truth for idempotency.
package dedup

import (
	"sort"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/max-de-bug/ascii-art-indexer/internal/adapter"
	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
)

// Cache remembers recently processed transaction signatures with their
// insertion time. Safe for concurrent use.
type Cache struct {
	entries   *xsync.Map[string, time.Time]
	capacity  int
	retention time.Duration
	clock     adapter.Clock
}

// New creates a cache with the given capacity and retention window
func New(capacity int, retention time.Duration, clock adapter.Clock) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		entries:   xsync.NewMap[string, time.Time](),
		capacity:  capacity,
		retention: retention,
		clock:     clock,
	}
}

// Seen reports whether the signature was marked within the retention window
func (c *Cache) Seen(signature string) bool {
	at, ok := c.entries.Load(signature)
	if !ok {
		return false
	}
	if c.clock.Since(at) > c.retention {
		c.entries.Delete(signature)
		return false
	}
	return true
}

// MarkSeen records the signature, evicting the oldest tenth of entries
// when the cache is full
func (c *Cache) MarkSeen(signature string) {
	if c.entries.Size() >= c.capacity {
		c.evictOldest()
	}
	c.entries.Store(signature, c.clock.Now())
}

// Size returns the current number of cached signatures
func (c *Cache) Size() int {
	return c.entries.Size()
}

// Cleanup drops entries older than the retention window and returns the
// number removed
func (c *Cache) Cleanup() int {
	cutoff := c.clock.Now().Add(-c.retention)
	removed := 0
	c.entries.Range(func(sig string, at time.Time) bool {
		if at.Before(cutoff) {
			c.entries.Delete(sig)
			removed++
		}
		return true
	})
	if removed > 0 {
		logger.Debug("signature cache cleanup",
			zap.Int("removed", removed), zap.Int("remaining", c.entries.Size()))
	}
	return removed
}

type entry struct {
	sig string
	at  time.Time
}

func (c *Cache) evictOldest() {
	all := make([]entry, 0, c.entries.Size())
	c.entries.Range(func(sig string, at time.Time) bool {
		all = append(all, entry{sig: sig, at: at})
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	drop := len(all) / 10
	if drop < 1 {
		drop = 1
	}
	for _, e := range all[:drop] {
		c.entries.Delete(e.sig)
	}
}
