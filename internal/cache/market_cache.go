package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/dyike/psxlens/internal/models"
)

// SnapshotCache keeps normalized snapshots in memory, keyed by source URL.
// Nothing is written to disk.
type SnapshotCache struct {
	memoryCache map[string]*CachedSnapshot
	ttl         time.Duration
	now         func() time.Time
	logger      *log.Logger
	mu          sync.RWMutex
}

type CachedSnapshot struct {
	Snapshot  *models.Snapshot
	Timestamp time.Time
	TTL       time.Duration
}

func (c *CachedSnapshot) expired(now time.Time) bool {
	return c.TTL <= 0 || now.Sub(c.Timestamp) > c.TTL
}

// Stats describes the current cache contents.
type Stats struct {
	Entries int      `json:"entries"`
	Keys    []string `json:"keys"`
	TTL     string   `json:"ttl"`
}

// NewSnapshotCache returns a cache whose entries live for ttl. A zero ttl
// disables caching.
func NewSnapshotCache(ttl time.Duration, logger *log.Logger) *SnapshotCache {
	return &SnapshotCache{
		memoryCache: make(map[string]*CachedSnapshot),
		ttl:         ttl,
		now:         time.Now,
		logger:      logger,
	}
}

func (c *SnapshotCache) Get(source string) (*models.Snapshot, bool) {
	c.mu.RLock()
	cached, exists := c.memoryCache[source]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if cached.expired(c.now()) {
		c.mu.Lock()
		// re-check, a fresh Set may have raced us
		if cur, ok := c.memoryCache[source]; ok && cur == cached {
			delete(c.memoryCache, source)
		}
		c.mu.Unlock()
		c.logger.Debug().Str("source", source).Dur("age", c.now().Sub(cached.Timestamp)).Msg("snapshot cache expired")
		return nil, false
	}

	c.logger.Debug().Str("source", source).Str("snapshot", cached.Snapshot.ID).Msg("using cached snapshot")
	return cached.Snapshot, true
}

func (c *SnapshotCache) Set(source string, snap *models.Snapshot) {
	if c.ttl <= 0 || snap == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.memoryCache[source] = &CachedSnapshot{
		Snapshot:  snap,
		Timestamp: c.now(),
		TTL:       c.ttl,
	}
}

func (c *SnapshotCache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.memoryCache, source)
}

func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memoryCache = make(map[string]*CachedSnapshot)
}

func (c *SnapshotCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.memoryCache))
	for key := range c.memoryCache {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return Stats{Entries: len(keys), Keys: keys, TTL: c.ttl.String()}
}
