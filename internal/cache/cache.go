package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"pothole-heatmap-backend/internal/model"
)

// snapshotKey is the single key under which the dataset lives. The cache
// holds at most one entry: the most recently completed full fetch.
const snapshotKey = "snapshot"

// Entry is a completed dataset plus the time its fetch finished.
type Entry struct {
	Records   []model.PotholeRecord
	FetchedAt time.Time
}

// SnapshotCache holds the latest completed dataset for the lifetime of the
// process. The entry expires atomically once the TTL elapses; there is no
// partial invalidation.
type SnapshotCache struct {
	ttl   time.Duration
	store *gocache.Cache
}

// New creates a snapshot cache with the given TTL.
func New(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		ttl:   ttl,
		store: gocache.New(ttl, 2*ttl),
	}
}

// Write replaces the cached dataset wholesale and stamps the current time.
// Concurrent completing sessions overwrite each other; last write wins. An
// empty completed dataset is normalized to a non-nil slice so readers can
// serve it as an empty array.
func (c *SnapshotCache) Write(records []model.PotholeRecord) {
	if records == nil {
		records = []model.PotholeRecord{}
	}
	c.store.Set(snapshotKey, Entry{Records: records, FetchedAt: time.Now().UTC()}, c.ttl)
}

// Read returns the cached entry, or false when the cache is empty or the
// entry has expired. An absent entry is a normal signal, not an error.
func (c *SnapshotCache) Read() (Entry, bool) {
	v, found := c.store.Get(snapshotKey)
	if !found {
		return Entry{}, false
	}
	return v.(Entry), true
}

// IsFresh reports whether a servable entry is currently present.
func (c *SnapshotCache) IsFresh() bool {
	_, found := c.store.Get(snapshotKey)
	return found
}
