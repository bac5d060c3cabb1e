package market

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/wonny/rebalancer/internal/contracts"
	"github.com/wonny/rebalancer/pkg/logger"
	"github.com/wonny/rebalancer/pkg/redis"
)

// RunCache memoises snapshots per trading date for one run
// ⭐ append-only: 한 번 저장된 날짜는 Reset 전까지 교체하지 않음
// Redis가 켜져 있으면 snapshot:<date>:<source hash> 키로 TTL 동안 재사용
type RunCache struct {
	source Source
	scope  string
	remote *redis.Cache
	ttl    time.Duration
	logger *logger.Logger

	mu      sync.Mutex
	entries map[string]*contracts.Snapshot
}

// NewRunCache wraps source. remote may be nil.
func NewRunCache(source Source, remote *redis.Cache, ttl time.Duration, log *logger.Logger) *RunCache {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &RunCache{
		source:  source,
		scope:   sourceScope(source),
		remote:  remote,
		ttl:     ttl,
		logger:  log,
		entries: make(map[string]*contracts.Snapshot),
	}
}

// Fetch returns the cached snapshot for date or fetches it once
func (c *RunCache) Fetch(ctx context.Context, date time.Time) (*contracts.Snapshot, error) {
	key := date.Format(contracts.DateLayout)

	c.mu.Lock()
	defer c.mu.Unlock()

	if snap, ok := c.entries[key]; ok {
		return snap, nil
	}

	var cached contracts.Snapshot
	found, err := c.remote.Get(ctx, c.remoteKey(key), &cached)
	if err != nil {
		// 캐시 장애는 무시하고 원본 조회
		c.logger.WithError(err).Warn("Snapshot cache read failed")
	}
	if found && cached.Len() > 0 {
		if cached.Rejected == nil {
			cached.Rejected = make(map[string]int)
		}
		c.logger.WithField("date", key).Info("Market snapshot served from cache")
		c.entries[key] = &cached
		return &cached, nil
	}

	snap, err := c.source.Fetch(ctx, date)
	if err != nil {
		return nil, err
	}
	c.entries[key] = snap

	if err := c.remote.Set(ctx, c.remoteKey(key), snap, c.ttl); err != nil {
		c.logger.WithError(err).Warn("Snapshot cache write failed")
	}

	return snap, nil
}

// remoteKey is the Redis key of date for this cache's source
func (c *RunCache) remoteKey(date string) string {
	return redis.SnapshotKey(date, c.scope)
}

// Locator is implemented by sources with a stable location
type Locator interface {
	Location() string
}

// sourceScope hashes the source location so different feeds never share entries
func sourceScope(source Source) string {
	loc, ok := source.(Locator)
	if !ok || loc.Location() == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(loc.Location()))
	return hex.EncodeToString(sum[:4])
}

// Reset drops every memoised snapshot
func (c *RunCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*contracts.Snapshot)
}

// Len returns the number of memoised dates
func (c *RunCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
