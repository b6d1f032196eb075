package leaderboard

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"overwatch-telegram-bot/internal/metrics"
	"overwatch-telegram-bot/internal/types"
)

const (
	// Table is the cache store namespace holding leaderboard snapshots.
	Table = "ow_leaderboard"

	DefaultTTL = 12 * time.Hour
)

// Fetcher loads a leaderboard snapshot from upstream.
type Fetcher interface {
	FetchLeaderboard(ctx context.Context, season string, rank types.Rank) ([]types.LeaderboardEntry, error)
}

// Store is a table-scoped key/value store with per-item expiry.
type Store interface {
	Get(ctx context.Context, table, key string) ([]byte, bool, error)
	Set(ctx context.Context, table, key string, value []byte, ttl time.Duration) error
}

// Cache serves leaderboard snapshots from Store, fetching on miss.
// Concurrent misses on the same key are not coalesced.
type Cache struct {
	fetcher Fetcher
	store   Store
	ttl     time.Duration
}

func New(fetcher Fetcher, store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		fetcher: fetcher,
		store:   store,
		ttl:     ttl,
	}
}

// Key builds the cache key of a snapshot. The rank part is omitted for the
// all-ranks aggregate so it never collides with a specific rank.
func Key(season string, rank types.Rank) string {
	if rank == "" {
		return season
	}
	return season + ":" + string(rank)
}

// Get returns the snapshot for season and rank (empty for all ranks).
func (c *Cache) Get(ctx context.Context, season string, rank types.Rank) ([]types.LeaderboardEntry, error) {
	key := Key(season, rank)

	if entries, found := c.lookup(ctx, key); found {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		log.Debugf("returning cached leaderboard for %s", key)
		return entries, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	entries, err := c.fetcher.FetchLeaderboard(ctx, season, rank)
	if err != nil {
		return nil, err
	}

	value, err := msgpack.Marshal(entries)
	if err != nil {
		log.Warnf("could not encode leaderboard %s: %v", key, err)
		return entries, nil
	}
	if err := c.store.Set(ctx, Table, key, value, c.ttl); err != nil {
		log.Warnf("could not cache leaderboard %s: %v", key, err)
	}
	return entries, nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]types.LeaderboardEntry, bool) {
	value, found, err := c.store.Get(ctx, Table, key)
	if err != nil {
		log.Warnf("leaderboard cache lookup %s failed: %v", key, err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var entries []types.LeaderboardEntry
	if err := msgpack.Unmarshal(value, &entries); err != nil {
		log.Warnf("discarding undecodable leaderboard %s: %v", key, err)
		return nil, false
	}
	return entries, true
}
