package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CacheStore persists table/key values with an expiry in the cache table,
// so cached leaderboards survive restarts.
type CacheStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewCacheStore(db *sql.DB) *CacheStore {
	return &CacheStore{db: db, now: time.Now}
}

// Get returns the value under table/key. Expired rows are deleted and
// reported as missing.
func (s *CacheStore) Get(ctx context.Context, table, key string) ([]byte, bool, error) {
	var (
		value     []byte
		expiresAt int64
	)
	query := `SELECT value, expires_at FROM cache WHERE tbl = ? AND cache_key = ?;`
	err := s.db.QueryRowContext(ctx, query, table, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to get cache %s/%s: %w", table, key, err)
	}

	if s.now().UnixMilli() >= expiresAt {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE tbl = ? AND cache_key = ?;`, table, key); err != nil {
			return nil, false, fmt.Errorf("failed to delete expired cache %s/%s: %w", table, key, err)
		}
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores value under table/key for ttl, replacing any previous row.
func (s *CacheStore) Set(ctx context.Context, table, key string, value []byte, ttl time.Duration) error {
	query := `
	INSERT OR REPLACE INTO cache (tbl, cache_key, value, expires_at)
	VALUES (?, ?, ?, ?);`
	_, err := s.db.ExecContext(ctx, query, table, key, value, s.now().Add(ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set cache %s/%s: %w", table, key, err)
	}
	return nil
}

// PurgeExpired deletes every expired row and returns how many were removed.
func (s *CacheStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at <= ?;`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}
