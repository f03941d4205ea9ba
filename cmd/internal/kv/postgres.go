package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the KV contract over a single table. It exists
// for deployments that already run Postgres and do not want a second
// datastore; expiry is enforced at read time plus an opportunistic sweep.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const kvSchema = `
CREATE TABLE IF NOT EXISTS cirrus_kv (
	key        text PRIMARY KEY,
	value      bytea NOT NULL,
	expires_at timestamptz
)`

// NewPostgresStore ensures the kv table exists and returns the store.
// Ownership model: the caller owns the pool lifecycle; Close is a no-op.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("kv: nil pool")
	}
	if _, err := pool.Exec(ctx, kvSchema); err != nil {
		return nil, fmt.Errorf("kv: ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM cirrus_kv
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())
	`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv: postgres get: %w", err)
	}
	return value, nil
}

// Set upserts the entry. The expiry is computed in SQL from the database
// clock, the same clock Get and SweepExpired filter on; app-side clock
// skew cannot stretch or shrink TTLs.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cirrus_kv (key, value, expires_at)
		VALUES ($1, $2, CASE WHEN $3::float8 > 0 THEN now() + make_interval(secs => $3) ELSE NULL END)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`, key, value, ttlSeconds(ttl))
	if err != nil {
		return fmt.Errorf("kv: postgres set: %w", err)
	}
	return nil
}

// ttlSeconds maps the Store TTL contract onto the SQL expiry argument:
// zero means durable, anything positive is seconds until eviction.
func ttlSeconds(ttl time.Duration) float64 {
	if ttl <= 0 {
		return 0
	}
	return ttl.Seconds()
}

// Close is a no-op: the pool is owned by the app runtime.
func (s *PostgresStore) Close(_ context.Context) error { return nil }

// SweepExpired deletes rows past their expiry. Intended for a periodic
// background call; correctness never depends on it because Get filters
// expired rows itself.
func (s *PostgresStore) SweepExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cirrus_kv WHERE expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("kv: postgres sweep: %w", err)
	}
	return tag.RowsAffected(), nil
}
