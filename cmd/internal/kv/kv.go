package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist or has expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is the get/set/expire capability every backend implements.
//
// Set with ttl <= 0 writes a durable entry; a positive ttl makes the
// backend evict the key after that duration, after which Get behaves
// exactly like "never written".
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close(ctx context.Context) error
}

// Prefixed wraps a Store so every key carries a fixed namespace prefix.
// It lets several deployments share one Redis database without collisions.
func Prefixed(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return prefixedStore{inner: s, prefix: prefix}
}

type prefixedStore struct {
	inner  Store
	prefix string
}

func (p prefixedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p prefixedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, p.prefix+key, value, ttl)
}

func (p prefixedStore) Close(ctx context.Context) error { return p.inner.Close(ctx) }
