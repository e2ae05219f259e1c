// Package cache provides the key-value layer behind result, schema and
// permission caching plus the rate-limit counters. Two Store implementations
// exist: Redis for deployments and an in-process map for tests and
// single-node setups. The Manager on top owns tier prefixes, TTLs and the
// degrade-to-miss policy, so callers never talk to a Store directly.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get and TTL when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is the minimal key-value surface the pipeline needs. All values are
// strings; the Manager handles JSON encoding above this interface.
type Store interface {
	// Get returns the value for key, or ErrMiss.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix and reports how
	// many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Increment adds one to the counter at key and returns the new value.
	// The ttl is applied only when the increment creates the key, so a
	// fixed window keeps its original expiry.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// TTL reports the remaining lifetime of key. Zero means no expiry;
	// absent keys return ErrMiss.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
