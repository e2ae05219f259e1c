package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"querygateapi/pkg/logger"
)

// Key prefixes for the three cache tiers and the rate-limit counters. Prefix
// invalidation depends on these staying distinct.
const (
	QueryPrefix      = "query:result:"
	SchemaPrefix     = "schema:meta:"
	PermissionPrefix = "user:perm:"
	RatePrefix       = "rate:limit:"
)

// Manager wraps a Store with tier-specific keys, TTLs and JSON encoding.
// Store failures never fail a request: reads degrade to a miss and writes
// are logged and dropped, so the pipeline keeps answering from the database
// when the cache is down.
type Manager struct {
	store         Store
	queryTTL      time.Duration
	schemaTTL     time.Duration
	permissionTTL time.Duration
}

// NewManager creates a Manager with explicit tier TTLs.
func NewManager(store Store, queryTTL, schemaTTL, permissionTTL time.Duration) *Manager {
	return &Manager{
		store:         store,
		queryTTL:      queryTTL,
		schemaTTL:     schemaTTL,
		permissionTTL: permissionTTL,
	}
}

// QueryKey derives the result-tier key. The normalized SQL (after permission
// rewriting), bound parameters and user identity all feed the digest, so two
// users with different row filters can never share an entry even when their
// raw SQL matches.
func (m *Manager) QueryKey(userID uint, sql string, params []interface{}) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d\x1f%s", userID, sql)
	if len(params) > 0 {
		raw, err := json.Marshal(params)
		if err != nil {
			raw = []byte(fmt.Sprint(params...))
		}
		h.Write([]byte{0x1f})
		h.Write(raw)
	}
	return QueryPrefix + hex.EncodeToString(h.Sum(nil))
}

// SchemaKey derives the schema-tier key for one table's metadata.
func (m *Manager) SchemaKey(schema, table string) string {
	return fmt.Sprintf("%s%s.%s", SchemaPrefix, schema, table)
}

// SchemaTablesKey derives the schema-tier key for a schema's table listing.
func (m *Manager) SchemaTablesKey(schema string) string {
	return fmt.Sprintf("%stables:%s", SchemaPrefix, schema)
}

// PermissionKey derives the permission-tier key for one user/table pair.
func (m *Manager) PermissionKey(userID uint, schema, table string) string {
	return fmt.Sprintf("%s%d:%s.%s", PermissionPrefix, userID, schema, table)
}

// RateKey derives the rate-limit counter key for a user.
func (m *Manager) RateKey(userID uint) string {
	return fmt.Sprintf("%s%d", RatePrefix, userID)
}

// GetJSON loads and decodes the value at key into out, reporting whether it
// was a hit. Store errors and undecodable entries degrade to a miss.
func (m *Manager) GetJSON(ctx context.Context, key string, out interface{}) bool {
	raw, err := m.store.Get(ctx, key)
	if err == ErrMiss {
		return false
	}
	if err != nil {
		logger.Warnf("cache read failed for %s, treating as miss: %v", key, err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.Warnf("cache entry %s is undecodable, treating as miss: %v", key, err)
		return false
	}
	return true
}

// SetJSON encodes val and stores it under key with the tier TTL implied by
// the key prefix. Failures are logged and dropped.
func (m *Manager) SetJSON(ctx context.Context, key string, val interface{}) {
	raw, err := json.Marshal(val)
	if err != nil {
		logger.Warnf("cache encode failed for %s: %v", key, err)
		return
	}
	if err := m.store.Set(ctx, key, string(raw), m.ttlFor(key)); err != nil {
		logger.Warnf("cache write failed for %s: %v", key, err)
	}
}

// Invalidate removes the given keys, logging failures.
func (m *Manager) Invalidate(ctx context.Context, keys ...string) {
	if err := m.store.Delete(ctx, keys...); err != nil {
		logger.Warnf("cache invalidation failed: %v", err)
	}
}

// InvalidateQueryResults drops every cached query result.
func (m *Manager) InvalidateQueryResults(ctx context.Context) (int, error) {
	return m.store.DeletePrefix(ctx, QueryPrefix)
}

// InvalidateSchema drops every cached table description.
func (m *Manager) InvalidateSchema(ctx context.Context) (int, error) {
	return m.store.DeletePrefix(ctx, SchemaPrefix)
}

// InvalidateUserPermissions drops the cached permissions of one user, forcing
// the next request back to the permission tables. Called on grant and revoke.
func (m *Manager) InvalidateUserPermissions(ctx context.Context, userID uint) (int, error) {
	return m.store.DeletePrefix(ctx, fmt.Sprintf("%s%d:", PermissionPrefix, userID))
}

// RateHit counts one request against the user's fixed window and returns the
// running count plus the time until the window resets. Store errors are
// returned raw so the limiter can decide to fail open.
func (m *Manager) RateHit(ctx context.Context, userID uint, window time.Duration) (int64, time.Duration, error) {
	key := m.RateKey(userID)
	n, err := m.store.Increment(ctx, key, window)
	if err != nil {
		return 0, 0, err
	}
	remaining, err := m.store.TTL(ctx, key)
	if err != nil {
		remaining = window
	}
	return n, remaining, nil
}

// Ping reports whether the backing store is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

func (m *Manager) ttlFor(key string) time.Duration {
	switch {
	case strings.HasPrefix(key, SchemaPrefix):
		return m.schemaTTL
	case strings.HasPrefix(key, PermissionPrefix):
		return m.permissionTTL
	default:
		return m.queryTTL
	}
}
