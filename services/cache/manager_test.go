package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// failingStore errors on every operation, standing in for an unreachable
// Redis.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(ctx context.Context, key string) (string, error) { return "", errStoreDown }
func (failingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errStoreDown
}
func (failingStore) Delete(ctx context.Context, keys ...string) error { return errStoreDown }
func (failingStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	return 0, errStoreDown
}
func (failingStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 0, errStoreDown
}
func (failingStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, errStoreDown
}
func (failingStore) Ping(ctx context.Context) error { return errStoreDown }

// TestManagerQueryKey tests that the result key changes with any of user,
// statement or parameters, and is stable for identical input.
func TestManagerQueryKey(t *testing.T) {
	m := NewManager(NewMemoryStore(), time.Minute, time.Hour, time.Minute)

	base := m.QueryKey(1, "SELECT * FROM orders", nil)
	if !strings.HasPrefix(base, QueryPrefix) {
		t.Errorf("Expected key under %s, got %s", QueryPrefix, base)
	}
	if again := m.QueryKey(1, "SELECT * FROM orders", nil); again != base {
		t.Errorf("Expected stable key, got %s and %s", base, again)
	}

	tests := []struct {
		name string
		key  string
	}{
		{"Different user", m.QueryKey(2, "SELECT * FROM orders", nil)},
		{"Different statement", m.QueryKey(1, "SELECT * FROM customers", nil)},
		{"With parameters", m.QueryKey(1, "SELECT * FROM orders", []interface{}{"EMEA"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key == base {
				t.Errorf("Expected distinct key, got duplicate %s", tt.key)
			}
		})
	}
}

// TestManagerKeyFormats tests the fixed key layouts the invalidation paths
// depend on.
func TestManagerKeyFormats(t *testing.T) {
	m := NewManager(NewMemoryStore(), time.Minute, time.Hour, time.Minute)

	if got := m.SchemaKey("analytics", "orders"); got != "schema:meta:analytics.orders" {
		t.Errorf("Expected schema:meta:analytics.orders, got %s", got)
	}
	if got := m.PermissionKey(7, "analytics", "orders"); got != "user:perm:7:analytics.orders" {
		t.Errorf("Expected user:perm:7:analytics.orders, got %s", got)
	}
	if got := m.RateKey(7); got != "rate:limit:7" {
		t.Errorf("Expected rate:limit:7, got %s", got)
	}
}

// TestManagerJSONRoundTrip tests SetJSON/GetJSON through the memory store and
// that each tier gets its own TTL.
func TestManagerJSONRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	m := NewManager(store, time.Second, time.Hour, time.Minute)
	ctx := context.Background()

	type payload struct {
		Columns []string `json:"columns"`
		Count   int      `json:"count"`
	}

	queryKey := m.QueryKey(1, "SELECT * FROM orders", nil)
	schemaKey := m.SchemaKey("analytics", "orders")
	m.SetJSON(ctx, queryKey, payload{Columns: []string{"id"}, Count: 3})
	m.SetJSON(ctx, schemaKey, payload{Columns: []string{"id", "amount"}})

	var out payload
	if !m.GetJSON(ctx, queryKey, &out) {
		t.Fatal("Expected query tier hit")
	}
	if out.Count != 3 || len(out.Columns) != 1 {
		t.Errorf("Expected decoded payload, got %+v", out)
	}

	// Query tier expires on its own short TTL; schema tier survives.
	now = now.Add(2 * time.Second)
	if m.GetJSON(ctx, queryKey, &out) {
		t.Error("Expected query entry to expire on query TTL")
	}
	if !m.GetJSON(ctx, schemaKey, &out) {
		t.Error("Expected schema entry to outlive query TTL")
	}
}

// TestManagerDegradesToMiss tests that a dead store turns reads into misses
// and swallows writes instead of failing the request.
func TestManagerDegradesToMiss(t *testing.T) {
	m := NewManager(failingStore{}, time.Minute, time.Hour, time.Minute)
	ctx := context.Background()

	var out map[string]interface{}
	if m.GetJSON(ctx, "query:result:abc", &out) {
		t.Error("Expected miss from failing store")
	}

	// Must not panic or error out.
	m.SetJSON(ctx, "query:result:abc", map[string]int{"x": 1})
	m.Invalidate(ctx, "query:result:abc")

	// Rate hits surface the error so the limiter can fail open.
	if _, _, err := m.RateHit(ctx, 1, time.Hour); err == nil {
		t.Error("Expected RateHit to surface store error")
	}
}

// TestManagerInvalidateUserPermissions tests per-user invalidation does not
// bleed into neighbouring user IDs or other tiers.
func TestManagerInvalidateUserPermissions(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, time.Minute, time.Hour, time.Minute)
	ctx := context.Background()

	m.SetJSON(ctx, m.PermissionKey(1, "analytics", "orders"), "a")
	m.SetJSON(ctx, m.PermissionKey(1, "analytics", "customers"), "b")
	m.SetJSON(ctx, m.PermissionKey(10, "analytics", "orders"), "c")
	m.SetJSON(ctx, m.QueryKey(1, "SELECT 1", nil), "d")

	removed, err := m.InvalidateUserPermissions(ctx, 1)
	if err != nil {
		t.Fatalf("Expected invalidation to succeed, got %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 entries removed, got %d", removed)
	}

	var out string
	if m.GetJSON(ctx, m.PermissionKey(1, "analytics", "orders"), &out) {
		t.Error("Expected user 1 permissions to be gone")
	}
	if !m.GetJSON(ctx, m.PermissionKey(10, "analytics", "orders"), &out) {
		t.Error("Expected user 10 permissions to survive")
	}
	if !m.GetJSON(ctx, m.QueryKey(1, "SELECT 1", nil), &out) {
		t.Error("Expected query tier to survive permission invalidation")
	}
}

// TestManagerRateHit tests the counter and window reporting.
func TestManagerRateHit(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, time.Minute, time.Hour, time.Minute)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, remaining, err := m.RateHit(ctx, 42, time.Hour)
		if err != nil {
			t.Fatalf("Expected rate hit to succeed, got %v", err)
		}
		if n != want {
			t.Errorf("Expected count %d, got %d", want, n)
		}
		if remaining <= 0 || remaining > time.Hour {
			t.Errorf("Expected remaining window within the hour, got %v", remaining)
		}
	}
}
