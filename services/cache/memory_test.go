package cache

import (
	"context"
	"testing"
	"time"
)

// TestMemoryStoreGetSet tests basic set/get and the miss error.
func TestMemoryStoreGetSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "absent"); err != ErrMiss {
		t.Errorf("Expected ErrMiss for absent key, got %v", err)
	}

	if err := s.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Expected set to succeed, got %v", err)
	}
	val, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Expected hit, got %v", err)
	}
	if val != "v" {
		t.Errorf("Expected value v, got %s", val)
	}
}

// TestMemoryStoreExpiry tests lazy expiry and TTL reporting.
func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, "k", "v", 10*time.Second); err != nil {
		t.Fatalf("Expected set to succeed, got %v", err)
	}

	remaining, err := s.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("Expected TTL to succeed, got %v", err)
	}
	if remaining != 10*time.Second {
		t.Errorf("Expected 10s remaining, got %v", remaining)
	}

	now = now.Add(5 * time.Second)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Errorf("Expected hit before expiry, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if _, err := s.Get(ctx, "k"); err != ErrMiss {
		t.Errorf("Expected ErrMiss after expiry, got %v", err)
	}
	if _, err := s.TTL(ctx, "k"); err != ErrMiss {
		t.Errorf("Expected ErrMiss from TTL after expiry, got %v", err)
	}
}

// TestMemoryStoreNoExpiry tests that zero TTL entries never expire.
func TestMemoryStoreNoExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Expected set to succeed, got %v", err)
	}

	now = now.Add(24 * time.Hour)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Errorf("Expected zero-TTL entry to survive, got %v", err)
	}
	remaining, err := s.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("Expected TTL to succeed, got %v", err)
	}
	if remaining != 0 {
		t.Errorf("Expected zero TTL for non-expiring entry, got %v", remaining)
	}
}

// TestMemoryStoreDelete tests single-key deletion.
func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "a", "1", 0)
	s.Set(ctx, "b", "2", 0)

	if err := s.Delete(ctx, "a", "missing"); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
	if _, err := s.Get(ctx, "a"); err != ErrMiss {
		t.Errorf("Expected a to be deleted, got %v", err)
	}
	if _, err := s.Get(ctx, "b"); err != nil {
		t.Errorf("Expected b to survive, got %v", err)
	}
}

// TestMemoryStoreDeletePrefix tests prefix invalidation leaves other tiers
// untouched.
func TestMemoryStoreDeletePrefix(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "query:result:aaa", "1", 0)
	s.Set(ctx, "query:result:bbb", "2", 0)
	s.Set(ctx, "schema:meta:analytics.orders", "3", 0)

	removed, err := s.DeletePrefix(ctx, "query:result:")
	if err != nil {
		t.Fatalf("Expected prefix delete to succeed, got %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	if _, err := s.Get(ctx, "schema:meta:analytics.orders"); err != nil {
		t.Errorf("Expected schema entry to survive, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 entry left, got %d", s.Len())
	}
}

// TestMemoryStoreIncrement tests the fixed-window counter semantics: the
// first hit sets the expiry and later hits leave it alone.
func TestMemoryStoreIncrement(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	for want := int64(1); want <= 3; want++ {
		n, err := s.Increment(ctx, "rate:limit:7", time.Hour)
		if err != nil {
			t.Fatalf("Expected increment to succeed, got %v", err)
		}
		if n != want {
			t.Errorf("Expected count %d, got %d", want, n)
		}
	}

	// Later hits must not extend the window.
	now = now.Add(30 * time.Minute)
	if _, err := s.Increment(ctx, "rate:limit:7", time.Hour); err != nil {
		t.Fatalf("Expected increment to succeed, got %v", err)
	}
	remaining, err := s.TTL(ctx, "rate:limit:7")
	if err != nil {
		t.Fatalf("Expected TTL to succeed, got %v", err)
	}
	if remaining != 30*time.Minute {
		t.Errorf("Expected 30m remaining, got %v", remaining)
	}

	// A new window starts at one.
	now = now.Add(31 * time.Minute)
	n, err := s.Increment(ctx, "rate:limit:7", time.Hour)
	if err != nil {
		t.Fatalf("Expected increment to succeed, got %v", err)
	}
	if n != 1 {
		t.Errorf("Expected fresh window to start at 1, got %d", n)
	}
}
