package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := mc.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}
}

func TestMemoryCacheGetMissing(t *testing.T) {
	mc := NewMemoryCache()

	_, err := mc.Get(context.Background(), "absent")
	if err != ErrKeyNotFound {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	now := time.Now()
	mc.SetClock(func() time.Time { return now })

	if err := mc.Set(ctx, "k", "v", 900*time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// advance past the TTL
	now = now.Add(901 * time.Second)

	if _, err := mc.Get(ctx, "k"); err != ErrKeyNotFound {
		t.Errorf("Get() after expiry error = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryCacheIncr(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := mc.Incr(ctx, "counter")
		if err != nil {
			t.Fatalf("Incr() error = %v", err)
		}
		if got != want {
			t.Errorf("Incr() = %d, want %d", got, want)
		}
	}
}

func TestMemoryCacheIncrExpiryWindow(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	now := time.Now()
	mc.SetClock(func() time.Time { return now })

	if _, err := mc.Incr(ctx, "counter"); err != nil {
		t.Fatalf("Incr() error = %v", err)
	}
	if err := mc.Expire(ctx, "counter", 900*time.Second); err != nil {
		t.Fatalf("Expire() error = %v", err)
	}

	now = now.Add(901 * time.Second)

	// expired counter restarts from zero
	got, err := mc.Incr(ctx, "counter")
	if err != nil {
		t.Fatalf("Incr() error = %v", err)
	}
	if got != 1 {
		t.Errorf("Incr() after window = %d, want 1", got)
	}
}
