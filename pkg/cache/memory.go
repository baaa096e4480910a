package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/4 19:30
 * @file: memory.go
 * @description: in-memory ICache for tests and single-node setups
 */

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

// SetClock overrides the time source. Test helper.
func (mc *MemoryCache) SetClock(now func() time.Time) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.now = now
}

func (mc *MemoryCache) get(key string) (memoryEntry, bool) {
	entry, ok := mc.items[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(mc.now()) {
		delete(mc.items, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (mc *MemoryCache) Get(_ context.Context, key string) (string, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	entry, ok := mc.get(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	return entry.value, nil
}

func (mc *MemoryCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = mc.now().Add(expiration)
	}
	mc.items[key] = entry
	return nil
}

func (mc *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	entry, ok := mc.get(key)
	n := int64(0)
	if ok {
		parsed, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n++
	entry.value = strconv.FormatInt(n, 10)
	mc.items[key] = entry
	return n, nil
}

func (mc *MemoryCache) Expire(_ context.Context, key string, expiration time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	entry, ok := mc.get(key)
	if !ok {
		return ErrKeyNotFound
	}
	entry.expiresAt = mc.now().Add(expiration)
	mc.items[key] = entry
	return nil
}

func (mc *MemoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	entry, ok := mc.get(key)
	if !ok {
		return 0, ErrKeyNotFound
	}
	if entry.expiresAt.IsZero() {
		return 0, nil
	}
	return entry.expiresAt.Sub(mc.now()), nil
}

func (mc *MemoryCache) Del(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		delete(mc.items, key)
	}
	return nil
}
