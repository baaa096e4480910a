// Copyright 2025 Keel Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key is absent or expired.
var ErrKeyNotFound = errors.New("cache: key not found")

// ICache is a keyed value store with TTL semantics. The production
// implementation is Redis; tests use the in-memory implementation.
type ICache interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. expiration <= 0 means no expiry.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// Incr atomically increments the integer counter at key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	// Expire sets the TTL of an existing key.
	Expire(ctx context.Context, key string, expiration time.Duration) error
	// TTL returns the remaining TTL of key, or ErrKeyNotFound.
	TTL(ctx context.Context, key string) (time.Duration, error)
	// Del removes the given keys.
	Del(ctx context.Context, keys ...string) error
}
