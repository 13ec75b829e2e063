// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package cache implements an in-process TTL cache for query results.  It is
// process-local and not safe for multi-process sharing: the deployment model
// is a single server process.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefTTL is the default entry lifetime when the caller does not specify one.
const DefTTL = 5 * time.Minute

type entry[T any] struct {
	data    T
	expires time.Time
}

// Cache is a generic TTL key-value cache wrapping a producer function.
// Expired entries are evicted lazily on the next lookup, there is no sweeper
// goroutine.
type Cache[T any] struct {
	defTTL time.Duration

	mu      sync.Mutex
	entries map[string]entry[T]
}

// New creates a cache with the given default TTL.  A non-positive defTTL
// falls back to DefTTL.
func New[T any](defTTL time.Duration) *Cache[T] {
	if defTTL <= 0 {
		defTTL = DefTTL
	}
	return &Cache[T]{
		defTTL:  defTTL,
		entries: make(map[string]entry[T]),
	}
}

// get returns the unexpired entry for key, evicting it if stale.
func (c *Cache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return e.data, true
}

// GetOrSet returns the cached value for key if present and unexpired,
// otherwise it invokes producer, stores the result for ttl (or the default
// TTL if ttl <= 0) and returns it.  A producer error is returned as is and
// nothing is cached, so transient failures do not poison the cache.
//
// Concurrent callers with the same key may both invoke the producer; the
// last write wins.  That is acceptable for a read-through cache over
// idempotent queries.
func (c *Cache[T]) GetOrSet(ctx context.Context, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}
	v, err := producer(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if ttl <= 0 {
		ttl = c.defTTL
	}
	c.mu.Lock()
	c.entries[key] = entry[T]{data: v, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
	return v, nil
}

// Invalidate removes all entries whose key contains pattern as a substring.
// An empty pattern clears the entire cache.
func (c *Cache[T]) Invalidate(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pattern == "" {
		clear(c.entries)
		return
	}
	for k := range c.entries {
		if strings.Contains(k, pattern) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of entries currently held, including any that have
// expired but have not been looked up since.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Key builds a deterministic cache key from the operation name and its
// arguments.  Map arguments are rendered with sorted keys so that two
// logically identical calls hash identically.  Callers that need manual
// invalidation can match on the operation name prefix.
func Key(op string, args ...any) string {
	var sb strings.Builder
	sb.WriteString(op)
	for _, a := range args {
		sb.WriteByte(0x1f)
		sb.WriteString(canonical(a))
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return op + ":" + hex.EncodeToString(sum[:8])
}

func canonical(a any) string {
	switch m := a.(type) {
	case map[string]string:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%s=%s;", k, m[k])
		}
		return sb.String()
	case time.Time:
		return m.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(a)
	}
}
