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

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	t.Run("producer runs once within TTL", func(t *testing.T) {
		c := New[int](time.Minute)
		var calls int
		producer := func(context.Context) (int, error) {
			calls++
			return calls, nil
		}

		v, err := c.GetOrSet(ctx, "k", 0, producer)
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		v, err = c.GetOrSet(ctx, "k", 0, producer)
		require.NoError(t, err)
		assert.Equal(t, 1, v, "second call must be served from cache")
		assert.Equal(t, 1, calls)
	})
	t.Run("producer runs again after expiry", func(t *testing.T) {
		c := New[int](time.Minute)
		var calls int
		producer := func(context.Context) (int, error) {
			calls++
			return calls, nil
		}

		_, err := c.GetOrSet(ctx, "k", 10*time.Millisecond, producer)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		v, err := c.GetOrSet(ctx, "k", 10*time.Millisecond, producer)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
		assert.Equal(t, 2, calls)
	})
	t.Run("producer error is not cached", func(t *testing.T) {
		c := New[int](time.Minute)
		boom := errors.New("boom")
		_, err := c.GetOrSet(ctx, "k", 0, func(context.Context) (int, error) {
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, c.Len(), "failed production must not be cached")

		v, err := c.GetOrSet(ctx, "k", 0, func(context.Context) (int, error) {
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})
}

func TestCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := New[string](time.Minute)
	seed := func(key, val string) {
		_, err := c.GetOrSet(ctx, key, 0, func(context.Context) (string, error) { return val, nil })
		require.NoError(t, err)
	}
	seed("spend:one", "a")
	seed("spend:two", "b")
	seed("vendors:all", "c")

	c.Invalidate("spend:")
	assert.Equal(t, 1, c.Len())

	c.Invalidate("")
	assert.Equal(t, 0, c.Len())
}

func TestKey(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t.Run("deterministic for identical args", func(t *testing.T) {
		a := Key("spend", start, map[string]string{"vendor": "acme", "department": "legal"})
		b := Key("spend", start, map[string]string{"department": "legal", "vendor": "acme"})
		assert.Equal(t, a, b, "map argument order must not matter")
	})
	t.Run("differs for different args", func(t *testing.T) {
		a := Key("spend", start, "source1")
		b := Key("spend", start, "source2")
		assert.NotEqual(t, a, b)
	})
	t.Run("carries the operation prefix", func(t *testing.T) {
		assert.Contains(t, Key("vendors"), "vendors:")
	})
}
