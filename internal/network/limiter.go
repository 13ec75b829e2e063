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

// Package network provides request throttling for remote API sources.
package network

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default limiter policy: a courtesy limiter for vendor spend APIs, not a
// hard SLA.  Concurrent callers on the same key may momentarily exceed the
// limit by a small margin.
const (
	DefMaxRequests = 60
	DefWindow      = time.Minute
)

// KeyedLimiter throttles requests independently per key, so distinct
// credentials or sources do not share a budget.  Each key gets at most
// maxRequests completions per window.
type KeyedLimiter struct {
	maxRequests int
	window      time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewKeyedLimiter returns a limiter allowing maxRequests per window for each
// distinct key.  Non-positive arguments are replaced with the defaults.
func NewKeyedLimiter(maxRequests int, window time.Duration) *KeyedLimiter {
	if maxRequests <= 0 {
		maxRequests = DefMaxRequests
	}
	if window <= 0 {
		window = DefWindow
	}
	return &KeyedLimiter{
		maxRequests: maxRequests,
		window:      window,
		limiters:    make(map[string]*rate.Limiter),
	}
}

// limiter returns the rate limiter for key, creating it on first use.
func (kl *KeyedLimiter) limiter(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	l, ok := kl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(kl.window/time.Duration(kl.maxRequests)), kl.maxRequests)
		kl.limiters[key] = l
	}
	return l
}

// Wait blocks until a request slot is available for key or ctx is cancelled.
// The first maxRequests calls on a fresh key return immediately (burst);
// subsequent calls are spaced out to keep the rate within the window.
func (kl *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return kl.limiter(key).Wait(ctx)
}
