// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowKeyPrefix is the Valkey key prefix for rate-limit counters.
const windowKeyPrefix = "ratelimit:"

// WindowLimiter counts requests per key in fixed time windows stored in
// Valkey, so every server instance shares the same budget.
type WindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewWindowLimiter allows limit requests per key in each window.
func NewWindowLimiter(client *redis.Client, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow records a request for key and reports whether it is within the limit.
func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.counterKey(key)

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("valkey rate limit %s: %w", key, err)
	}

	return count.Val() <= int64(l.limit), nil
}

// counterKey names the counter for key in the current window.
func (l *WindowLimiter) counterKey(key string) string {
	bucket := l.now().UnixNano() / int64(l.window)
	return fmt.Sprintf("%s%s:%d", windowKeyPrefix, key, bucket)
}
