// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// limitedClient waits on a token bucket before each request.
type limitedClient struct {
	next    Client
	limiter *rate.Limiter
}

// RateLimited wraps c so that at most perMinute requests start per minute,
// with a burst of one. perMinute <= 0 returns c unchanged.
func RateLimited(c Client, perMinute int) Client {
	if perMinute <= 0 {
		return c
	}
	return &limitedClient{
		next:    c,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (l *limitedClient) Complete(ctx context.Context, req Request, fn FragmentFunc) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return l.next.Complete(ctx, req, fn)
}
