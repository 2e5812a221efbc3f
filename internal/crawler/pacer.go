// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/review-harvester/pkg/types"
)

// Pacer is waited on before every remote call.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps for a constant duration before each call.
type FixedDelay time.Duration

// Wait sleeps for the delay or until ctx is done.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TokenBucket allows rps calls per second with the given burst.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket builds a token bucket pacer. A burst below one is raised
// to one.
func NewTokenBucket(rps float64, burst int) *TokenBucket {
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a token is available or ctx is done.
func (b *TokenBucket) Wait(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// NewPacer selects a token bucket when cfg.Rate is positive and a fixed
// delay otherwise.
func NewPacer(cfg types.PacingConfig) Pacer {
	if cfg.Rate > 0 {
		return NewTokenBucket(cfg.Rate, cfg.Burst)
	}
	return FixedDelay(cfg.Delay)
}
