// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-harvester/pkg/types"
)

func TestFixedDelay(t *testing.T) {
	start := time.Now()
	require.NoError(t, FixedDelay(20*time.Millisecond).Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	require.NoError(t, FixedDelay(0).Wait(context.Background()))
}

func TestFixedDelayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, FixedDelay(time.Hour).Wait(ctx), context.Canceled)
	assert.ErrorIs(t, FixedDelay(0).Wait(ctx), context.Canceled)
}

func TestTokenBucket(t *testing.T) {
	b := NewTokenBucket(1000, 2)
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Wait(context.Background()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NewTokenBucket(0.001, 1).Wait(ctx))
}

func TestNewPacer(t *testing.T) {
	assert.Equal(t, FixedDelay(100*time.Millisecond), NewPacer(types.PacingConfig{Delay: 100 * time.Millisecond}))

	p := NewPacer(types.PacingConfig{Delay: time.Second, Rate: 5, Burst: 0})
	bucket, ok := p.(*TokenBucket)
	require.True(t, ok)
	assert.Equal(t, 1, bucket.limiter.Burst())
}
