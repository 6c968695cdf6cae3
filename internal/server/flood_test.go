package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFloodLimiterBurstAndRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := newFloodLimiter(3, time.Second)
	limiter.now = func() time.Time { return now }
	limiter.last = now

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.allow(), "frame %d within burst", i)
	}
	assert.False(t, limiter.allow(), "burst exhausted")

	now = now.Add(time.Second / 2)
	assert.True(t, limiter.allow(), "half a second refills one and a half tokens")
	assert.False(t, limiter.allow())

	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.allow(), "refill is capped at the burst size")
	}
	assert.False(t, limiter.allow())
}

func TestFloodLimiterDefaults(t *testing.T) {
	limiter := newFloodLimiter(0, 0)

	assert.Equal(t, 1.0, limiter.capacity)
	assert.Equal(t, 1.0, limiter.perSec)
}
