// Package server implements a token bucket flood limiter for per-connection
// frame throttling that protects the hub from abuse.
package server

import (
	"sync"
	"time"
)

// floodLimiter throttles raw inbound frames of any event type. It refills
// continuously at burst tokens per interval. Chat messages are additionally
// subject to the router's fixed-window limit.
type floodLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
	now      func() time.Time
}

func newFloodLimiter(burst int, interval time.Duration) *floodLimiter {
	if burst <= 0 {
		burst = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	return &floodLimiter{
		tokens:   float64(burst),
		capacity: float64(burst),
		perSec:   float64(burst) / interval.Seconds(),
		last:     time.Now(),
		now:      time.Now,
	}
}

// allow takes one token, reporting false when the bucket is empty.
func (f *floodLimiter) allow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if elapsed := now.Sub(f.last).Seconds(); elapsed > 0 {
		f.tokens = min(f.capacity, f.tokens+elapsed*f.perSec)
	}
	f.last = now

	if f.tokens < 1 {
		return false
	}
	f.tokens--
	return true
}
