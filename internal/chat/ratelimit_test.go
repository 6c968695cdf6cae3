package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserAllowFixedWindow(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limit := RateLimit{}.withDefaults()
	user := &User{Username: "alice", windowStart: start}

	for i := 0; i < DefaultRateMessages; i++ {
		at := start.Add(time.Duration(i) * 490 * time.Millisecond)
		assert.True(t, user.allow(limit, at), "message %d", i+1)
	}

	assert.False(t, user.allow(limit, start.Add(4900*time.Millisecond)))
	assert.Equal(t, DefaultRateMessages, user.messageCount, "a denied message is not counted")

	// Exactly at the window length the window has not expired yet.
	assert.False(t, user.allow(limit, start.Add(DefaultRateWindow)))

	assert.True(t, user.allow(limit, start.Add(DefaultRateWindow+time.Millisecond)))
	assert.Equal(t, 1, user.messageCount)
}

func TestUserAllowBurstAcrossBoundary(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limit := RateLimit{Messages: 3, Window: time.Second}
	user := &User{windowStart: start}

	late := start.Add(999 * time.Millisecond)
	for i := 0; i < 3; i++ {
		assert.True(t, user.allow(limit, late))
	}

	// The next window opens on the first message after expiry, so a second
	// full burst right after the boundary is accepted.
	early := start.Add(1001 * time.Millisecond)
	for i := 0; i < 3; i++ {
		assert.True(t, user.allow(limit, early))
	}
	assert.False(t, user.allow(limit, early))
}

func TestRateLimitDefaults(t *testing.T) {
	rl := RateLimit{Messages: -1}.withDefaults()
	assert.Equal(t, DefaultRateMessages, rl.Messages)
	assert.Equal(t, DefaultRateWindow, rl.Window)

	rl = RateLimit{Messages: 2, Window: time.Minute}.withDefaults()
	assert.Equal(t, 2, rl.Messages)
	assert.Equal(t, time.Minute, rl.Window)
}
