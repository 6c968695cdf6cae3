package chat

import "time"

// Default message rate: at most DefaultRateMessages per DefaultRateWindow.
const (
	DefaultRateMessages = 10
	DefaultRateWindow   = 5 * time.Second
)

// RateLimit configures the per-user message limiter. The limiter is a fixed
// window counter: the window restarts on the first message after it expires,
// so a burst of up to twice Messages can straddle a window boundary.
type RateLimit struct {
	Messages int
	Window   time.Duration
}

func (rl RateLimit) withDefaults() RateLimit {
	if rl.Messages <= 0 {
		rl.Messages = DefaultRateMessages
	}
	if rl.Window <= 0 {
		rl.Window = DefaultRateWindow
	}
	return rl
}

// allow consumes one message from the user's current window. It reports
// false, without consuming, once the window is exhausted.
func (u *User) allow(rl RateLimit, now time.Time) bool {
	if now.Sub(u.windowStart) > rl.Window {
		u.messageCount = 0
		u.windowStart = now
	}

	if u.messageCount >= rl.Messages {
		return false
	}

	u.messageCount++
	return true
}
