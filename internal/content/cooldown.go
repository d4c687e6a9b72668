package content

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultCooldown is how long AI scoring stays off after a quota error
const DefaultCooldown = 60 * time.Second

// Cooldown is a process-wide quota guard. One instance is shared by every caller.
type Cooldown struct {
	clock    clockwork.Clock
	duration time.Duration
	until    atomic.Int64 // unix nanos
}

// NewCooldown creates a cooldown guard; a nil clock uses the real clock
func NewCooldown(clock clockwork.Clock, duration time.Duration) *Cooldown {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if duration <= 0 {
		duration = DefaultCooldown
	}
	return &Cooldown{clock: clock, duration: duration}
}

// Active reports whether AI calls are currently suppressed
func (c *Cooldown) Active() bool {
	return c.clock.Now().UnixNano() < c.until.Load()
}

// Trip extends the window to now+duration. It never shortens an existing window.
func (c *Cooldown) Trip() {
	next := c.clock.Now().Add(c.duration).UnixNano()
	for {
		cur := c.until.Load()
		if next <= cur {
			return
		}
		if c.until.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Remaining returns the time left in the window, zero when inactive
func (c *Cooldown) Remaining() time.Duration {
	left := time.Duration(c.until.Load() - c.clock.Now().UnixNano())
	if left < 0 {
		return 0
	}
	return left
}
