package playback

import (
	"sync"
	"time"

	"github.com/lixenwraith/vi-replay/constants"
)

// Clock is the fixed-period source of Tick invocations
// Slow receivers drop ticks instead of queueing them, so ticks never overlap
type Clock struct {
	mu       sync.Mutex
	period   time.Duration
	ticker   *time.Ticker
	stopOnce sync.Once
}

// NewClock starts a clock; non-positive periods fall back to the default
func NewClock(period time.Duration) *Clock {
	if period <= 0 {
		period = constants.DefaultPlaybackPeriod
	}
	return &Clock{
		period: period,
		ticker: time.NewTicker(period),
	}
}

// C delivers one value per period
func (c *Clock) C() <-chan time.Time {
	return c.ticker.C
}

// Period returns the current tick period
func (c *Clock) Period() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period
}

// Reset changes the period, clamped to the allowed range
func (c *Clock) Reset(period time.Duration) time.Duration {
	period = max(constants.MinPlaybackPeriod, min(period, constants.MaxPlaybackPeriod))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.period = period
	c.ticker.Reset(period)
	return period
}

// Stop halts the clock; safe to call more than once
func (c *Clock) Stop() {
	c.stopOnce.Do(c.ticker.Stop)
}
