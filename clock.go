package gettingback

import (
	"time"
)

// Clock measures the time between frames.
type Clock struct {
	Time   time.Time
	Dt     time.Duration
	Frames uint64
}

func NewClock(now time.Time) *Clock {
	return &Clock{Time: now}
}

// Tick advances to now and returns the frame delta in seconds, the unit
// Scene.Update takes. A clock going backwards yields zero.
func (c *Clock) Tick(now time.Time) float32 {
	c.Dt = max(now.Sub(c.Time), 0)
	c.Time = now
	c.Frames++
	return float32(c.Dt.Seconds())
}
