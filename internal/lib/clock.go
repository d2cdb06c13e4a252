package lib

import (
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// Clock is the source of "now" for every time sensitive operation
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when told to, the way a test chain only moves when a block is mined
type ManualClock struct {
	unixNano atomic.Int64
}

func NewManualClock(start time.Time) *ManualClock {
	c := &ManualClock{}
	c.unixNano.Store(start.UnixNano())
	return c
}

func (c *ManualClock) Now() time.Time {
	return time.Unix(0, c.unixNano.Load())
}

func (c *ManualClock) Advance(d time.Duration) time.Time {
	return time.Unix(0, c.unixNano.Add(int64(d)))
}

// IncreaseTo moves the clock forward to target, moving it backwards is an error
func (c *ManualClock) IncreaseTo(target time.Time) error {
	now := c.Now()
	if target.Before(now) {
		return fmt.Errorf("cannot increase current time (%s) to a moment in the past (%s)", now, target)
	}
	c.unixNano.Store(target.UnixNano())
	return nil
}
