package phase

import "time"

// Clock caches the phase of a schedule. Nothing refreshes it on time passing, the owner
// has to call Refresh before any time sensitive decision
type Clock struct {
	schedule Schedule
	current  Phase
}

func NewClock(schedule Schedule) *Clock {
	return &Clock{schedule: schedule, current: NotStarted}
}

// Refresh recomputes the phase at now. The phase never goes backwards, so a clock skew leaves the cached value.
// Returns true if the phase has changed
func (c *Clock) Refresh(now time.Time) (Phase, bool) {
	next := Compute(now, c.schedule)
	if !c.current.Before(next) {
		return c.current, false
	}
	c.current = next
	return c.current, true
}

func (c *Clock) Current() Phase {
	return c.current
}

func (c *Clock) Schedule() Schedule {
	return c.schedule
}
