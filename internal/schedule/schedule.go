// Package schedule holds the refresh cadence policy for renderers and the
// republish cadence for the writer. It decides instants only; callers own
// the timers.
package schedule

import "time"

// MinInterval is the shortest refresh interval a renderer host grants.
const MinInterval = 15 * time.Minute

// Policy is the refresh cadence for one channel.
type Policy struct {
	// Interval is both the floor and the ceiling of the gap between two
	// reader invocations. Never below MinInterval.
	Interval time.Duration

	// Location defines local midnight for day rollover. Nil means time.Local.
	Location *time.Location
}

// NewPolicy returns a Policy for interval, clamped up to MinInterval.
func NewPolicy(interval time.Duration, loc *time.Location) Policy {
	return Policy{Interval: max(interval, MinInterval), Location: loc}
}

func (p Policy) interval() time.Duration {
	return max(p.Interval, MinInterval)
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// NextRefreshAfter returns when the reader should next run after a refresh
// at last.
func (p Policy) NextRefreshAfter(last time.Time) time.Time {
	return last.Add(p.interval())
}

// Due reports whether a refresh at last has gone stale by now.
func (p Policy) Due(last, now time.Time) bool {
	return !now.Before(p.NextRefreshAfter(last))
}

// NextRolloverAfter returns the first local midnight strictly after t.
func (p Policy) NextRolloverAfter(t time.Time) time.Time {
	local := t.In(p.location())
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, p.location())
}

// NextPublishAfter returns when the writer should republish without task
// changes: the earlier of the next day rollover and one interval after last.
func (p Policy) NextPublishAfter(last time.Time) time.Time {
	rollover := p.NextRolloverAfter(last)
	periodic := p.NextRefreshAfter(last)
	if rollover.Before(periodic) {
		return rollover
	}
	return periodic
}

// Timeline returns the next n refresh instants after now, the way a widget
// host timeline is filled ahead of time.
func (p Policy) Timeline(now time.Time, n int) []time.Time {
	out := make([]time.Time, 0, max(n, 0))
	next := now
	for range n {
		next = p.NextRefreshAfter(next)
		out = append(out, next)
	}
	return out
}
