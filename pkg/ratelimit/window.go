package ratelimit

import (
	"time"
)

// WindowType identifies one of the two quota windows tracked per user.
type WindowType string

const (
	WindowMinute WindowType = "minute"
	WindowDay    WindowType = "day"
)

// Valid reports whether w is a recognized window type.
func (w WindowType) Valid() bool {
	switch w {
	case WindowMinute, WindowDay:
		return true
	default:
		return false
	}
}

// Duration returns the length of the window.
func (w WindowType) Duration() time.Duration {
	if w == WindowDay {
		return 24 * time.Hour
	}
	return time.Minute
}

// Clock maps instants to canonical window boundaries. Minute windows truncate
// to the start of the minute; day windows truncate to the start of the
// calendar day in the configured location.
type Clock struct {
	loc *time.Location
}

// NewClock creates a Clock for the given location. A nil location means UTC.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{loc: loc}
}

// WindowStart returns the canonical start of the window containing t.
// Every instant belongs to exactly one window of each type.
func (c Clock) WindowStart(w WindowType, t time.Time) time.Time {
	lt := t.In(c.location())
	if w == WindowDay {
		return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.location())
	}
	return time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), lt.Minute(), 0, 0, c.location())
}

// WindowEnd returns the instant at which the window beginning at start closes.
func (c Clock) WindowEnd(w WindowType, start time.Time) time.Time {
	return start.Add(w.Duration())
}

func (c Clock) location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}
