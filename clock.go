package reportanchor

import "time"

// Clock is the trusted time source for CreatedAt.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// RealClock is the system clock.
var RealClock Clock = ClockFunc(time.Now)
