// Package clock abstracts wall-clock access so that overdue-day
// arithmetic and lifecycle timestamps can be tested deterministically.
package clock

import "time"

type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// Today returns the current date truncated to midnight UTC.
	Today() time.Time
}

type systemClock struct{}

func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Today() time.Time {
	return Midnight(time.Now())
}

// Midnight truncates a timestamp to its date in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}

func (f Fixed) Today() time.Time {
	return Midnight(f.T)
}
