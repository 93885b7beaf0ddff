package clock

import "time"

// System is the wall clock. Everything that compares time takes a
// domain.Clock so tests can substitute a fixed instant.
type System struct{}

func (System) Now() time.Time { return time.Now() }
