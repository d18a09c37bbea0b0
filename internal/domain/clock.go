package domain

import "time"

// Clock supplies the current instant to the exam lifecycle. The core never
// reads the wall clock itself; every deadline and window comparison takes
// an explicit now, and services inject a Clock so tests can drive time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
