package monitor

import "time"

// Clock abstracts the time source behind the timing gates so they can be
// tested deterministically without real delays.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the wall-clock time source used in production.
func RealClock() Clock { return realClock{} }
