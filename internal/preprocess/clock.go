package preprocess

import "time"

// Clock abstracts wall time so cache TTL behavior is testable without
// real waits.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation
func SystemClock() Clock { return realClock{} }
