package input

import "time"

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock supplies time and delayed callbacks to the detector.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is backed by the time package.
var SystemClock Clock = realClock{}
