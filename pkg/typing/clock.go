package typing

import "time"

// Clock abstracts timer scheduling so expiry behavior is deterministic in
// tests and every pending timer stays cancellable.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable, reschedulable timer handle.
type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{time.AfterFunc(d, f)}
}

type systemTimer struct{ t *time.Timer }

func (st systemTimer) Stop() bool                 { return st.t.Stop() }
func (st systemTimer) Reset(d time.Duration) bool { return st.t.Reset(d) }

// SystemClock returns a Clock backed by the runtime timers.
func SystemClock() Clock { return systemClock{} }
