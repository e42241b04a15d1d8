package receiver

import (
	"time"
)

// Timer is a restartable one-shot delay.
type Timer interface {
	// C returns the channel the expiry is delivered on.
	C() <-chan time.Time
	// Reset (re)starts the delay, a pending expiry is discarded.
	Reset(d time.Duration)
	// Stop cancels the delay.
	Stop()
}

// clockTimer is a Timer based on time.Timer.
type clockTimer struct {
	t *time.Timer
}

// NewTimer returns a stopped Timer based on time.Timer.
func NewTimer() Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &clockTimer{t: t}
}

func (c *clockTimer) C() <-chan time.Time {
	return c.t.C
}

// Reset relies on the timer semantics of go1.23: a stale expiry is never received after Reset.
func (c *clockTimer) Reset(d time.Duration) {
	c.t.Reset(d)
}

func (c *clockTimer) Stop() {
	c.t.Stop()
}

func micros(us uint32) time.Duration {
	return time.Duration(us) * time.Microsecond
}
