package carousel

import "time"

// Clock creates the autoplay ticker. Tests replace it to drive time by hand.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks until stopped
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewRealClock returns a Clock backed by time.Ticker
func NewRealClock() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }

func (r realTicker) Stop() { r.t.Stop() }
