package carousel

import (
	"context"
	"sync"
	"time"
)

// fakeClock fires ticks only when Advance is called
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	created int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTicker{
		period: d,
		next:   f.now.Add(d),
		ch:     make(chan time.Time),
		done:   make(chan struct{}),
	}
	f.tickers = append(f.tickers, t)
	f.created++
	return t
}

// Advance moves time forward, delivering every tick that falls due.
// Each send blocks until the autoplay goroutine has taken the previous one.
func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	tickers := append([]*fakeTicker(nil), f.tickers...)
	f.mu.Unlock()

	for _, t := range tickers {
		for !t.next.After(target) {
			if !t.fire(t.next) {
				break
			}
			t.next = t.next.Add(t.period)
		}
	}

	f.mu.Lock()
	f.now = target
	f.mu.Unlock()
}

// Created returns how many tickers have been created so far
func (f *fakeClock) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// Live returns how many tickers have not been stopped
func (f *fakeClock) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

type fakeTicker struct {
	period time.Duration
	next   time.Time
	ch     chan time.Time
	done   chan struct{}
	once   sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() { t.once.Do(func() { close(t.done) }) }

func (t *fakeTicker) fire(at time.Time) bool {
	select {
	case <-t.done:
		return false
	default:
	}
	select {
	case t.ch <- at:
		return true
	case <-t.done:
		return false
	}
}

func (t *fakeTicker) isStopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// fakePreference is a settable motion preference
type fakePreference struct {
	mu      sync.Mutex
	reduced bool
	changes chan bool
}

func newFakePreference(reduced bool) *fakePreference {
	return &fakePreference{reduced: reduced, changes: make(chan bool, 4)}
}

func (p *fakePreference) Start(ctx context.Context) error { return nil }

func (p *fakePreference) Stop(ctx context.Context) error { return nil }

func (p *fakePreference) ReducedMotion() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reduced
}

func (p *fakePreference) Changes() <-chan bool { return p.changes }

// Set updates the live value and notifies watchers
func (p *fakePreference) Set(reduced bool) {
	p.mu.Lock()
	p.reduced = reduced
	p.mu.Unlock()
	p.changes <- reduced
}

// SetSilently updates the live value without a change event
func (p *fakePreference) SetSilently(reduced bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reduced = reduced
}
