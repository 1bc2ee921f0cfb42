package carousel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/archivarium/internal/domain"
	"go.uber.org/zap"
)

// DefaultInterval is the autoplay period used when none is given
const DefaultInterval = 4500 * time.Millisecond

// ErrStopped is returned by Start once the controller has been torn down
var ErrStopped = errors.New("carousel stopped")

// Controller owns the current slide, the autoplay timer and the
// reduced motion state of one carousel instance
type Controller struct {
	logger   *zap.Logger
	clock    Clock
	prefs    domain.MotionPreference
	interval time.Duration
	slides   []domain.Slide

	mu              sync.Mutex
	index           int
	state           domain.PlayState
	reducedMotion   bool
	started         bool
	stopped         bool
	stopTimer       chan struct{} // non-nil while a timer is armed
	generation      uint64        // bumped on every arm/disarm, stale ticks are dropped
	cancelWatch     context.CancelFunc
	wg              sync.WaitGroup // autoplay and preference goroutines
	events          chan domain.Snapshot
	lastDropWarning time.Time
}

// New creates a controller over slides. Slides without a source are dropped.
// prefs may be nil, in which case reduced motion is never active.
func New(logger *zap.Logger, clock Clock, prefs domain.MotionPreference, slides []domain.Slide, interval time.Duration) *Controller {
	if clock == nil {
		clock = NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{
		logger:   logger,
		clock:    clock,
		prefs:    prefs,
		interval: interval,
		slides:   Normalize(slides),
		state:    domain.StateIdle,
		events:   make(chan domain.Snapshot, 16),
	}
}

// Normalize drops slides lacking a source and fills in alt text and intrinsic size
func Normalize(slides []domain.Slide) []domain.Slide {
	out := make([]domain.Slide, 0, len(slides))
	for _, s := range slides {
		if strings.TrimSpace(s.Source) == "" {
			continue
		}
		if s.Alt == "" {
			s.Alt = s.Caption
		}
		if s.Alt == "" {
			s.Alt = domain.DefaultAlt
		}
		if s.Width <= 0 {
			s.Width = domain.DefaultSlideWidth
		}
		if s.Height <= 0 {
			s.Height = domain.DefaultSlideHeight
		}
		out = append(out, s)
	}
	return out
}

// Start mounts the carousel: it reads the motion preference, starts watching it
// and arms autoplay when there is more than one slide. It does not block.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return nil
	}
	c.started = true
	c.reducedMotion = c.livePreference()

	if c.prefs != nil {
		// the watcher outlives the start context, Stop cancels it
		watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c.cancelWatch = cancel
		c.wg.Add(1)
		go c.watchPreference(watchCtx, c.prefs.Changes())
	}

	if len(c.slides) > 1 {
		if c.reducedMotion {
			c.state = domain.StatePausedByPreference
		} else {
			c.arm()
			c.state = domain.StatePlaying
		}
	}

	c.logger.Info("Carousel started",
		zap.Int("slides", len(c.slides)),
		zap.Duration("interval", c.interval),
		zap.Stringer("state", c.state))

	c.emit()
	return nil
}

// Stop tears the carousel down. It releases the timer, detaches the preference
// watcher and closes Events. It is safe to call more than once.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	c.disarm()
	c.state = domain.StateIdle
	if c.cancelWatch != nil {
		c.cancelWatch()
	}
	c.mu.Unlock()

	c.logger.Debug("Waiting for carousel goroutines to finish")
	c.wg.Wait()

	// no goroutine can emit any more
	close(c.events)

	c.logger.Info("Carousel stopped")
	return nil
}

// GoTo shows the slide at index, wrapping in both directions
func (c *Controller) GoTo(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goTo(index)
}

// Next advances one slide
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goTo(c.index + 1)
}

// Previous goes back one slide
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goTo(c.index - 1)
}

func (c *Controller) goTo(index int) {
	n := len(c.slides)
	if n == 0 {
		return
	}
	next := ((index % n) + n) % n
	if next == c.index {
		return
	}
	c.index = next
	c.emit()
}

// Pause stops autoplay because the user is interacting with the carousel
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.StatePlaying {
		return
	}
	c.disarm()
	c.state = domain.StatePausedByInteraction
	c.logger.Debug("Autoplay paused by interaction")
	c.emit()
}

// Resume restarts autoplay after an interaction ends. A reduced motion
// preference, read live, keeps the carousel paused.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || c.stopped || len(c.slides) <= 1 {
		return
	}

	c.reducedMotion = c.livePreference()
	if c.reducedMotion {
		c.disarm()
		if c.state != domain.StatePausedByPreference {
			c.state = domain.StatePausedByPreference
			c.emit()
		}
		return
	}

	if c.state == domain.StatePlaying {
		return
	}
	c.arm()
	c.state = domain.StatePlaying
	c.logger.Debug("Autoplay resumed")
	c.emit()
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Slides returns the filtered slide list
func (c *Controller) Slides() []domain.Slide {
	out := make([]domain.Slide, len(c.slides))
	copy(out, c.slides)
	return out
}

// Events returns a read-only channel that emits a Snapshot after every change.
// It is closed by Stop.
func (c *Controller) Events() <-chan domain.Snapshot {
	return c.events
}

// arm starts the autoplay timer unless one is already running. Caller holds mu.
func (c *Controller) arm() {
	if c.stopTimer != nil || len(c.slides) <= 1 {
		return
	}
	c.generation++
	stop := make(chan struct{})
	c.stopTimer = stop

	t := c.clock.NewTicker(c.interval)
	c.wg.Add(1)
	go c.autoplay(t, stop, c.generation)
}

// disarm releases the autoplay timer if any. Caller holds mu.
func (c *Controller) disarm() {
	if c.stopTimer == nil {
		return
	}
	close(c.stopTimer)
	c.stopTimer = nil
	c.generation++
}

func (c *Controller) autoplay(t Ticker, stop <-chan struct{}, gen uint64) {
	defer c.wg.Done()
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C():
			c.tick(gen)
		}
	}
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.stopTimer == nil {
		return
	}
	c.goTo(c.index + 1)
}

func (c *Controller) watchPreference(ctx context.Context, changes <-chan bool) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case reduced, ok := <-changes:
			if !ok {
				c.logger.Info("Motion preference channel closed")
				return
			}
			c.applyPreference(reduced)
		}
	}
}

// applyPreference records a preference change. Turning reduced motion on
// suppresses autoplay; turning it off leaves the carousel paused until the
// next Resume.
func (c *Controller) applyPreference(reduced bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	c.reducedMotion = reduced
	c.logger.Info("Motion preference changed", zap.Bool("reducedMotion", reduced))

	if len(c.slides) > 1 {
		switch {
		case reduced:
			c.disarm()
			c.state = domain.StatePausedByPreference
		case c.state == domain.StatePausedByPreference:
			c.state = domain.StatePausedByInteraction
		}
	}
	c.emit()
}

func (c *Controller) livePreference() bool {
	if c.prefs == nil {
		return false
	}
	return c.prefs.ReducedMotion()
}

func (c *Controller) snapshot() domain.Snapshot {
	return domain.Snapshot{
		Index:         c.index,
		Count:         len(c.slides),
		State:         c.state,
		ReducedMotion: c.reducedMotion,
	}
}

// emit publishes the current state without blocking. Caller holds mu.
func (c *Controller) emit() {
	if c.stopped {
		return
	}
	select {
	case c.events <- c.snapshot():
	default:
		c.logChannelFullWarning()
	}
}

// logChannelFullWarning is rate limited to avoid log spam while autoplay runs
// with nobody reading. Caller holds mu.
func (c *Controller) logChannelFullWarning() {
	const warningInterval = 5 * time.Second
	now := time.Now()

	if now.Sub(c.lastDropWarning) >= warningInterval {
		c.logger.Warn("Carousel events channel full, dropping snapshot",
			zap.Int("index", c.index))
		c.lastDropWarning = now
	}
}
