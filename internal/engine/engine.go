package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/genricoloni/archivarium/internal/carousel"
	"github.com/genricoloni/archivarium/internal/content"
	"github.com/genricoloni/archivarium/internal/domain"
	"go.uber.org/zap"
)

// fallbackLocale is mounted when the configured locale has no catalog
const fallbackLocale = "EN"

// Instance is one mounted carousel with its preloader
type Instance struct {
	Content    domain.Content
	Controller *carousel.Controller
	Preloader  *Preloader
}

// View projects the instance's current state
func (i *Instance) View(id string) carousel.Model {
	return carousel.View(id, i.Content.CarouselTitle, i.Controller.Snapshot(), i.Controller.Slides())
}

// Engine orchestrates the carousel pipeline.
// It mounts a carousel per locale, feeds it to a preloader and fans all
// state changes into a single Updates channel for the render layer.
type Engine struct {
	logger    *zap.Logger
	cfg       domain.Config
	loader    domain.ContentLoader
	prefs     domain.MotionPreference
	fetcher   domain.Fetcher
	processor domain.ImageProcessor
	clock     carousel.Clock

	mu               sync.Mutex
	current          *Instance
	stopped          bool
	updates          chan domain.Snapshot
	lastAnnouncement string
}

// NewEngine creates a new orchestration engine
func NewEngine(
	logger *zap.Logger,
	cfg domain.Config,
	loader domain.ContentLoader,
	prefs domain.MotionPreference,
	fetch domain.Fetcher,
	proc domain.ImageProcessor,
	clock carousel.Clock,
) *Engine {
	return &Engine{
		logger:    logger,
		cfg:       cfg,
		loader:    loader,
		prefs:     prefs,
		fetcher:   fetch,
		processor: proc,
		clock:     clock,
		updates:   make(chan domain.Snapshot, 32),
	}
}

// Start mounts the configured locale. It returns immediately.
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting...")

	_, err := e.Mount(ctx, e.cfg.GetLocale())
	if errors.Is(err, content.ErrUnknownLocale) {
		e.logger.Warn("Configured locale not found, using fallback",
			zap.String("locale", e.cfg.GetLocale()),
			zap.String("fallback", fallbackLocale))
		_, err = e.Mount(ctx, fallbackLocale)
	}
	if err != nil {
		return fmt.Errorf("mount carousel: %w", err)
	}
	return nil
}

// Stop unmounts the current carousel and closes Updates
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil
	}
	e.stopped = true
	inst := e.current
	e.current = nil
	e.mu.Unlock()

	e.unmount(ctx, inst)

	close(e.updates)
	return nil
}

// Mount replaces the current carousel with one showing locale's content
func (e *Engine) Mount(ctx context.Context, locale string) (*Instance, error) {
	c, err := e.loader.Load(locale)
	if err != nil {
		return nil, err
	}

	ctrl := carousel.New(e.logger.With(zap.String("locale", c.Locale)), e.clock, e.prefs, c.CarouselItems, e.cfg.GetInterval())
	inst := &Instance{
		Content:    c,
		Controller: ctrl,
		Preloader:  NewPreloader(e.logger, ctrl, e.fetcher, e.processor, e.publish),
	}

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil, errors.New("engine stopped")
	}
	prev := e.current
	e.current = inst
	e.lastAnnouncement = ""
	e.mu.Unlock()

	e.unmount(ctx, prev)

	if err := inst.Preloader.Start(ctx); err != nil {
		return nil, err
	}
	if err := ctrl.Start(ctx); err != nil {
		return nil, err
	}

	e.logger.Info("Carousel mounted",
		zap.String("locale", c.Locale),
		zap.String("title", c.CarouselTitle),
		zap.Int("slides", len(ctrl.Slides())))

	return inst, nil
}

// Current returns the mounted instance, nil once stopped
func (e *Engine) Current() *Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Updates emits a snapshot whenever the mounted carousel changes or a
// preview finishes loading. It is closed by Stop.
func (e *Engine) Updates() <-chan domain.Snapshot {
	return e.updates
}

// unmount tears an instance down on every path
func (e *Engine) unmount(ctx context.Context, inst *Instance) {
	if inst == nil {
		return
	}
	if err := inst.Controller.Stop(ctx); err != nil {
		e.logger.Error("Failed to stop carousel", zap.Error(err))
	}
	if err := inst.Preloader.Stop(ctx); err != nil {
		e.logger.Error("Failed to stop preloader", zap.Error(err))
	}
	e.logger.Info("Carousel unmounted", zap.String("locale", inst.Content.Locale))
}

// publish forwards a snapshot without blocking. In headless mode the live
// announcement goes to the log instead of a screen.
func (e *Engine) publish(snap domain.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}

	if e.cfg.IsHeadless() && e.current != nil {
		text := carousel.Announcement(snap, e.current.Controller.Slides())
		if text != "" && text != e.lastAnnouncement {
			e.lastAnnouncement = text
			e.logger.Info("Announcement",
				zap.String("live", "polite"),
				zap.String("text", text),
				zap.Stringer("state", snap.State))
		}
	}

	select {
	case e.updates <- snap:
	default:
		// the render layer redraws from the latest state anyway
	}
}
