package engine

import (
	"context"
	"sync"
	"time"

	"github.com/genricoloni/archivarium/internal/carousel"
	"github.com/genricoloni/archivarium/internal/domain"
	"go.uber.org/zap"
)

// defaultDebounce is how long navigation has to settle before assets load
const defaultDebounce = 250 * time.Millisecond

// Preloader follows one carousel and loads the eager slides (the active one
// and the next) into an in-memory preview cache. Lazy slides are only loaded
// once they become eager.
type Preloader struct {
	logger    *zap.Logger
	carousel  domain.Carousel
	fetcher   domain.Fetcher
	processor domain.ImageProcessor
	notify    func(domain.Snapshot)
	debounce  time.Duration

	mu       sync.RWMutex
	previews map[int]domain.Preview
	failures map[int]error
	inflight map[int]bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPreloader creates a preloader. notify is called with every carousel
// snapshot and again whenever a preview becomes available.
func NewPreloader(
	logger *zap.Logger,
	c domain.Carousel,
	fetch domain.Fetcher,
	proc domain.ImageProcessor,
	notify func(domain.Snapshot),
) *Preloader {
	if notify == nil {
		notify = func(domain.Snapshot) {}
	}
	return &Preloader{
		logger:    logger,
		carousel:  c,
		fetcher:   fetch,
		processor: proc,
		notify:    notify,
		debounce:  defaultDebounce,
		previews:  make(map[int]domain.Preview),
		failures:  make(map[int]error),
		inflight:  make(map[int]bool),
	}
}

// Start launches the event loop in a goroutine. It returns immediately.
func (p *Preloader) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel

	p.wg.Add(1)
	go p.runLoop(loopCtx)
	return nil
}

// Stop cancels outstanding loads and waits for them
func (p *Preloader) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// Preview returns the cached preview of slide i
func (p *Preloader) Preview(i int) (domain.Preview, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	preview, ok := p.previews[i]
	return preview, ok
}

// Failure returns the load error of slide i, if loading failed
func (p *Preloader) Failure(i int) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.failures[i]
}

// runLoop is the main event processing loop with debouncing.
// Debouncing avoids loading every slide the user skips through.
func (p *Preloader) runLoop(ctx context.Context) {
	defer p.wg.Done()

	events := p.carousel.Events()

	timer := time.NewTimer(p.debounce)
	timer.Stop() // Start with stopped timer
	defer timer.Stop()

	var pending *domain.Snapshot

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Preloader loop stopped")
			return

		case snap, ok := <-events:
			if !ok {
				p.logger.Debug("Carousel events channel closed")
				return
			}
			p.notify(snap)

			pending = &snap
			timer.Reset(p.debounce)

		case <-timer.C:
			if pending != nil {
				p.preload(ctx, *pending)
				pending = nil
			}
		}
	}
}

// preload starts loading every eager slide that is neither cached nor in flight
func (p *Preloader) preload(ctx context.Context, snap domain.Snapshot) {
	slides := p.carousel.Slides()

	for _, i := range carousel.EagerIndices(snap.Index, len(slides)) {
		p.mu.Lock()
		_, cached := p.previews[i]
		busy := p.inflight[i]
		if !cached && !busy {
			p.inflight[i] = true
		}
		p.mu.Unlock()

		if cached || busy {
			continue
		}

		p.wg.Add(1)
		go p.load(ctx, i, slides[i])
	}
}

func (p *Preloader) load(ctx context.Context, i int, slide domain.Slide) {
	defer p.wg.Done()

	preview, err := p.fetchPreview(ctx, slide)

	p.mu.Lock()
	delete(p.inflight, i)
	if err != nil {
		p.failures[i] = err
	} else {
		p.previews[i] = preview
		delete(p.failures, i)
	}
	p.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("Failed to load slide",
				zap.Int("slide", i),
				zap.String("src", slide.Source),
				zap.Error(err))
		}
		return
	}

	p.logger.Debug("Slide preview ready", zap.Int("slide", i))
	p.notify(p.carousel.Snapshot())
}

func (p *Preloader) fetchPreview(ctx context.Context, slide domain.Slide) (domain.Preview, error) {
	data, err := p.fetcher.Fetch(ctx, slide.Source)
	if err != nil {
		return domain.Preview{}, err
	}
	return p.processor.Process(ctx, data)
}
