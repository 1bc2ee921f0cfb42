package domain

import (
	"context"
	"time"
)

// MotionPreference exposes the system "prefers reduced motion" signal.
// Implementations read the desktop setting, typically through the D-Bus settings portal
type MotionPreference interface {
	// Start begins watching the preference.
	// It returns once the initial value is known, watching continues in the background
	Start(ctx context.Context) error

	// Stop gracefully stops watching
	Stop(ctx context.Context) error

	// ReducedMotion returns the live preference value
	ReducedMotion() bool

	// Changes returns a read-only channel that emits the new value
	// whenever the preference changes
	Changes() <-chan bool
}

// Carousel is the navigation surface the render layer drives
type Carousel interface {
	GoTo(index int)
	Next()
	Previous()
	Pause()
	Resume()
	Snapshot() Snapshot
	Slides() []Slide
	Events() <-chan Snapshot
}

// ContentLoader resolves locale-specific carousel content
type ContentLoader interface {
	// Load returns the content for a locale code such as "EN"
	Load(locale string) (Content, error)

	// Locales lists the available locale codes in a stable order
	Locales() []string
}

// Fetcher defines the interface for retrieving slide assets
type Fetcher interface {
	// Fetch downloads or reads image data from a URL or local path
	// Returns the raw image bytes or an error
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// ImageProcessor turns raw image bytes into a terminal preview.
// This is OS-agnostic and works purely with byte streams
type ImageProcessor interface {
	Process(ctx context.Context, imageData []byte) (Preview, error)
}

// Opener shows a slide asset in an external viewer
type Opener interface {
	Open(ctx context.Context, ref string) error
}

// Config defines the interface for application configuration
type Config interface {
	// GetLocale returns the initial locale code
	GetLocale() string

	// GetInterval returns the autoplay interval
	GetInterval() time.Duration

	// GetContentDir returns an optional directory overriding the embedded catalogs
	GetContentDir() string

	// GetAssetRoot returns the directory relative slide sources resolve against
	GetAssetRoot() string

	// GetReducedMotion returns "auto", "on" or "off"
	GetReducedMotion() string

	// IsHeadless reports whether the carousel runs without a terminal UI
	IsHeadless() bool

	// GetCarouselID returns the id used to scope slide and thumbnail ids
	GetCarouselID() string

	// GetContactEmail returns the project contact address
	GetContactEmail() string

	// GetPalette returns the presentation colours
	GetPalette() Palette

	// GetPreviewSize returns the preview box in terminal cells
	GetPreviewSize() (cols, rows int)
}
