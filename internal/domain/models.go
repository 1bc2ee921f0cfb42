package domain

import "image/color"

const (
	// DefaultSlideWidth is the intrinsic width assumed when a slide omits one
	DefaultSlideWidth = 1920
	// DefaultSlideHeight is the intrinsic height assumed when a slide omits one
	DefaultSlideHeight = 720
	// DefaultAlt is used when a slide has neither alt text nor caption
	DefaultAlt = "Screenshot"
)

// Slide is one displayable unit of the carousel
type Slide struct {
	// Source is the required display asset reference (URL, file:// URI or path)
	Source string `yaml:"src"`
	// Alt is the textual alternative for the asset
	Alt string `yaml:"alt,omitempty"`
	// Caption is shown over the slide and announced on change
	Caption string `yaml:"caption,omitempty"`

	// Alternate formats of the display asset
	SourceAVIF string `yaml:"srcAvif,omitempty"`
	SourceWebP string `yaml:"srcWebp,omitempty"`

	// Dedicated thumbnail assets
	ThumbSource string `yaml:"thumbSrc,omitempty"`
	ThumbAVIF   string `yaml:"thumbAvif,omitempty"`
	ThumbWebP   string `yaml:"thumbWebp,omitempty"`

	// Intrinsic size, zero means unspecified
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// Label returns the caption, falling back to the alt text
func (s Slide) Label() string {
	if s.Caption != "" {
		return s.Caption
	}
	return s.Alt
}

// Thumbnail returns the preferred thumbnail reference
func (s Slide) Thumbnail() string {
	switch {
	case s.ThumbAVIF != "":
		return s.ThumbAVIF
	case s.ThumbWebP != "":
		return s.ThumbWebP
	case s.ThumbSource != "":
		return s.ThumbSource
	default:
		return s.Source
	}
}

// Content is the locale-resolved input of the carousel
type Content struct {
	Locale        string  `yaml:"-"`
	CarouselTitle string  `yaml:"carouselTitle"`
	CarouselItems []Slide `yaml:"carouselItems"`
}

// PlayState is the autoplay state of a carousel
type PlayState int

const (
	// StateIdle means autoplay is not applicable (fewer than two slides or unmounted)
	StateIdle PlayState = iota
	// StatePlaying means the autoplay timer is armed
	StatePlaying
	// StatePausedByInteraction means the user is hovering or focusing the carousel
	StatePausedByInteraction
	// StatePausedByPreference means the reduced motion preference suppresses autoplay
	StatePausedByPreference
)

func (s PlayState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePausedByInteraction:
		return "paused-by-interaction"
	case StatePausedByPreference:
		return "paused-by-preference"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the carousel state
type Snapshot struct {
	Index         int
	Count         int
	State         PlayState
	ReducedMotion bool
}

// Playing reports whether autoplay is armed
func (s Snapshot) Playing() bool {
	return s.State == StatePlaying
}

// Preview is a downsized image ready for terminal rendering.
// Each cell holds two vertically stacked pixels.
type Preview struct {
	Cols  int
	Rows  int
	Upper []color.RGBA
	Lower []color.RGBA
}

// ScreenResolution holds the display dimensions
type ScreenResolution struct {
	Width  int
	Height int
}

// Palette holds the presentation colours, injected through configuration
type Palette struct {
	Text      string `mapstructure:"text"`
	TextMuted string `mapstructure:"text_muted"`
	Heading   string `mapstructure:"heading"`
	Surface   string `mapstructure:"surface"`
	Border    string `mapstructure:"border"`
	Focus     string `mapstructure:"focus"`
	Accent    string `mapstructure:"accent"`
}
