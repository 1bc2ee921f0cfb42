package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/genricoloni/archivarium/internal/domain"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultLocale     = "EN"
	defaultInterval   = 4500 * time.Millisecond
	defaultCarouselID = "carousel"
	defaultContact    = "nadinaccg@gmail.com"
	defaultLogLevel   = "info"

	envPrefix = "ARCHIVARIUM"
)

// AppConfig holds application configuration
type AppConfig struct {
	Locale        string         `mapstructure:"locale"`
	Interval      time.Duration  `mapstructure:"interval"`
	ContentDir    string         `mapstructure:"content_dir"`
	AssetRoot     string         `mapstructure:"asset_root"`
	ReducedMotion string         `mapstructure:"reduced_motion"`
	Headless      bool           `mapstructure:"headless"`
	LogLevel      string         `mapstructure:"log_level"`
	LogFile       string         `mapstructure:"log_file"`
	CarouselID    string         `mapstructure:"carousel_id"`
	ContactEmail  string         `mapstructure:"contact_email"`
	Palette       domain.Palette `mapstructure:"palette"`
	Preview       PreviewConfig  `mapstructure:"preview"`
}

// PreviewConfig holds the size of the slide preview box in terminal cells
type PreviewConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Load reads configuration from file and env. Env var overrides use prefix ARCHIVARIUM_.
func Load() (*AppConfig, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()

	v.SetDefault("locale", defaultLocale)
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("content_dir", "")
	v.SetDefault("asset_root", ".")
	v.SetDefault("reduced_motion", "auto")
	v.SetDefault("headless", false)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_file", filepath.Join(os.TempDir(), "archivarium.log"))
	v.SetDefault("carousel_id", defaultCarouselID)
	v.SetDefault("contact_email", defaultContact)
	v.SetDefault("palette.text", "#2B2B2B")
	v.SetDefault("palette.text_muted", "#5E5E5E")
	v.SetDefault("palette.heading", "#3B2D1C")
	v.SetDefault("palette.surface", "#F5F4F2")
	v.SetDefault("palette.border", "#515050")
	v.SetDefault("palette.focus", "#E8630A")
	v.SetDefault("palette.accent", "#D46D29")
	v.SetDefault("preview.width", 64)
	v.SetDefault("preview.height", 16)

	v.SetConfigType("toml")

	cfgPath := os.Getenv(envPrefix + "_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "archivarium"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// a missing default file is fine, an explicit one must exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c AppConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.normalize()

	return &c, nil
}

// normalize fixes values that would break the carousel
func (c *AppConfig) normalize() {
	c.Locale = strings.ToUpper(strings.TrimSpace(c.Locale))
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	switch strings.ToLower(c.ReducedMotion) {
	case "on", "off":
		c.ReducedMotion = strings.ToLower(c.ReducedMotion)
	default:
		c.ReducedMotion = "auto"
	}
	if c.CarouselID == "" {
		c.CarouselID = defaultCarouselID
	}

	// Expand path if it contains ~ or environment variables
	c.ContentDir = expandPath(c.ContentDir)
	c.AssetRoot = expandPath(c.AssetRoot)
	c.LogFile = expandPath(c.LogFile)
}

func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// LogFields logs the effective configuration
func (c *AppConfig) LogFields(logger *zap.Logger) {
	logger.Info("Configuration loaded",
		zap.String("locale", c.Locale),
		zap.Duration("interval", c.Interval),
		zap.String("contentDir", c.ContentDir),
		zap.String("assetRoot", c.AssetRoot),
		zap.String("reducedMotion", c.ReducedMotion),
		zap.Bool("headless", c.Headless))
}

// GetLocale returns the initial locale code
func (c *AppConfig) GetLocale() string {
	return c.Locale
}

// GetInterval returns the autoplay interval
func (c *AppConfig) GetInterval() time.Duration {
	return c.Interval
}

// GetContentDir returns an optional directory overriding the embedded catalogs
func (c *AppConfig) GetContentDir() string {
	return c.ContentDir
}

// GetAssetRoot returns the directory relative slide sources resolve against
func (c *AppConfig) GetAssetRoot() string {
	return c.AssetRoot
}

// GetReducedMotion returns "auto", "on" or "off"
func (c *AppConfig) GetReducedMotion() string {
	return c.ReducedMotion
}

// IsHeadless reports whether the terminal UI is disabled
func (c *AppConfig) IsHeadless() bool {
	return c.Headless
}

// GetCarouselID returns the id used to scope slide and thumbnail ids
func (c *AppConfig) GetCarouselID() string {
	return c.CarouselID
}

// GetContactEmail returns the project contact address
func (c *AppConfig) GetContactEmail() string {
	return c.ContactEmail
}

// GetPalette returns the presentation colours
func (c *AppConfig) GetPalette() domain.Palette {
	return c.Palette
}

// GetPreviewSize returns the preview box in terminal cells
func (c *AppConfig) GetPreviewSize() (int, int) {
	cols, rows := c.Preview.Width, c.Preview.Height
	if cols <= 0 {
		cols = 64
	}
	if rows <= 0 {
		rows = 16
	}
	return cols, rows
}
