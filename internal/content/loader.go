package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/genricoloni/archivarium/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// localeFS holds the built-in translation catalogs, one YAML file per locale.
//
//go:embed locales/*.yaml
var localeFS embed.FS

// ErrUnknownLocale is returned when no catalog exists for a locale code
var ErrUnknownLocale = errors.New("unknown locale")

// catalogOrder is the display order of the built-in locales
var catalogOrder = []string{"ES", "EN", "CA"}

// Loader resolves carousel content from YAML catalogs
type Loader struct {
	logger *zap.Logger
	fsys   fs.FS
}

// NewLoader creates a loader over the embedded catalogs, or over dir when it is set
func NewLoader(logger *zap.Logger, dir string) (*Loader, error) {
	if dir == "" {
		sub, err := fs.Sub(localeFS, "locales")
		if err != nil {
			return nil, fmt.Errorf("open embedded locales: %w", err)
		}
		return &Loader{logger: logger, fsys: sub}, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", dir)
	}

	logger.Info("Using external content catalogs", zap.String("dir", dir))
	return &Loader{logger: logger, fsys: os.DirFS(dir)}, nil
}

// NewLoaderFS creates a loader over an arbitrary file system
func NewLoaderFS(logger *zap.Logger, fsys fs.FS) *Loader {
	return &Loader{logger: logger, fsys: fsys}
}

// Load returns the content for a locale code. Codes are case-insensitive.
func (l *Loader) Load(locale string) (domain.Content, error) {
	code := strings.ToUpper(strings.TrimSpace(locale))
	name := strings.ToLower(code) + ".yaml"

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Content{}, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
		}
		return domain.Content{}, fmt.Errorf("read catalog %s: %w", name, err)
	}

	var c domain.Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return domain.Content{}, fmt.Errorf("parse catalog %s: %w", name, err)
	}
	c.Locale = code

	l.logger.Debug("Content loaded",
		zap.String("locale", code),
		zap.Int("items", len(c.CarouselItems)))

	return c, nil
}

// Locales lists the available locale codes. Built-in locales come first
// in their display order, any others follow alphabetically.
func (l *Loader) Locales() []string {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		l.logger.Warn("Failed to list catalogs", zap.Error(err))
		return nil
	}

	found := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		found[strings.ToUpper(strings.TrimSuffix(e.Name(), ".yaml"))] = true
	}

	var codes []string
	for _, code := range catalogOrder {
		if found[code] {
			codes = append(codes, code)
			delete(found, code)
		}
	}

	var rest []string
	for code := range found {
		rest = append(rest, code)
	}
	sort.Strings(rest)

	return append(codes, rest...)
}

// Next returns the locale after current in Locales order, wrapping around
func (l *Loader) Next(current string) string {
	codes := l.Locales()
	if len(codes) == 0 {
		return current
	}
	for i, code := range codes {
		if strings.EqualFold(code, current) {
			return codes[(i+1)%len(codes)]
		}
	}
	return codes[0]
}
