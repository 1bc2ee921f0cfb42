package content

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoader_Embedded(t *testing.T) {
	l, err := NewLoader(zap.NewNop(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"ES", "EN", "CA"}, l.Locales())

	for _, code := range l.Locales() {
		t.Run(code, func(t *testing.T) {
			c, err := l.Load(code)
			require.NoError(t, err)
			assert.Equal(t, code, c.Locale)
			assert.NotEmpty(t, c.CarouselTitle)
			assert.NotEmpty(t, c.CarouselItems)
			for _, item := range c.CarouselItems {
				assert.NotEmpty(t, item.Source)
			}
		})
	}
}

func TestLoader_CaseInsensitive(t *testing.T) {
	l, err := NewLoader(zap.NewNop(), "")
	require.NoError(t, err)

	c, err := l.Load(" en ")
	require.NoError(t, err)
	assert.Equal(t, "EN", c.Locale)
	assert.Equal(t, "Snapshots", c.CarouselTitle)
}

func TestLoader_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"en.yaml":  {Data: []byte("carouselTitle: [unclosed")},
		"fr.yaml":  {Data: []byte("carouselTitle: Galerie\n")},
		"notes.md": {Data: []byte("ignored")},
	}
	l := NewLoaderFS(zap.NewNop(), fsys)

	tests := []struct {
		name      string
		locale    string
		wantErr   bool
		wantIsErr error
	}{
		{name: "unknown locale", locale: "DE", wantErr: true, wantIsErr: ErrUnknownLocale},
		{name: "empty locale", locale: "", wantErr: true, wantIsErr: ErrUnknownLocale},
		{name: "malformed yaml", locale: "EN", wantErr: true},
		{name: "no items", locale: "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := l.Load(tt.locale)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Empty(t, c.CarouselItems)
				return
			}
			require.Error(t, err)
			if tt.wantIsErr != nil {
				assert.True(t, errors.Is(err, tt.wantIsErr), "got %v", err)
			} else {
				assert.False(t, errors.Is(err, ErrUnknownLocale))
			}
		})
	}
}

func TestLoader_LocaleOrderAndNext(t *testing.T) {
	fsys := fstest.MapFS{
		"ca.yaml": {Data: []byte("carouselTitle: A\n")},
		"pt.yaml": {Data: []byte("carouselTitle: B\n")},
		"en.yaml": {Data: []byte("carouselTitle: C\n")},
		"de.yaml": {Data: []byte("carouselTitle: D\n")},
	}
	l := NewLoaderFS(zap.NewNop(), fsys)

	assert.Equal(t, []string{"EN", "CA", "DE", "PT"}, l.Locales())
	assert.Equal(t, "CA", l.Next("en"))
	assert.Equal(t, "EN", l.Next("PT"))
	assert.Equal(t, "EN", l.Next("XX"))
}

func TestNewLoader_BadDir(t *testing.T) {
	_, err := NewLoader(zap.NewNop(), "/definitely/not/here")
	assert.Error(t, err)
}
