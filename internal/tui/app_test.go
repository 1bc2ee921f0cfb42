package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/genricoloni/archivarium/internal/carousel"
	"github.com/genricoloni/archivarium/internal/config"
	"github.com/genricoloni/archivarium/internal/content"
	"github.com/genricoloni/archivarium/internal/domain"
	"github.com/genricoloni/archivarium/internal/engine"
	"github.com/genricoloni/archivarium/internal/executor"
	"github.com/genricoloni/archivarium/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var catalogs = fstest.MapFS{
	"en.yaml": {Data: []byte(`carouselTitle: Snapshots
carouselItems:
  - src: one.png
    caption: First
  - src: two.png
    caption: Second
  - src: three.png
    alt: Third
`)},
	"es.yaml": {Data: []byte(`carouselTitle: Capturas
carouselItems:
  - src: uno.png
    caption: Primera
  - src: dos.png
    caption: Segunda
`)},
}

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	return []byte(ref), nil
}

type stubProcessor struct{}

func (stubProcessor) Process(ctx context.Context, data []byte) (domain.Preview, error) {
	return domain.Preview{}, nil
}

type recordingOpener struct {
	mu   sync.Mutex
	refs []string
	err  error
}

func (o *recordingOpener) Open(ctx context.Context, ref string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.refs = append(o.refs, ref)
	return o.err
}

func newTestApp(t *testing.T, opener domain.Opener) (*App, *engine.Engine) {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.AppConfig{
		Locale:       "EN",
		Interval:     time.Hour,
		CarouselID:   "gallery",
		ContactEmail: "team@example.org",
		Preview:      config.PreviewConfig{Width: 20, Height: 4},
	}
	loader := content.NewLoaderFS(logger, catalogs)
	e := engine.NewEngine(logger, cfg, loader, monitor.NewStaticPreference(logger, false),
		stubFetcher{}, stubProcessor{}, carousel.NewRealClock())

	ctx := context.Background()
	require.NoError(t, e.Start(ctx))
	t.Cleanup(func() { _ = e.Stop(ctx) })

	return New(ctx, logger, e, loader, opener, cfg), e
}

func key(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func snapshot(e *engine.Engine) domain.Snapshot {
	return e.Current().Controller.Snapshot()
}

func TestApp_KeyboardContract(t *testing.T) {
	app, e := newTestApp(t, &recordingOpener{})

	app.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 2, snapshot(e).Index)

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, snapshot(e).Index)

	app.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 2, snapshot(e).Index)

	app.Update(tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, snapshot(e).Index)

	app.Update(key("3"))
	assert.Equal(t, 2, snapshot(e).Index)

	// out of range digits are ignored
	app.Update(key("9"))
	assert.Equal(t, 2, snapshot(e).Index)
}

func TestApp_FocusPausesAndTabResumes(t *testing.T) {
	app, e := newTestApp(t, &recordingOpener{})
	require.Equal(t, domain.StatePlaying, snapshot(e).State)

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, domain.StatePausedByInteraction, snapshot(e).State)

	app.Update(tea.BlurMsg{})
	assert.Equal(t, domain.StatePlaying, snapshot(e).State)

	app.Update(tea.FocusMsg{})
	assert.Equal(t, domain.StatePausedByInteraction, snapshot(e).State)

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.StatePlaying, snapshot(e).State)
}

func TestApp_HoverPausesUntilPointerLeaves(t *testing.T) {
	app, e := newTestApp(t, &recordingOpener{})

	app.Update(tea.MouseMsg{X: 2, Y: regionTop, Action: tea.MouseActionMotion})
	assert.Equal(t, domain.StatePausedByInteraction, snapshot(e).State)

	// still inside
	app.Update(tea.MouseMsg{X: 2, Y: app.thumbRow(), Action: tea.MouseActionMotion})
	assert.Equal(t, domain.StatePausedByInteraction, snapshot(e).State)

	app.Update(tea.MouseMsg{X: 2, Y: app.thumbRow() + 3, Action: tea.MouseActionMotion})
	assert.Equal(t, domain.StatePlaying, snapshot(e).State)
}

func TestApp_HoverAndFocusCombine(t *testing.T) {
	app, e := newTestApp(t, &recordingOpener{})

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	app.Update(tea.MouseMsg{X: 0, Y: regionTop, Action: tea.MouseActionMotion})
	app.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})

	// focus is still inside
	assert.Equal(t, domain.StatePausedByInteraction, snapshot(e).State)

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, domain.StatePlaying, snapshot(e).State)
}

func TestApp_ClickThumbnail(t *testing.T) {
	app, e := newTestApp(t, &recordingOpener{})

	// "[1] [2] [3]": the third chip starts at column 8
	app.Update(tea.MouseMsg{X: 9, Y: app.thumbRow(), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, 2, snapshot(e).Index)

	// the gap between chips does nothing
	app.Update(tea.MouseMsg{X: 3, Y: app.thumbRow(), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, 2, snapshot(e).Index)
}

func TestThumbAt(t *testing.T) {
	tests := []struct {
		x      int
		want   int
		wantOK bool
	}{
		{x: 0, want: 0, wantOK: true},
		{x: 2, want: 0, wantOK: true},
		{x: 3},
		{x: 4, want: 1, wantOK: true},
		{x: 10, want: 2, wantOK: true},
		{x: 11},
	}
	for _, tt := range tests {
		got, ok := thumbAt(3, tt.x)
		assert.Equal(t, tt.wantOK, ok, "x=%d", tt.x)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "x=%d", tt.x)
		}
	}
}

func TestApp_EnterOpensActiveAsset(t *testing.T) {
	opener := &recordingOpener{}
	app, _ := newTestApp(t, opener)

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	app.Update(cmd())
	assert.Equal(t, []string{"two.png"}, opener.refs)
	assert.Equal(t, "opened two.png", app.status)
}

func TestApp_EnterWithoutViewer(t *testing.T) {
	app, _ := newTestApp(t, &recordingOpener{err: executor.ErrNoViewer})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	app.Update(cmd())
	assert.Equal(t, "no image viewer available", app.status)
}

func TestApp_CycleLocale(t *testing.T) {
	app, e := newTestApp(t, &recordingOpener{})
	old := e.Current()

	_, cmd := app.Update(key("l"))
	require.NotNil(t, cmd)
	app.Update(cmd())

	inst := e.Current()
	assert.NotSame(t, old, inst)
	assert.Equal(t, "ES", inst.Content.Locale)
	assert.Equal(t, "locale ES", app.status)
	assert.Contains(t, app.View(), "CAPTURAS")
}

func TestApp_LocaleSwitchKeepsInteractionPause(t *testing.T) {
	app, e := newTestApp(t, &recordingOpener{})
	app.Update(tea.KeyMsg{Type: tea.KeyRight})

	_, cmd := app.Update(key("l"))
	app.Update(cmd())

	assert.Equal(t, domain.StatePausedByInteraction, snapshot(e).State)
}

func TestApp_View(t *testing.T) {
	app, e := newTestApp(t, &recordingOpener{})
	e.Current().Controller.GoTo(1)

	view := app.View()
	lines := strings.Split(view, "\n")

	assert.Contains(t, lines[0], "SNAPSHOTS")
	assert.Contains(t, lines[app.thumbRow()-1], "Second")
	assert.Contains(t, lines[app.thumbRow()], "[1]")
	assert.Contains(t, lines[app.thumbRow()], "[3]")
	assert.Contains(t, view, "Slide 2 of 3: Second")
	assert.Contains(t, view, "team@example.org")
}

func TestApp_QuitAndClosedUpdates(t *testing.T) {
	app, e := newTestApp(t, &recordingOpener{})

	_, cmd := app.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	require.NoError(t, e.Stop(context.Background()))
	msg := app.waitForUpdate()
	for {
		m := msg()
		if _, ok := m.(closedMsg); ok {
			_, cmd = app.Update(m)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			break
		}
	}
	assert.Contains(t, app.View(), "Carousel stopped.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long…", truncate("longer text", 5))
	assert.Equal(t, "…", truncate("abc", 1))
}
