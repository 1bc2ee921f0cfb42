package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/genricoloni/archivarium/internal/carousel"
	"github.com/genricoloni/archivarium/internal/domain"
	"github.com/genricoloni/archivarium/internal/engine"
	"github.com/genricoloni/archivarium/internal/executor"
	"github.com/genricoloni/archivarium/internal/processor"
	"go.uber.org/zap"
)

// regionTop is the first screen row of the carousel region, below the heading
const regionTop = 1

// LocaleCycler picks the locale shown after the current one
type LocaleCycler interface {
	Next(current string) string
}

// App is the bubbletea model of the carousel screen. It renders from the
// engine's mounted instance on every update.
type App struct {
	ctx     context.Context
	logger  *zap.Logger
	engine  *engine.Engine
	locales LocaleCycler
	opener  domain.Opener
	cfg     domain.Config
	styles  styles

	cols, rows int

	// focused is keyboard focus inside the region, termFocused the terminal's own
	focused     bool
	termFocused bool
	hovering    bool

	status string
}

// New creates the TUI model
func New(ctx context.Context, logger *zap.Logger, e *engine.Engine, locales LocaleCycler, opener domain.Opener, cfg domain.Config) *App {
	cols, rows := cfg.GetPreviewSize()
	return &App{
		ctx:         ctx,
		logger:      logger,
		engine:      e,
		locales:     locales,
		opener:      opener,
		cfg:         cfg,
		styles:      newStyles(cfg.GetPalette()),
		cols:        cols,
		rows:        rows,
		termFocused: true,
	}
}

// NewProgram wraps the model in a full screen program with focus and
// all-motion mouse reporting
func NewProgram(app *App, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	}, opts...)
	return tea.NewProgram(app, opts...)
}

type updateMsg domain.Snapshot

type closedMsg struct{}

type mountedMsg struct{ inst *engine.Instance }

type statusMsg string

type errMsg struct{ error }

func (a *App) Init() tea.Cmd {
	return a.waitForUpdate()
}

// waitForUpdate blocks on the engine's next snapshot
func (a *App) waitForUpdate() tea.Cmd {
	updates := a.engine.Updates()
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return updateMsg(snap)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(m)
	case tea.MouseMsg:
		return a.handleMouse(m)
	case tea.FocusMsg:
		before := a.interacting()
		a.termFocused = true
		a.syncInteraction(before)
	case tea.BlurMsg:
		before := a.interacting()
		a.termFocused = false
		a.hovering = false
		a.syncInteraction(before)
	case updateMsg:
		// the view reads the instance directly, the message only wakes us up
		return a, a.waitForUpdate()
	case closedMsg:
		return a, tea.Quit
	case mountedMsg:
		a.status = "locale " + m.inst.Content.Locale
		if a.interacting() {
			m.inst.Controller.Pause()
		}
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	inst := a.engine.Current()

	switch key := m.String(); key {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "tab", "esc":
		a.setFocus(false)
	case "enter":
		if inst != nil {
			return a, a.openCmd(inst)
		}
	case "l":
		if inst != nil {
			return a, a.mountCmd(a.locales.Next(inst.Content.Locale))
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if inst == nil {
			break
		}
		i, _ := strconv.Atoi(key)
		if i <= len(inst.Controller.Slides()) {
			a.setFocus(true)
			inst.Controller.GoTo(i - 1)
		}
	default:
		if _, ok := carousel.KeyAction(key); ok && inst != nil {
			a.setFocus(true)
			carousel.HandleKey(inst.Controller, key)
		}
	}
	return a, nil
}

func (a *App) handleMouse(m tea.MouseMsg) (tea.Model, tea.Cmd) {
	before := a.interacting()
	a.hovering = a.inRegion(m.Y)
	a.syncInteraction(before)

	if m.Action != tea.MouseActionPress || m.Button != tea.MouseButtonLeft {
		return a, nil
	}
	if !a.hovering {
		a.setFocus(false)
		return a, nil
	}

	a.setFocus(true)
	if m.Y == a.thumbRow() {
		if inst := a.engine.Current(); inst != nil {
			if i, ok := thumbAt(len(inst.Controller.Slides()), m.X); ok {
				inst.Controller.GoTo(i)
			}
		}
	}
	return a, nil
}

// interacting reports whether focus or pointer is inside the region
func (a *App) interacting() bool {
	return (a.focused && a.termFocused) || a.hovering
}

func (a *App) setFocus(focused bool) {
	before := a.interacting()
	a.focused = focused
	a.syncInteraction(before)
}

// syncInteraction pauses when interaction starts and resumes once it ends
func (a *App) syncInteraction(before bool) {
	after := a.interacting()
	if before == after {
		return
	}
	inst := a.engine.Current()
	if inst == nil {
		return
	}
	if after {
		inst.Controller.Pause()
	} else {
		inst.Controller.Resume()
	}
}

func (a *App) inRegion(y int) bool {
	return y >= regionTop && y <= a.thumbRow()
}

// thumbRow is the screen row of the thumbnail strip, after the preview and caption
func (a *App) thumbRow() int {
	return regionTop + a.rows + 1
}

func (a *App) openCmd(inst *engine.Instance) tea.Cmd {
	snap := inst.Controller.Snapshot()
	slides := inst.Controller.Slides()
	if snap.Index >= len(slides) {
		return nil
	}
	ref := slides[snap.Index].Source

	return func() tea.Msg {
		if err := a.opener.Open(a.ctx, ref); err != nil {
			if errors.Is(err, executor.ErrNoViewer) {
				return statusMsg("no image viewer available")
			}
			a.logger.Warn("Failed to open asset", zap.String("src", ref), zap.Error(err))
			return errMsg{err}
		}
		return statusMsg("opened " + ref)
	}
}

func (a *App) mountCmd(locale string) tea.Cmd {
	return func() tea.Msg {
		inst, err := a.engine.Mount(a.ctx, locale)
		if err != nil {
			return errMsg{err}
		}
		return mountedMsg{inst: inst}
	}
}

func (a *App) View() string {
	inst := a.engine.Current()
	if inst == nil {
		return a.styles.muted.Render("Carousel stopped.") + "\n"
	}

	snap := inst.Controller.Snapshot()
	m := carousel.View(a.cfg.GetCarouselID(), inst.Content.CarouselTitle, snap, inst.Controller.Slides())

	var b strings.Builder
	b.WriteString(a.renderHeading(m))
	b.WriteByte('\n')

	if !m.Empty() {
		b.WriteString(a.renderSlide(inst, snap.Index))
		b.WriteByte('\n')
		b.WriteString(a.styles.caption.Render(truncate(m.Slides[snap.Index].Slide.Label(), a.cols)))
		b.WriteByte('\n')
		b.WriteString(a.renderThumbnails(m.Thumbnails))
		b.WriteByte('\n')
		b.WriteString(a.renderStatus(m, snap))
		b.WriteByte('\n')
	}

	b.WriteString(a.renderHelp())
	return b.String()
}

func (a *App) renderHeading(m carousel.Model) string {
	heading := a.styles.heading.Render(m.Heading)
	if a.focused {
		heading = a.styles.focusMark.Render("▌") + heading
	}
	return heading
}

// renderSlide draws the active slide as exactly rows lines. Slides without a
// preview show their label instead of an image.
func (a *App) renderSlide(inst *engine.Instance, index int) string {
	if preview, ok := inst.Preloader.Preview(index); ok {
		return lipgloss.Place(a.cols, a.rows, lipgloss.Center, lipgloss.Center, processor.Render(preview))
	}

	text := "loading…"
	if inst.Preloader.Failure(index) != nil {
		text = inst.Controller.Slides()[index].Label()
	}
	return a.styles.preview.
		Width(a.cols).
		Height(a.rows).
		MaxHeight(a.rows).
		Align(lipgloss.Center, lipgloss.Center).
		Render(truncate(text, a.cols))
}

// renderThumbnails draws one "[n]" chip per slide, separated by a space
func (a *App) renderThumbnails(thumbs []carousel.Thumbnail) string {
	chips := make([]string, len(thumbs))
	for i, t := range thumbs {
		chip := thumbLabel(t.Index)
		if t.Selected {
			chips[i] = a.styles.selected.Render(chip)
		} else {
			chips[i] = a.styles.thumb.Render(chip)
		}
	}
	return strings.Join(chips, " ")
}

func (a *App) renderStatus(m carousel.Model, snap domain.Snapshot) string {
	state := "⏸"
	if m.Playing {
		state = "▶"
	}
	line := fmt.Sprintf("%s %s", state, m.Announcement)
	if snap.ReducedMotion {
		line += " · reduced motion"
	}
	if a.status != "" {
		line += " · " + a.status
	}
	return a.styles.status.Render(line)
}

func (a *App) renderHelp() string {
	help := "←/→ navigate · home/end · 1-9 jump · enter open · l locale · tab release · q quit"
	if contact := a.cfg.GetContactEmail(); contact != "" {
		help += "\n" + contact
	}
	return a.styles.muted.Render(help)
}

func thumbLabel(index int) string {
	return fmt.Sprintf("[%d]", index+1)
}

// thumbAt maps a column of the thumbnail strip to a slide index
func thumbAt(count, x int) (int, bool) {
	start := 0
	for i := 0; i < count; i++ {
		end := start + len(thumbLabel(i))
		if x >= start && x < end {
			return i, true
		}
		start = end + 1
	}
	return 0, false
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
