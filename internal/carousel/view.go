package carousel

import (
	"fmt"
	"strings"

	"github.com/genricoloni/archivarium/internal/domain"
)

const (
	fallbackLabel   = "Image carousel"
	fallbackHeading = "GALLERY"
)

// SlideView is the render state of one slide
type SlideView struct {
	ID       string
	Position int
	Slide    domain.Slide
	// Active is true for exactly one slide, the visible one
	Active bool
	// Eager marks the active and the following slide for immediate asset loading
	Eager bool
}

// Thumbnail is one control of the thumbnail strip
type Thumbnail struct {
	ID       string
	Controls string // id of the slide this thumbnail selects
	Index    int
	Source   string
	Alt      string
	Selected bool
}

// Model is the full projection of a carousel into renderable state
type Model struct {
	RegionID string
	TrackID  string
	TitleID  string

	// Heading is the visible section title
	Heading string
	// Label is the accessible name of the region
	Label string

	Slides     []SlideView
	Thumbnails []Thumbnail

	// Announcement is the polite live region text
	Announcement string

	// Animate is false when reduced motion is active
	Animate bool
	Playing bool
}

// Empty reports whether there is nothing to render
func (m Model) Empty() bool {
	return len(m.Slides) == 0
}

// View projects the controller state onto slides. It is pure and cheap
// enough to recompute on every change.
func View(id, title string, snap domain.Snapshot, slides []domain.Slide) Model {
	if id == "" {
		id = "carousel"
	}

	m := Model{
		RegionID: id + "-region",
		TrackID:  id + "-track",
		TitleID:  id + "-title",
		Heading:  Heading(title),
		Label:    Label(title),
		Animate:  !snap.ReducedMotion,
		Playing:  snap.Playing(),
	}

	n := len(slides)
	if n == 0 {
		return m
	}

	eager := EagerIndices(snap.Index, n)
	m.Slides = make([]SlideView, n)
	m.Thumbnails = make([]Thumbnail, n)
	for i, s := range slides {
		slideID := fmt.Sprintf("%s-slide-%d", id, i)
		m.Slides[i] = SlideView{
			ID:       slideID,
			Position: i,
			Slide:    s,
			Active:   i == snap.Index,
			Eager:    eager[0] == i || eager[len(eager)-1] == i,
		}
		m.Thumbnails[i] = Thumbnail{
			ID:       fmt.Sprintf("%s-thumb-%d", id, i),
			Controls: slideID,
			Index:    i,
			Source:   s.Thumbnail(),
			Alt:      s.Alt,
			Selected: i == snap.Index,
		}
	}
	m.Announcement = Announcement(snap, slides)

	return m
}

// EagerIndices returns the slides whose assets load immediately: the
// current one and the next. With a single slide both are the same.
func EagerIndices(index, count int) []int {
	if count <= 0 {
		return nil
	}
	next := (index + 1) % count
	if next == index {
		return []int{index}
	}
	return []int{index, next}
}

// Announcement returns "Slide i of n: caption-or-alt" for the current slide
func Announcement(snap domain.Snapshot, slides []domain.Slide) string {
	if len(slides) == 0 || snap.Index < 0 || snap.Index >= len(slides) {
		return ""
	}
	return fmt.Sprintf("Slide %d of %d: %s", snap.Index+1, len(slides), slides[snap.Index].Label())
}

// Label returns the accessible name of the carousel region
func Label(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return fallbackLabel
}

// Heading returns the visible, upper-cased section title
func Heading(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return strings.ToUpper(t)
	}
	return fallbackHeading
}

// Action is a navigation request decoded from a key
type Action int

const (
	ActionNone Action = iota
	ActionPrevious
	ActionNext
	ActionFirst
	ActionLast
)

// KeyAction decodes a key name. Both DOM style ("ArrowLeft") and terminal
// style ("left") names are accepted. ok is false for keys the carousel
// does not consume.
func KeyAction(key string) (Action, bool) {
	switch strings.ToLower(key) {
	case "arrowleft", "left":
		return ActionPrevious, true
	case "arrowright", "right":
		return ActionNext, true
	case "home":
		return ActionFirst, true
	case "end":
		return ActionLast, true
	default:
		return ActionNone, false
	}
}

// HandleKey applies the keyboard contract to c and reports whether the key
// was consumed
func HandleKey(c domain.Carousel, key string) bool {
	action, ok := KeyAction(key)
	if !ok {
		return false
	}
	switch action {
	case ActionPrevious:
		c.Previous()
	case ActionNext:
		c.Next()
	case ActionFirst:
		c.GoTo(0)
	case ActionLast:
		c.GoTo(len(c.Slides()) - 1)
	}
	return true
}
