package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF format support
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/genricoloni/archivarium/internal/domain"
	"go.uber.org/zap"
)

// upperHalfBlock paints the upper pixel as foreground and the lower one as background
const upperHalfBlock = "▀"

// PreviewProcessor turns slide images into terminal previews
type PreviewProcessor struct {
	logger *zap.Logger
	res    *domain.ScreenResolution // Injected automatically by Fx
	cols   int
	rows   int
}

// NewPreviewProcessor creates a processor sized by the configured preview box
func NewPreviewProcessor(logger *zap.Logger, res *domain.ScreenResolution, appCfg domain.Config) *PreviewProcessor {
	cols, rows := appCfg.GetPreviewSize()
	return &PreviewProcessor{
		logger: logger,
		res:    res,
		cols:   cols,
		rows:   rows,
	}
}

// Process decodes image data and fits it into the preview box, keeping the aspect ratio
func (p *PreviewProcessor) Process(ctx context.Context, imageData []byte) (domain.Preview, error) {
	// 1. Decode image from bytes
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return domain.Preview{}, fmt.Errorf("failed to decode image: %w", err)
	}

	// Validate image dimensions to prevent division by zero
	bounds := img.Bounds()
	if bounds.Dy() == 0 || bounds.Dx() == 0 {
		return domain.Preview{}, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	if err := ctx.Err(); err != nil {
		return domain.Preview{}, err
	}

	// 2. Never keep more than a screen's width of pixels around
	if p.res != nil && p.res.Width > 0 && bounds.Dx() > p.res.Width {
		p.logger.Debug("Capping image to screen width", zap.Int("from", bounds.Dx()), zap.Int("to", p.res.Width))
		img = imaging.Resize(img, p.res.Width, 0, imaging.Lanczos)
	}

	// 3. Fit into cols x (rows*2) pixels, two pixels per terminal cell
	fitted := imaging.Fit(img, p.cols, p.rows*2, imaging.Lanczos)
	fb := fitted.Bounds()

	rows := (fb.Dy() + 1) / 2
	preview := domain.Preview{
		Cols:  fb.Dx(),
		Rows:  rows,
		Upper: make([]color.RGBA, fb.Dx()*rows),
		Lower: make([]color.RGBA, fb.Dx()*rows),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < fb.Dx(); c++ {
			i := r*fb.Dx() + c
			preview.Upper[i] = rgbaAt(fitted, fb.Min.X+c, fb.Min.Y+2*r)
			if 2*r+1 < fb.Dy() {
				preview.Lower[i] = rgbaAt(fitted, fb.Min.X+c, fb.Min.Y+2*r+1)
			} else {
				preview.Lower[i] = preview.Upper[i]
			}
		}
	}

	p.logger.Debug("Preview processed successfully", zap.Int("cols", preview.Cols), zap.Int("rows", preview.Rows))
	return preview, nil
}

func rgbaAt(img *image.NRGBA, x, y int) color.RGBA {
	c := img.NRGBAAt(x, y)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Render draws a preview with half-block characters
func Render(preview domain.Preview) string {
	if preview.Cols == 0 || preview.Rows == 0 {
		return ""
	}

	var b strings.Builder
	for r := 0; r < preview.Rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < preview.Cols; c++ {
			i := r*preview.Cols + c
			style := lipgloss.NewStyle().
				Foreground(hexColor(preview.Upper[i])).
				Background(hexColor(preview.Lower[i]))
			b.WriteString(style.Render(upperHalfBlock))
		}
	}
	return b.String()
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
