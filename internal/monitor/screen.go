package monitor

import (
	"github.com/genricoloni/archivarium/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// NewScreenResolution detects the primary screen resolution at startup.
// Headless sessions fall back to the default slide size.
func NewScreenResolution(logger *zap.Logger) *domain.ScreenResolution {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		logger.Info("No active displays detected, falling back to default slide size",
			zap.Int("width", domain.DefaultSlideWidth),
			zap.Int("height", domain.DefaultSlideHeight))
		return &domain.ScreenResolution{Width: domain.DefaultSlideWidth, Height: domain.DefaultSlideHeight}
	}

	// Use primary monitor (index 0)
	bounds := screenshot.GetDisplayBounds(0)
	res := &domain.ScreenResolution{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	logger.Info("Screen resolution detected",
		zap.Int("width", res.Width),
		zap.Int("height", res.Height))

	return res
}
