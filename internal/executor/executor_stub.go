//go:build !linux && !darwin

package executor

import "go.uber.org/zap"

var viewerCommands []ViewerCommand

// detectCommand finds nothing on unsupported platforms (Windows, BSD, etc.),
// so Open returns ErrNoViewer
func detectCommand(logger *zap.Logger, commands []ViewerCommand) ViewerCommand {
	logger.Debug("Opening assets is not implemented for this platform")
	return ViewerCommand{}
}
