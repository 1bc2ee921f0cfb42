//go:build darwin

package executor

import "go.uber.org/zap"

var viewerCommands = []ViewerCommand{
	{Name: "open", Binary: "open", Args: []string{"%s"}},
}

// detectCommand picks the first available command, normally open(1)
func detectCommand(logger *zap.Logger, commands []ViewerCommand) ViewerCommand {
	for _, cmd := range commands {
		if commandExists(cmd.Binary) {
			return cmd
		}
	}
	logger.Debug("open(1) not found in PATH")
	return ViewerCommand{}
}
