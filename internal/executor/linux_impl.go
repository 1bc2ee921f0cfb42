//go:build linux

package executor

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

var (
	// Ordered list of viewer commands to try (highest priority first)
	viewerCommands = []ViewerCommand{
		// freedesktop default application
		{Name: "xdg-open", Binary: "xdg-open", Args: []string{"%s"}},
		// GNOME / GIO
		{Name: "gio", Binary: "gio", Args: []string{"open", "%s"}},
		// Generic X11 - feh
		{Name: "feh", Binary: "feh", Args: []string{"--scale-down", "%s"}},
		// Eye of GNOME
		{Name: "eog", Binary: "eog", Args: []string{"%s"}},
	}
)

// detectCommand analyzes the environment to choose the best viewer command
func detectCommand(logger *zap.Logger, commands []ViewerCommand) ViewerCommand {
	desktop := os.Getenv("XDG_CURRENT_DESKTOP")
	display := os.Getenv("DISPLAY")
	wayland := os.Getenv("WAYLAND_DISPLAY")

	logger.Debug("Detecting image viewer",
		zap.String("desktop", desktop),
		zap.String("display", display),
		zap.String("wayland", wayland))

	if display == "" && wayland == "" {
		logger.Warn("No graphical session detected, the viewer may fail to start")
	}

	if strings.Contains(strings.ToLower(desktop), "gnome") {
		for _, cmd := range commands {
			if cmd.Name == "gio" && commandExists(cmd.Binary) {
				return cmd
			}
		}
	}

	for _, cmd := range commands {
		if commandExists(cmd.Binary) {
			return cmd
		}
	}

	return ViewerCommand{} // No command found
}
