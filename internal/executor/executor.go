package executor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/genricoloni/archivarium/internal/domain"
	"github.com/genricoloni/archivarium/internal/fetcher"
	"go.uber.org/zap"
)

// ErrNoViewer is returned by Open when no image viewer is available
var ErrNoViewer = errors.New("no image viewer available")

// ViewerCommand represents a detected image viewer command
type ViewerCommand struct {
	Name   string
	Binary string
	Args   []string // %s will be replaced with the asset path or URL
}

// lookPath is swapped in tests
var lookPath = exec.LookPath

// Executor opens slide assets in the desktop's image viewer
type Executor struct {
	logger  *zap.Logger
	root    string
	command ViewerCommand
}

// NewExecutor detects a viewer for this platform. A missing viewer is not an
// error here, Open reports it.
func NewExecutor(logger *zap.Logger, cfg domain.Config) *Executor {
	cmd := detectCommand(logger, viewerCommands)
	if cmd.Binary == "" {
		logger.Warn("No image viewer found, opening assets is disabled")
	} else {
		logger.Info("Image viewer detected",
			zap.String("name", cmd.Name),
			zap.String("binary", cmd.Binary))
	}

	return &Executor{
		logger:  logger,
		root:    cfg.GetAssetRoot(),
		command: cmd,
	}
}

// commandExists checks if a binary exists in PATH
func commandExists(binary string) bool {
	_, err := lookPath(binary)
	return err == nil
}

// Open launches the viewer on ref and returns once it has started
func (e *Executor) Open(ctx context.Context, ref string) error {
	if e.command.Binary == "" {
		return ErrNoViewer
	}

	target := e.target(ref)
	if target == "" {
		return fmt.Errorf("empty asset reference")
	}
	args := buildArgs(e.command, target)

	e.logger.Debug("Opening asset",
		zap.String("command", e.command.Binary),
		zap.Strings("args", args))

	// viewers such as feh stay in the foreground, so the process is not
	// bound to ctx and is reaped in the background
	cmd := exec.Command(e.command.Binary, args...)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open asset with %s: %w", e.command.Name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			e.logger.Debug("Viewer exited with error", zap.String("command", e.command.Name), zap.Error(err))
		}
	}()

	e.logger.Info("Asset opened", zap.String("command", e.command.Name), zap.String("target", target))
	return nil
}

// target keeps URLs as they are and maps everything else to a file path
func (e *Executor) target(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil {
		switch u.Scheme {
		case "http", "https":
			return ref
		case "file":
			return u.Path
		}
	}
	return fetcher.ResolvePath(e.root, ref)
}

func buildArgs(command ViewerCommand, target string) []string {
	args := make([]string, len(command.Args))
	for i, arg := range command.Args {
		args[i] = strings.ReplaceAll(arg, "%s", target)
	}
	return args
}
