package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/archivarium/internal/carousel"
	"github.com/genricoloni/archivarium/internal/config"
	"github.com/genricoloni/archivarium/internal/content"
	"github.com/genricoloni/archivarium/internal/domain"
	"github.com/genricoloni/archivarium/internal/engine"
	"github.com/genricoloni/archivarium/internal/executor"
	"github.com/genricoloni/archivarium/internal/fetcher"
	"github.com/genricoloni/archivarium/internal/monitor"
	"github.com/genricoloni/archivarium/internal/processor"
	"github.com/genricoloni/archivarium/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppOptions is the full dependency graph, shared with the tests
var AppOptions = fx.Options(
	fx.Provide(
		config.Load,
		func(cfg *config.AppConfig) domain.Config { return cfg },
		newLogger,
		fx.Annotate(
			newContentLoader,
			fx.As(new(domain.ContentLoader), new(tui.LocaleCycler)),
		),
		newMotionPreference,
		monitor.NewScreenResolution,
		fx.Annotate(newAssetFetcher, fx.As(new(domain.Fetcher))),
		fx.Annotate(processor.NewPreviewProcessor, fx.As(new(domain.ImageProcessor))),
		fx.Annotate(executor.NewExecutor, fx.As(new(domain.Opener))),
		carousel.NewRealClock,
		engine.NewEngine,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		// Logger configuration
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for a signal, or for the TUI to quit
	select {
	case <-ctx.Done():
	case <-app.Wait():
	}

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates the zap logger. In TUI mode logs go to a file so they do
// not corrupt the screen.
func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogLevel == "debug" {
		zcfg = zap.NewDevelopmentConfig()
	} else if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	if !cfg.IsHeadless() && cfg.LogFile != "" {
		zcfg.OutputPaths = []string{cfg.LogFile}
		zcfg.ErrorOutputPaths = []string{cfg.LogFile}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	cfg.LogFields(logger)
	return logger, nil
}

func newContentLoader(logger *zap.Logger, cfg domain.Config) (*content.Loader, error) {
	return content.NewLoader(logger, cfg.GetContentDir())
}

// newMotionPreference follows the desktop unless configuration pins the value
func newMotionPreference(logger *zap.Logger, cfg domain.Config) domain.MotionPreference {
	switch cfg.GetReducedMotion() {
	case "on":
		return monitor.NewStaticPreference(logger, true)
	case "off":
		return monitor.NewStaticPreference(logger, false)
	default:
		return monitor.NewPortalPreference(logger)
	}
}

func newAssetFetcher(logger *zap.Logger, cfg domain.Config) *fetcher.AssetFetcher {
	return fetcher.NewAssetFetcher(logger, cfg.GetAssetRoot())
}

// registerHooks sets up application lifecycle hooks
func registerHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	logger *zap.Logger,
	cfg domain.Config,
	prefs domain.MotionPreference,
	eng *engine.Engine,
	locales tui.LocaleCycler,
	opener domain.Opener,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Archivarium starting")
			if err := prefs.Start(ctx); err != nil {
				// Motion stays allowed, the carousel still works
				logger.Warn("Motion preference unavailable", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return prefs.Stop(ctx)
		},
	})

	lc.Append(fx.Hook{
		OnStart: eng.Start,
		OnStop:  eng.Stop,
	})

	if cfg.IsHeadless() {
		logger.Info("Running headless, announcements go to the log")
		return
	}

	var (
		cancel context.CancelFunc
		done   chan struct{}
		quit   func()
	)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runCtx, c := context.WithCancel(context.WithoutCancel(ctx))
			cancel = c
			done = make(chan struct{})

			program := tui.NewProgram(tui.New(runCtx, logger, eng, locales, opener, cfg))
			quit = program.Quit

			go func() {
				defer close(done)
				if _, err := program.Run(); err != nil {
					logger.Error("TUI exited with error", zap.Error(err))
				}
				if err := shutdowner.Shutdown(); err != nil {
					logger.Debug("Shutdown already in progress", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			quit()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
