// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/starford/vibeindex/internal/catalog"
	"github.com/starford/vibeindex/internal/checksum"
	"github.com/starford/vibeindex/internal/mcpserver"
	"github.com/starford/vibeindex/internal/search"
	"github.com/starford/vibeindex/internal/toolservice"
	"github.com/starford/vibeindex/internal/tui"
)

// LoadCatalog returns the catalog named by cfg: the file at Catalog.Path,
// or the compiled-in catalog when no path is set.
func LoadCatalog(cfg *Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(cfg.Catalog.Path)
}

// NewService loads the catalog and builds a search service over it.
func NewService(cfg *Config, logger *slog.Logger) (*toolservice.Service, error) {
	c, err := LoadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog: loaded",
		slog.String("path", cfg.Catalog.Path),
		slog.Int("tools", c.Len()),
		slog.String("checksum", checksum.Short(c.Checksum())))
	return toolservice.NewService(search.NewEngine(c, cfg.Search.Options(), logger)), nil
}

// NewLogger builds the JSON logger for mode. Stdout carries the terminal
// UI, the MCP transport or command output, so logs go to stderr, or to the
// configured log file (discarded if unset) while the terminal UI runs.
// The returned closer releases the log file, if any.
func NewLogger(cfg *Config, mode string) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)

	if mode == ModeTUI {
		w = io.Discard
		if cfg.App.LogFile != "" {
			f, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("open log file: %w", err)
			}
			w, closer = f, f
		}
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	return logger, closer, nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{mode: ModeTUI, stdin: os.Stdin, stdout: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.mode != ModeTUI && app.mode != ModeMCP {
		return fmt.Errorf("unknown mode %q", app.mode)
	}

	cfg := app.config

	logger, closer, err := NewLogger(cfg, app.mode)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("mode", app.mode),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.Bool("catalog_watch", cfg.Catalog.Watch),
		slog.Float64("threshold", cfg.Search.Threshold),
		slog.Duration("debounce_window", cfg.Debounce.Window),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := NewService(cfg, logger)
	if err != nil {
		return err
	}
	engine := svc.Engine()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	var onReload []func()

	switch app.mode {
	case ModeMCP:
		srv := mcpserver.New(cfg.MCP.Name, cfg.MCP.Version, svc, logger)
		g.Go(func() error {
			defer cancel()
			err := srv.Serve(gCtx, app.stdin, app.stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		})

	case ModeTUI:
		ui := tui.NewApp(gCtx, engine, cfg.Debounce.Window,
			tea.WithInput(app.stdin), tea.WithOutput(app.stdout))
		onReload = append(onReload, ui.CatalogChanged)
		g.Go(func() error {
			defer cancel()
			return ui.Run(gCtx)
		})
	}

	// Start catalog watcher.
	if cfg.Catalog.Watch {
		g.Go(func() error {
			return catalog.Watch(gCtx, cfg.Catalog.Path, engine.Catalog(), logger, func(c *catalog.Catalog) {
				engine.SetCatalog(c)
				for _, fn := range onReload {
					fn()
				}
			})
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped")
	return nil
}
