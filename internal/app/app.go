// Package app wires configuration, adapters and the reconcile engine
// together for the command line, MCP and TUI binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"oot/internal/adapters/filesystem"
	"oot/internal/adapters/jsonfile"
	"oot/internal/adapters/sqlite"
	"oot/internal/application/reconcile"
	"oot/internal/config"
	"oot/internal/ports"
)

// App holds the wired dependencies of one vault.
type App struct {
	Config config.Config
	Repo   *filesystem.Repository
	Store  ports.StateStore
	Engine *reconcile.Engine
	Logger *slog.Logger

	started bool
}

// NewLogger returns a text logger on w; verbose enables debug output.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Open builds the adapters for cfg. Call Start to load and synchronize
// the cache.
func Open(cfg config.Config, logger *slog.Logger, opts ...reconcile.Option) (*App, error) {
	info, err := os.Stat(cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("vault %s: %w", cfg.Vault, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault %s is not a directory", cfg.Vault)
	}

	store, err := OpenStateStore(cfg)
	if err != nil {
		return nil, err
	}

	settings := cfg.Settings()
	repo := filesystem.NewRepository(cfg.Vault, settings.PropertyName, settings.IgnoredFolders)
	opts = append([]reconcile.Option{reconcile.WithLogger(logger)}, opts...)

	return &App{
		Config: cfg,
		Repo:   repo,
		Store:  store,
		Engine: reconcile.New(repo, store, settings, opts...),
		Logger: logger,
	}, nil
}

// OpenStateStore opens the state backend selected by cfg.
func OpenStateStore(cfg config.Config) (ports.StateStore, error) {
	switch cfg.StateBackend {
	case config.BackendSQLite:
		path := cfg.StatePath
		if path == "" {
			path = sqlite.DatabasePath(cfg.Vault)
		}
		return sqlite.Open(path)
	default:
		return jsonfile.New(cfg.JSONStatePath())
	}
}

// Start loads the persisted cache and runs the startup synchronizer.
func (a *App) Start(ctx context.Context) (*reconcile.SyncStats, error) {
	stats, err := a.Engine.Start(ctx)
	if err != nil {
		return stats, err
	}
	a.started = true
	a.Logger.Debug("cache ready",
		"vault", a.Config.Vault,
		"tracked", stats.Tracked,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)
	return stats, nil
}

// Close flushes the engine and releases the state store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.started {
		errs = append(errs, a.Engine.Stop(ctx))
		a.started = false
	}
	errs = append(errs, a.Store.Close())
	return errors.Join(errs...)
}
