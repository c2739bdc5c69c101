package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/multierr"

	"github.com/dori/tlogg/internal/config"
	"github.com/dori/tlogg/internal/db"
	"github.com/dori/tlogg/internal/logging"
)

// lockRetryDelay is how often a held lock is polled
const lockRetryDelay = 50 * time.Millisecond

// App holds the storage session for one invocation
type App struct {
	DB       *db.DB
	Repo     *db.Repository
	Config   *config.Config
	Logger   *slog.Logger
	Version  int64 // Schema version after migration
	lockFile *flock.Flock
}

// Options holds optional dependencies
type Options struct {
	Logger *slog.Logger
	// Now overrides the repository clock
	Now func() time.Time
}

// New acquires the dataset lock, opens the dataset and brings its schema
// to db.TargetVersion. Every resource acquired is released on failure.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Serialize invocations against the same dataset
	if err := app.acquireLock(ctx); err != nil {
		return nil, err
	}

	logger.Debug("opening dataset", "path", cfg.DBPath())
	database, err := db.Open(cfg.DBPath(), cfg.BusyTimeout)
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	version, err := db.NewSchema(database, logger).Migrate(ctx, db.TargetVersion)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Version = version
	logger.Debug("dataset ready", "schema_version", version)

	repoOpts := []db.Option{
		db.WithLogger(logger),
		db.WithRetryBackoff(cfg.RetryBackoff),
	}
	if opts.Now != nil {
		repoOpts = append(repoOpts, db.WithClock(opts.Now))
	}

	repo, err := db.NewRepository(ctx, database, repoOpts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Repo = repo

	return app, nil
}

// acquireLock waits up to LockTimeout for the exclusive dataset lock
func (a *App) acquireLock(ctx context.Context) error {
	a.lockFile = flock.New(a.Config.LockPath())

	lockCtx, cancel := context.WithTimeout(ctx, a.Config.LockTimeout)
	defer cancel()

	locked, err := a.lockFile.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil && lockCtx.Err() == nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another tlogg process is using %s (waited %s)", a.Config.DataDir, a.Config.LockTimeout)
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() error {
	if a.lockFile != nil {
		return a.lockFile.Unlock()
	}
	return nil
}

// Close cleans up application resources
func (a *App) Close() error {
	var err error

	if a.DB != nil {
		if cerr := a.DB.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close database: %w", cerr))
		}
		a.DB = nil
	}

	if lerr := a.releaseLock(); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to release lock: %w", lerr))
	}
	a.lockFile = nil

	return err
}
