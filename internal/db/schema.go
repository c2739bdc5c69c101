package db

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/dori/tlogg/internal/logging"
)

// TargetVersion is the schema version this release reads and writes.
// New migrations are appended to migrations/ and this constant bumped;
// existing files are never edited.
const TargetVersion int64 = 1

const migrationsDir = "migrations"

// Schema owns the dataset's schema version and applies migrations
type Schema struct {
	db     *DB
	fsys   fs.FS
	logger *slog.Logger
}

// NewSchema creates a schema store backed by the embedded migrations
func NewSchema(db *DB, logger *slog.Logger) *Schema {
	return newSchemaFS(db, migrations, logger)
}

func newSchemaFS(db *DB, fsys fs.FS, logger *slog.Logger) *Schema {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Schema{db: db, fsys: fsys, logger: logger}
}

// prepare points goose's package-level state at this store
func (s *Schema) prepare() error {
	goose.SetLogger(gooseLogger{logger: s.logger})
	goose.SetBaseFS(s.fsys)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// CurrentVersion returns the last applied migration, 0 for a new dataset
func (s *Schema) CurrentVersion(ctx context.Context) (int64, error) {
	if err := s.prepare(); err != nil {
		return 0, newError(MigrationFailed, err, "cannot read schema version")
	}

	version, err := goose.GetDBVersionContext(ctx, s.db.DB)
	if err != nil {
		return 0, storageError("read schema version", err)
	}
	return version, nil
}

// Migrate brings the dataset to target, one transactional step at a time.
// It returns the version the dataset is at when it stops.
func (s *Schema) Migrate(ctx context.Context, target int64) (int64, error) {
	current, err := s.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}

	if current == target {
		s.logger.Debug("schema is up to date", "version", current)
		return target, nil
	}

	if current > target {
		return current, newError(UnknownVersion, nil,
			"dataset schema version %d is newer than the supported version %d; upgrade tlogg",
			current, target)
	}

	s.logger.Info("migrating schema", "from", current, "to", target)

	// goose wraps each SQL migration and its version row in one transaction
	if err := goose.UpToContext(ctx, s.db.DB, migrationsDir, target); err != nil {
		reached, verr := s.CurrentVersion(ctx)
		if verr != nil {
			reached = current
		}
		return reached, newError(MigrationFailed, err,
			"migration to version %d stopped at version %d", target, reached)
	}

	reached, err := s.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}
	if reached != target {
		return reached, newError(MigrationFailed, nil,
			"no migration step reaches version %d (latest available is %d)", target, reached)
	}

	s.logger.Info("schema migrated", "version", reached)
	return reached, nil
}

// gooseLogger forwards goose output to slog at debug level
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

// Fatalf must not exit the process; failures come back as errors from goose calls
func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}
