package db

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dori/tlogg/internal/logging"
)

// DefaultRetryBackoff is the pause before retrying a locked database
const DefaultRetryBackoff = 100 * time.Millisecond

// timeLayout is fixed width so that stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Repository provides validated access to projects and log entries.
// It requires a dataset at TargetVersion and never migrates by itself.
type Repository struct {
	db           *DB
	logger       *slog.Logger
	now          func() time.Time
	retryBackoff time.Duration
}

// Option configures a Repository
type Option func(*Repository)

// WithClock sets the source of creation timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithLogger sets the repository's logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRetryBackoff sets the pause before the single retry on a locked database
func WithRetryBackoff(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.retryBackoff = d
		}
	}
}

// NewRepository creates a repository after checking the schema version
func NewRepository(ctx context.Context, conn *DB, opts ...Option) (*Repository, error) {
	r := newRepository(conn, opts...)

	version, err := NewSchema(conn, r.logger).CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case version < TargetVersion:
		return nil, newError(SchemaOutdated, nil,
			"dataset schema version %d is older than %d; migrate first", version, TargetVersion)
	case version > TargetVersion:
		return nil, newError(UnknownVersion, nil,
			"dataset schema version %d is newer than the supported version %d", version, TargetVersion)
	}

	return r, nil
}

func newRepository(conn *DB, opts ...Option) *Repository {
	r := &Repository{
		db:           conn,
		logger:       logging.Discard(),
		now:          time.Now,
		retryBackoff: DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// do runs fn, retrying once if the database is locked. Any error that is
// not already an *Error is reported as a StorageFailure.
func (r *Repository) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(r.retryBackoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if isBusy(err) {
			r.logger.Debug("database is locked", "op", op, "attempt", attempt)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return storageError(op, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// queryer is satisfied by both *DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
