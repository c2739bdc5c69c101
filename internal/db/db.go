package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultBusyTimeout is how long sqlite waits on a locked database before
// reporting SQLITE_BUSY
const DefaultBusyTimeout = time.Second

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
	path string
}

// DefaultDataDir returns the per-user data directory for tlogg
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "tlogg")
}

// DBPath returns the dataset file inside dataDir
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "tlogg.sqlite")
}

// Open opens a database connection, creating the file on first use.
// It does not migrate; see Schema.Migrate.
func Open(dbPath string, busyTimeout time.Duration) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}

	// Foreign keys must be enabled per connection. _txlock=immediate takes the
	// write lock at BEGIN so lock contention surfaces before any statement runs.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=ON&_txlock=immediate",
		dbPath, busyTimeout.Milliseconds())
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports one writer
	sqlDB.SetMaxIdleConns(1)

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: sqlDB, path: dbPath}, nil
}

// Path returns the dataset file path
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Transaction executes a function within a transaction
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
