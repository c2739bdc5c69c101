package db

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Code identifies a failure mode of the schema store or the repository
type Code string

const (
	// InvalidInput indicates an empty or malformed argument
	InvalidInput Code = "INVALID_INPUT"
	// InvalidDuration indicates a zero, negative or non-finite duration
	InvalidDuration Code = "INVALID_DURATION"
	// NoDefaultProject indicates no project was given and the log is empty
	NoDefaultProject Code = "NO_DEFAULT_PROJECT"
	// NotFound indicates an unknown project name or entry id
	NotFound Code = "NOT_FOUND"
	// DuplicateName indicates a project with that name already exists
	DuplicateName Code = "DUPLICATE_NAME"
	// InUse indicates a project is still referenced by log entries
	InUse Code = "IN_USE"
	// UnknownVersion indicates the dataset was written by a newer release
	UnknownVersion Code = "UNKNOWN_VERSION"
	// SchemaOutdated indicates the dataset has pending migrations
	SchemaOutdated Code = "SCHEMA_OUTDATED"
	// MigrationFailed indicates a migration step could not be applied
	MigrationFailed Code = "MIGRATION_FAILED"
	// StorageFailure indicates an I/O or driver error
	StorageFailure Code = "STORAGE_FAILURE"
)

// Category groups codes the way they are reported to the user
type Category int

const (
	CategoryUnknown Category = iota
	CategoryValidation
	CategoryNotFound
	CategoryConflict
	CategoryMigration
	CategoryStorage
)

// String returns the display name for a category
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryNotFound:
		return "not found"
	case CategoryConflict:
		return "conflict"
	case CategoryMigration:
		return "migration"
	case CategoryStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Category returns the reporting category of a code
func (c Code) Category() Category {
	switch c {
	case InvalidInput, InvalidDuration, NoDefaultProject:
		return CategoryValidation
	case NotFound:
		return CategoryNotFound
	case DuplicateName, InUse:
		return CategoryConflict
	case UnknownVersion, SchemaOutdated, MigrationFailed:
		return CategoryMigration
	case StorageFailure:
		return CategoryStorage
	default:
		return CategoryUnknown
	}
}

// Error is returned by every Schema and Repository operation
type Error struct {
	Code    Code
	Message string
	cause   error
}

func newError(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	// only driver-level failures carry a cause worth printing
	switch e.Code.Category() {
	case CategoryStorage, CategoryMigration:
		if e.cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.cause)
		}
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the code of err, or "" if err is not an *Error
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries code
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// storageError wraps a raw driver error; *Error values pass through
func storageError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if isBusy(err) {
		return newError(StorageFailure, err, "%s: database is locked", op)
	}
	return newError(StorageFailure, err, "%s failed", op)
}

// isBusy reports lock contention, which is worth one retry
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// constraintOf returns the extended constraint code of a sqlite error, or 0
func constraintOf(err error) sqlite3.ErrNoExtended {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return sqliteErr.ExtendedCode
	}
	return 0
}

// isForeignKeyViolation reports a delete or insert rejected by a foreign
// key. ON DELETE RESTRICT fails immediately and is reported as a trigger
// constraint, deferred checks as a foreign key constraint.
func isForeignKeyViolation(err error) bool {
	switch constraintOf(err) {
	case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintTrigger:
		return true
	}
	return false
}
