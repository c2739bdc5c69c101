package cli

import (
	"errors"

	"github.com/dori/tlogg/internal/config"
	"github.com/dori/tlogg/internal/db"
)

// Process exit codes
const (
	ExitOK         = 0
	ExitUsage      = 1 // bad flags or arguments
	ExitValidation = 2 // invalid input, invalid duration, no default project
	ExitNotFound   = 3 // unknown project or entry
	ExitConflict   = 4 // duplicate project name, project still in use
	ExitMigration  = 5 // unknown schema version, failed migration
	ExitStorage    = 6 // I/O failure, persistent lock contention
)

const exitCodeHelp = `Exit codes:
  0  success
  1  usage error
  2  validation error
  3  not found
  4  conflict
  5  schema migration error
  6  storage error`

// usageError marks a problem with the command line itself
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(err error) error {
	return &usageError{err: err}
}

// commandError marks an error returned by a command handler, as opposed
// to one raised by cobra while parsing arguments
type commandError struct {
	err error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// ExitCode maps an error to the documented process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var uerr *usageError
	if errors.As(err, &uerr) {
		return ExitUsage
	}
	var cerr *config.Error
	if errors.As(err, &cerr) {
		return ExitUsage
	}

	switch db.CodeOf(err).Category() {
	case db.CategoryValidation:
		return ExitValidation
	case db.CategoryNotFound:
		return ExitNotFound
	case db.CategoryConflict:
		return ExitConflict
	case db.CategoryMigration:
		return ExitMigration
	default:
		return ExitStorage
	}
}
