package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo := newRepository(&DB{DB: sqlDB}, WithRetryBackoff(time.Millisecond))
	return repo, mock
}

func busyError() error {
	return sqlite3.Error{Code: sqlite3.ErrBusy}
}

func TestRetryOnceWhenLocked(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectExec(`DELETE FROM entries`).
		WithArgs(int64(7)).
		WillReturnError(busyError())
	mock.ExpectExec(`DELETE FROM entries`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RemoveEntry(context.Background(), 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistentLockIsFatal(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectExec(`DELETE FROM entries`).
		WithArgs(int64(7)).
		WillReturnError(busyError())
	mock.ExpectExec(`DELETE FROM entries`).
		WithArgs(int64(7)).
		WillReturnError(busyError())

	err := repo.RemoveEntry(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, IsCode(err, StorageFailure))
	assert.Contains(t, err.Error(), "database is locked")
	assert.True(t, isBusy(errors.Unwrap(err)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOtherDriverErrorsAreNotRetried(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectExec(`DELETE FROM entries`).
		WithArgs(int64(7)).
		WillReturnError(errors.New("disk I/O error"))

	err := repo.RemoveEntry(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, IsCode(err, StorageFailure))
	assert.Contains(t, err.Error(), "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDomainErrorsAreNotRetried(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectExec(`DELETE FROM entries`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveEntry(context.Background(), 7)
	assert.True(t, IsCode(err, NotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryWrapsTransactionalWrites(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin().WillReturnError(busyError())
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, name, description, created_at\s+FROM projects WHERE name = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}))
	mock.ExpectRollback()

	err := repo.RemoveProject(context.Background(), "ghost")
	assert.True(t, IsCode(err, NotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorCategories(t *testing.T) {
	tests := map[Code]Category{
		InvalidInput:     CategoryValidation,
		InvalidDuration:  CategoryValidation,
		NoDefaultProject: CategoryValidation,
		NotFound:         CategoryNotFound,
		DuplicateName:    CategoryConflict,
		InUse:            CategoryConflict,
		UnknownVersion:   CategoryMigration,
		SchemaOutdated:   CategoryMigration,
		MigrationFailed:  CategoryMigration,
		StorageFailure:   CategoryStorage,
		Code("BOGUS"):    CategoryUnknown,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.Category(), "code %s", code)
	}

	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.False(t, IsCode(nil, NotFound))
}

func TestRemoveProjectRestrictIsInUse(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, name, description, created_at\s+FROM projects WHERE name = \?`).
		WithArgs("work").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow(int64(1), "work", "", "2024-01-02T03:04:05.000000000Z"))
	mock.ExpectExec(`DELETE FROM projects WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintTrigger})
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM entries WHERE project_id = \?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.RemoveProject(context.Background(), "work")
	require.Error(t, err)
	assert.True(t, IsCode(err, InUse), "got %v", err)
	assert.Contains(t, err.Error(), "3 log entries")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsForeignKeyViolation(t *testing.T) {
	constraint := func(ext sqlite3.ErrNoExtended) error {
		return sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: ext}
	}

	assert.True(t, isForeignKeyViolation(constraint(sqlite3.ErrConstraintTrigger)))
	assert.True(t, isForeignKeyViolation(constraint(sqlite3.ErrConstraintForeignKey)))
	assert.False(t, isForeignKeyViolation(constraint(sqlite3.ErrConstraintUnique)))
	assert.False(t, isForeignKeyViolation(busyError()))
	assert.False(t, isForeignKeyViolation(nil))
}
