package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

// Now advances one minute per call so every record gets a distinct time
func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestRepository(t *testing.T) (*Repository, *fakeClock) {
	t.Helper()

	ctx := context.Background()
	db := openTestDB(t)

	_, err := NewSchema(db, nil).Migrate(ctx, TargetVersion)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	repo, err := NewRepository(ctx, db, WithClock(clock.Now))
	require.NoError(t, err)
	return repo, clock
}

func TestOpenCreatesDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tlogg.sqlite")

	db, err := Open(path, 0)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)
	assert.Equal(t, path, db.Path())
}

func TestDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "tlogg.sqlite"), DBPath("data"))
	assert.Equal(t, "tlogg", filepath.Base(DefaultDataDir()))
}

// TestNestedQueriesNoDeadlock guards against issuing a query while rows are
// still open: with SetMaxOpenConns(1) that would block forever.
func TestNestedQueriesNoDeadlock(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.AddProject(ctx, "work", "")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := repo.AddEntry(ctx, 1, "task", strPtr("work"))
		require.NoError(t, err)
	}

	done := make(chan error, 1)
	go func() {
		entries, err := repo.ListEntries(ctx, time.Time{})
		if err != nil {
			done <- err
			return
		}
		for _, e := range entries {
			if _, err := repo.GetEntry(ctx, e.ID); err != nil {
				done <- err
				return
			}
			if _, err := repo.ListProjects(ctx); err != nil {
				done <- err
				return
			}
		}
		_, err = repo.AddEntry(ctx, 0.5, "follow-up", nil)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out - possible deadlock detected")
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	err := repo.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO projects (name, description, created_at) VALUES ('tmp', '', 'x')`); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")

	projects, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func strPtr(s string) *string {
	return &s
}
