package db

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/dori/tlogg/internal/model"
)

const entryColumns = `
	SELECT e.id, e.duration, e.description, e.project_id, p.name, e.created_at
	FROM entries e
	JOIN projects p ON p.id = e.project_id`

// ListEntries returns entries created on or after since, in creation order
func (r *Repository) ListEntries(ctx context.Context, since time.Time) ([]model.LogEntry, error) {
	var entries []model.LogEntry

	err := r.do(ctx, "list entries", func(ctx context.Context) error {
		entries = nil

		rows, err := r.db.QueryContext(ctx, entryColumns+`
			WHERE e.created_at >= ?
			ORDER BY e.id
		`, formatTime(since))
		if err != nil {
			return err
		}
		// rows hold the only connection; nothing else may query until closed
		defer rows.Close()

		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				return err
			}
			entries = append(entries, *e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// GetEntry returns a single entry by id
func (r *Repository) GetEntry(ctx context.Context, id int64) (*model.LogEntry, error) {
	var entry *model.LogEntry
	err := r.do(ctx, "get entry", func(ctx context.Context) error {
		row := r.db.QueryRowContext(ctx, entryColumns+` WHERE e.id = ?`, id)

		var err error
		entry, err = scanEntry(row)
		if errors.Is(err, sql.ErrNoRows) {
			return newError(NotFound, nil, "entry %d not found", id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AddEntry books duration hours against a project. A nil projectName
// selects the project of the most recent entry.
func (r *Repository) AddEntry(ctx context.Context, duration float64, description string, projectName *string) (*model.LogEntry, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, newError(InvalidDuration, nil,
			"duration must be a positive number of hours, got %v", duration)
	}
	if projectName != nil && *projectName == "" {
		return nil, newError(InvalidInput, nil, "project name must not be empty")
	}

	now := r.now().UTC()

	var entry *model.LogEntry
	err := r.do(ctx, "add entry", func(ctx context.Context) error {
		return r.db.Transaction(ctx, func(tx *sql.Tx) error {
			var project *model.Project
			var err error
			if projectName != nil {
				project, err = projectByName(ctx, tx, *projectName)
			} else {
				project, err = lastProject(ctx, tx)
			}
			if err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx, `
				INSERT INTO entries (duration, description, project_id, created_at)
				VALUES (?, ?, ?, ?)
			`, duration, description, project.ID, formatTime(now))
			if err != nil {
				return err
			}

			id, err := res.LastInsertId()
			if err != nil {
				return err
			}

			entry = &model.LogEntry{
				ID:          id,
				Duration:    duration,
				Description: description,
				ProjectID:   project.ID,
				Project:     project.Name,
				CreatedAt:   now,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("entry added", "id", entry.ID, "project", entry.Project, "hours", entry.Duration)
	return entry, nil
}

// RemoveEntry deletes an entry by id
func (r *Repository) RemoveEntry(ctx context.Context, id int64) error {
	err := r.do(ctx, "remove entry", func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return newError(NotFound, nil, "entry %d not found", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("entry removed", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*model.LogEntry, error) {
	var e model.LogEntry
	var createdAt string

	err := s.Scan(&e.ID, &e.Duration, &e.Description, &e.ProjectID, &e.Project, &createdAt)
	if err != nil {
		return nil, err
	}

	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &e, nil
}
