package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/dori/tlogg/internal/model"
)

const projectSummary = `
	SELECT p.id, p.name, p.description, p.created_at,
	       COUNT(e.id), COALESCE(SUM(e.duration), 0.0)
	FROM projects p
	LEFT JOIN entries e ON e.project_id = p.id`

// ListProjects returns all projects in creation order with their totals
func (r *Repository) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project

	err := r.do(ctx, "list projects", func(ctx context.Context) error {
		projects = nil

		rows, err := r.db.QueryContext(ctx, projectSummary+`
			GROUP BY p.id
			ORDER BY p.id
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProjectSummary(rows)
			if err != nil {
				return err
			}
			projects = append(projects, *p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return projects, nil
}

// GetProject returns a single project by name with its totals
func (r *Repository) GetProject(ctx context.Context, name string) (*model.Project, error) {
	var p *model.Project
	err := r.do(ctx, "get project", func(ctx context.Context) error {
		row := r.db.QueryRowContext(ctx, projectSummary+`
			WHERE p.name = ?
			GROUP BY p.id
		`, name)

		var err error
		p, err = scanProjectSummary(row)
		if errors.Is(err, sql.ErrNoRows) {
			return newError(NotFound, nil, "project %q not found", name)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AddProject creates a new project. Name uniqueness is enforced by the
// projects table, not by a lookup beforehand.
func (r *Repository) AddProject(ctx context.Context, name, description string) (*model.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newError(InvalidInput, nil, "project name must not be empty")
	}

	now := r.now().UTC()

	var project *model.Project
	err := r.do(ctx, "add project", func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO projects (name, description, created_at)
			VALUES (?, ?, ?)
		`, name, description, formatTime(now))
		if err != nil {
			if constraintOf(err) == sqlite3.ErrConstraintUnique {
				return newError(DuplicateName, err, "project %q already exists", name)
			}
			return err
		}

		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		project = &model.Project{
			ID:          id,
			Name:        name,
			Description: description,
			CreatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("project added", "id", project.ID, "name", project.Name)
	return project, nil
}

// RemoveProject deletes a project by name. The foreign key on entries
// rejects the delete while any entry still references the project.
func (r *Repository) RemoveProject(ctx context.Context, name string) error {
	err := r.do(ctx, "remove project", func(ctx context.Context) error {
		return r.db.Transaction(ctx, func(tx *sql.Tx) error {
			p, err := projectByName(ctx, tx, name)
			if err != nil {
				return err
			}

			_, err = tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, p.ID)
			if isForeignKeyViolation(err) {
				var count int
				if cerr := tx.QueryRowContext(ctx,
					`SELECT COUNT(*) FROM entries WHERE project_id = ?`, p.ID,
				).Scan(&count); cerr != nil {
					return cerr
				}
				return newError(InUse, err, "project %q is still used by %d log entries", name, count)
			}
			return err
		})
	})
	if err != nil {
		return err
	}

	r.logger.Debug("project removed", "name", name)
	return nil
}

// LastProject returns the project of the most recently created entry
func (r *Repository) LastProject(ctx context.Context) (*model.Project, error) {
	var p *model.Project
	err := r.do(ctx, "last project", func(ctx context.Context) error {
		var err error
		p, err = lastProject(ctx, r.db)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Helper functions

func projectByName(ctx context.Context, q queryer, name string) (*model.Project, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, description, created_at
		FROM projects WHERE name = ?
	`, name)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(NotFound, nil, "project %q not found", name)
	}
	return p, err
}

func lastProject(ctx context.Context, q queryer) (*model.Project, error) {
	row := q.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.description, p.created_at
		FROM entries e
		JOIN projects p ON p.id = e.project_id
		ORDER BY e.id DESC
		LIMIT 1
	`)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(NoDefaultProject, nil,
			"no project given and the log is empty; pass a project name")
	}
	return p, err
}

func scanProject(row *sql.Row) (*model.Project, error) {
	var p model.Project
	var createdAt string

	if err := row.Scan(&p.ID, &p.Name, &p.Description, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProjectSummary(s scanner) (*model.Project, error) {
	var p model.Project
	var createdAt string

	err := s.Scan(&p.ID, &p.Name, &p.Description, &createdAt, &p.EntryCount, &p.TotalHours)
	if err != nil {
		return nil, err
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}
