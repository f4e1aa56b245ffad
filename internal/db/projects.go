package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tgienger/taskflow/internal/models"
)

const projectColumns = `id, name, description, created_at`

// scanner is implemented by *Rows and *SingleRow
type scanner interface {
	Scan(dest ...any) error
}

// CreateProject inserts a new project and returns it as stored
func (db *DB) CreateProject(name, description string) (*models.Project, error) {
	result, err := db.Exec(`
		INSERT INTO projects (name, description) VALUES (?, ?)
	`, name, description)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetProject(id)
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(id int64) (*models.Project, error) {
	return scanProject(db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
}

// GetProjectByName retrieves a project by its exact name
func (db *DB) GetProjectByName(name string) (*models.Project, error) {
	return scanProject(db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE name = ?`, name))
}

// ListProjects returns all projects ordered by name
func (db *DB) ListProjects() ([]models.Project, error) {
	rows, err := db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject writes the name and description of p
func (db *DB) UpdateProject(p models.Project) error {
	result, err := db.Exec(`
		UPDATE projects SET name = ?, description = ? WHERE id = ?
	`, p.Name, p.Description, p.ID)
	if err != nil {
		return err
	}
	return expectAffected(result, "update project", p.ID)
}

// DeleteProject deletes a project. Its tasks are kept and detached from it.
func (db *DB) DeleteProject(id int64) error {
	if _, err := db.Exec("UPDATE tasks SET project_id = NULL WHERE project_id = ?", id); err != nil {
		return err
	}
	result, err := db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectAffected(result, "delete project", id)
}

// ProjectCount returns the number of projects
func (db *DB) ProjectCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count)
	return count, err
}

func scanProject(s scanner) (*models.Project, error) {
	var (
		p           models.Project
		description sql.NullString
		createdAt   sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &description, &createdAt); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.CreatedAt = timePtr(createdAt)
	return &p, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func expectAffected(result sql.Result, op string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}
