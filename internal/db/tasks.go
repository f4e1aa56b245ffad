package db

import (
	"database/sql"

	"github.com/tgienger/taskflow/internal/models"
)

const taskSelect = `
	SELECT t.id, t.title, t.description, t.priority, t.status, t.project_id,
	       t.deadline, t.created_at, t.completed_at, p.name
	FROM tasks t
	LEFT JOIN projects p ON p.id = t.project_id
`

// most urgent first, then oldest first
const taskOrder = `
	ORDER BY CASE t.priority
		WHEN 'critical' THEN 0
		WHEN 'high' THEN 1
		WHEN 'medium' THEN 2
		ELSE 3
	END, t.id
`

// TaskFilter narrows ListTasks. Zero fields do not filter.
type TaskFilter struct {
	ProjectID *int64
	Status    models.Status
	Priority  models.Priority
	Tag       string // tag name, case-insensitive
	Search    string // substring of title or description
}

// CreateTask inserts t and attaches its tags by name. An empty priority or
// status falls back to the column default.
func (db *DB) CreateTask(t models.Task) (*models.Task, error) {
	if t.Priority == "" {
		t.Priority = models.DefaultPriority
	}
	if t.Status == "" {
		t.Status = models.DefaultStatus
	}

	result, err := db.Exec(`
		INSERT INTO tasks (title, description, priority, status, project_id, deadline, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.Title, t.Description, string(t.Priority), string(t.Status), t.ProjectID, t.Deadline, t.CompletedAt)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	if len(t.Tags) > 0 {
		if err := db.SetTaskTags(id, t.Tags); err != nil {
			return nil, err
		}
	}

	return db.GetTask(id)
}

// GetTask retrieves a task by ID with its tags and project name
func (db *DB) GetTask(id int64) (*models.Task, error) {
	t, err := scanTask(db.QueryRow(taskSelect+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, err
	}

	if err := db.loadTaskTags(t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns tasks matching filter, most urgent first
func (db *DB) ListTasks(filter TaskFilter) ([]models.Task, error) {
	query := taskSelect + ` WHERE 1 = 1`
	var args []any

	if filter.ProjectID != nil {
		query += " AND t.project_id = ?"
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != "" {
		query += " AND t.status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		query += " AND t.priority = ?"
		args = append(args, string(filter.Priority))
	}
	if filter.Tag != "" {
		query += ` AND t.id IN (
			SELECT tt.task_id FROM task_tags tt
			JOIN tags g ON g.id = tt.tag_id
			WHERE LOWER(g.name) = LOWER(?)
		)`
		args = append(args, filter.Tag)
	}
	if filter.Search != "" {
		query += " AND (t.title LIKE ? OR t.description LIKE ?)"
		searchPattern := "%" + filter.Search + "%"
		args = append(args, searchPattern, searchPattern)
	}
	query += taskOrder

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Load tags for each task
	for i := range tasks {
		if err := db.loadTaskTags(&tasks[i]); err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// UpdateTask writes every stored field of t. Tags are left untouched.
func (db *DB) UpdateTask(t models.Task) error {
	result, err := db.Exec(`
		UPDATE tasks
		SET title = ?, description = ?, priority = ?, status = ?, project_id = ?,
		    deadline = ?, completed_at = ?
		WHERE id = ?
	`, t.Title, t.Description, string(t.Priority), string(t.Status), t.ProjectID,
		t.Deadline, t.CompletedAt, t.ID)
	if err != nil {
		return err
	}
	return expectAffected(result, "update task", t.ID)
}

// SetTaskStatus moves a task to status, stamping completed_at when it
// becomes done and clearing it otherwise.
func (db *DB) SetTaskStatus(id int64, status models.Status) error {
	result, err := db.Exec(`
		UPDATE tasks
		SET status = ?,
		    completed_at = CASE WHEN ? = 'done' THEN CURRENT_TIMESTAMP ELSE NULL END
		WHERE id = ?
	`, string(status), string(status), id)
	if err != nil {
		return err
	}
	return expectAffected(result, "set task status", id)
}

// DeleteTask deletes a task. Its tag associations go with it.
func (db *DB) DeleteTask(id int64) error {
	result, err := db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectAffected(result, "delete task", id)
}

// TaskCount returns the number of tasks
func (db *DB) TaskCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&count)
	return count, err
}

func (db *DB) loadTaskTags(t *models.Task) error {
	tags, err := db.GetTaskTags(t.ID)
	if err != nil {
		return err
	}
	t.Tags = make([]string, 0, len(tags))
	for _, tag := range tags {
		t.Tags = append(t.Tags, tag.Name)
	}
	return nil
}

func scanTask(s scanner) (*models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
		priority    sql.NullString
		status      sql.NullString
		projectID   sql.NullInt64
		deadline    sql.NullTime
		createdAt   sql.NullTime
		completedAt sql.NullTime
		projectName sql.NullString
	)
	err := s.Scan(&t.ID, &t.Title, &description, &priority, &status, &projectID,
		&deadline, &createdAt, &completedAt, &projectName)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	t.Priority = models.Priority(priority.String)
	t.Status = models.Status(status.String)
	if projectID.Valid {
		id := projectID.Int64
		t.ProjectID = &id
	}
	t.Deadline = timePtr(deadline)
	t.CreatedAt = timePtr(createdAt)
	t.CompletedAt = timePtr(completedAt)
	t.ProjectName = projectName.String
	return &t, nil
}
