package db

import (
	"github.com/tgienger/taskflow/internal/models"
)

// CreateTag creates a new tag
func (db *DB) CreateTag(name string) (*models.Tag, error) {
	result, err := db.Exec("INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetTag(id)
}

// GetTag retrieves a tag by ID
func (db *DB) GetTag(id int64) (*models.Tag, error) {
	t := &models.Tag{}
	err := db.QueryRow("SELECT id, name FROM tags WHERE id = ?", id).Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagByName retrieves a tag by its name (case-insensitive)
func (db *DB) GetTagByName(name string) (*models.Tag, error) {
	t := &models.Tag{}
	err := db.QueryRow("SELECT id, name FROM tags WHERE LOWER(name) = LOWER(?)", name).Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags
func (db *DB) ListTags() ([]models.Tag, error) {
	return db.queryTags("SELECT id, name FROM tags ORDER BY name")
}

// UpdateTag renames a tag
func (db *DB) UpdateTag(t models.Tag) error {
	result, err := db.Exec("UPDATE tags SET name = ? WHERE id = ?", t.Name, t.ID)
	if err != nil {
		return err
	}
	return expectAffected(result, "update tag", t.ID)
}

// DeleteTag deletes a tag and detaches it from every task
func (db *DB) DeleteTag(id int64) error {
	result, err := db.Exec("DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectAffected(result, "delete tag", id)
}

// TagCount returns the number of tags
func (db *DB) TagCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count)
	return count, err
}

// GetTaskTags returns all tags for a task
func (db *DB) GetTaskTags(taskID int64) ([]models.Tag, error) {
	return db.queryTags(`
		SELECT t.id, t.name
		FROM tags t
		JOIN task_tags tt ON t.id = tt.tag_id
		WHERE tt.task_id = ?
		ORDER BY t.name
	`, taskID)
}

// AddTagToTask attaches a tag to a task. Attaching twice is a no-op.
func (db *DB) AddTagToTask(taskID, tagID int64) error {
	_, err := db.Exec(`
		INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)
	`, taskID, tagID)
	return err
}

// RemoveTagFromTask removes a tag from a task
func (db *DB) RemoveTagFromTask(taskID, tagID int64) error {
	_, err := db.Exec("DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?", taskID, tagID)
	return err
}

// SetTaskTags replaces the tags of a task with the named ones, creating
// tags that do not exist yet.
func (db *DB) SetTaskTags(taskID int64, names []string) error {
	if _, err := db.Exec("DELETE FROM task_tags WHERE task_id = ?", taskID); err != nil {
		return err
	}

	for _, name := range names {
		if _, err := db.Exec("INSERT OR IGNORE INTO tags (name) VALUES (?)", name); err != nil {
			return err
		}
		var tagID int64
		if err := db.QueryRow("SELECT id FROM tags WHERE name = ?", name).Scan(&tagID); err != nil {
			return err
		}
		if err := db.AddTagToTask(taskID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) queryTags(query string, args ...any) ([]models.Tag, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
