package db

import (
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schema string

// expectedColumns lists the columns each table must carry for the store to be usable.
var expectedColumns = map[string][]string{
	"projects":  {"id", "name", "description", "created_at"},
	"tasks":     {"id", "title", "description", "priority", "status", "project_id", "deadline", "created_at", "completed_at"},
	"tags":      {"id", "name"},
	"task_tags": {"task_id", "tag_id"},
}

// applySchema creates any missing tables in one transaction. Safe to run
// against an already initialized store.
func (db *DB) applySchema() error {
	tx, err := db.conn.BeginTx(db.ctx, nil)
	if err != nil {
		return unavailable("begin schema", err)
	}
	if _, err := tx.Exec(schema); err != nil {
		_ = tx.Rollback()
		return unavailable("create schema", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit schema", err)
	}

	if err := db.verifySchema(); err != nil {
		return err
	}
	db.logger.Debug("schema ready", "path", db.path)
	return nil
}

// verifySchema rejects a pre-existing store whose tables predate or differ
// from the current layout.
func (db *DB) verifySchema() error {
	for table, columns := range expectedColumns {
		present, err := db.tableColumns(table)
		if err != nil {
			return unavailable("verify schema", err)
		}
		for _, column := range columns {
			if _, ok := present[column]; !ok {
				return unavailable("verify schema", fmt.Errorf("table %s has no column %s", table, column))
			}
		}
	}
	return nil
}

func (db *DB) tableColumns(table string) (map[string]struct{}, error) {
	// runs outside the implicit transaction so a fresh handle holds no lock
	sqlRows, err := db.conn.QueryContext(db.ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, classify("query", err)
	}
	rows, err := wrapRows(sqlRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]struct{})
	for rows.Next() {
		row, err := rows.Row()
		if err != nil {
			return nil, err
		}
		columns[row.String("name")] = struct{}{}
	}
	return columns, rows.Err()
}
