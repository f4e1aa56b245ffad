package db

import (
	"database/sql"
	"time"
)

// Row is a result row keyed by column name
type Row map[string]any

// Value returns the raw value of column and whether the column exists
func (r Row) Value(column string) (any, bool) {
	v, ok := r[column]
	return v, ok
}

// IsNull reports whether column is NULL or absent
func (r Row) IsNull(column string) bool {
	return r[column] == nil
}

// Int64 returns column as an integer, or 0 if it is NULL or not an integer
func (r Row) Int64(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

// String returns column as text, or "" if it is NULL
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

// Time returns column as a timestamp, or nil if it is NULL
func (r Row) Time(column string) *time.Time {
	if v, ok := r[column].(time.Time); ok {
		return &v
	}
	return nil
}

// Rows wraps sql.Rows so each row can also be read by column name.
type Rows struct {
	*sql.Rows
	columns []string
}

func wrapRows(rows *sql.Rows) (*Rows, error) {
	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, classify("query", err)
	}
	return &Rows{Rows: rows, columns: columns}, nil
}

// Row reads the current row into a Row. Call it after Next, in place of Scan.
func (r *Rows) Row() (Row, error) {
	values := make([]any, len(r.columns))
	dest := make([]any, len(r.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.Rows.Scan(dest...); err != nil {
		return nil, classify("scan", err)
	}

	row := make(Row, len(r.columns))
	for i, column := range r.columns {
		row[column] = values[i]
	}
	return row, nil
}

// Scan copies the current row into dest, positionally.
func (r *Rows) Scan(dest ...any) error {
	return classify("scan", r.Rows.Scan(dest...))
}

// Err returns the error, if any, hit while iterating.
func (r *Rows) Err() error {
	return classify("query", r.Rows.Err())
}

// SingleRow is the result of QueryRow
type SingleRow struct {
	rows *Rows
	err  error
}

// Scan copies the first row into dest. It returns ErrNotFound if there is none.
func (r *SingleRow) Scan(dest ...any) error {
	if err := r.first(); err != nil {
		return err
	}
	defer r.rows.Close()
	return r.rows.Scan(dest...)
}

// Row returns the first row by column name. It returns ErrNotFound if there is none.
func (r *SingleRow) Row() (Row, error) {
	if err := r.first(); err != nil {
		return nil, err
	}
	defer r.rows.Close()
	return r.rows.Row()
}

func (r *SingleRow) first() error {
	if r.err != nil {
		return r.err
	}
	if !r.rows.Next() {
		err := r.rows.Err()
		_ = r.rows.Close()
		if err != nil {
			return err
		}
		return classify("query row", sql.ErrNoRows)
	}
	return nil
}
