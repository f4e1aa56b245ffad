package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrStoreUnavailable is returned when the store cannot be opened,
	// provisioned, or used (bad path, permissions, closed handle).
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrQuery is returned when the engine rejects a statement, including
	// UNIQUE, CHECK and FOREIGN KEY violations.
	ErrQuery = errors.New("query error")
	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("not found")
)

// Constraint names the kind of schema constraint a statement violated
type Constraint string

const (
	ConstraintUnique     Constraint = "unique"
	ConstraintCheck      Constraint = "check"
	ConstraintForeignKey Constraint = "foreign_key"
	ConstraintNotNull    Constraint = "not_null"
	ConstraintPrimaryKey Constraint = "primary_key"
)

// Error carries the failure kind alongside the untouched engine error.
type Error struct {
	Kind       error // ErrStoreUnavailable or ErrQuery
	Op         string
	Constraint Constraint // empty unless a constraint was violated
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Constraint != "" {
		msg += fmt.Sprintf(" (%s constraint)", e.Constraint)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ConstraintOf reports which constraint err violated, or "" if none.
func ConstraintOf(err error) Constraint {
	var e *Error
	if errors.As(err, &e) {
		return e.Constraint
	}
	return ""
}

func unavailable(op string, err error) error {
	return &Error{Kind: ErrStoreUnavailable, Op: op, Err: err}
}

// classify maps a driver error onto the store's two failure kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return unavailable(op, err)
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return &Error{Kind: ErrQuery, Op: op, Err: err}
	}

	switch sqliteErr.Code {
	case sqlite3.ErrCantOpen, sqlite3.ErrNotADB, sqlite3.ErrCorrupt,
		sqlite3.ErrIoErr, sqlite3.ErrPerm, sqlite3.ErrReadonly:
		return unavailable(op, err)
	case sqlite3.ErrConstraint:
		return &Error{Kind: ErrQuery, Op: op, Constraint: constraintFor(sqliteErr.ExtendedCode), Err: err}
	}
	return &Error{Kind: ErrQuery, Op: op, Err: err}
}

func constraintFor(code sqlite3.ErrNoExtended) Constraint {
	switch code {
	case sqlite3.ErrConstraintUnique:
		return ConstraintUnique
	case sqlite3.ErrConstraintCheck:
		return ConstraintCheck
	case sqlite3.ErrConstraintForeignKey:
		return ConstraintForeignKey
	case sqlite3.ErrConstraintNotNull:
		return ConstraintNotNull
	case sqlite3.ErrConstraintPrimaryKey:
		return ConstraintPrimaryKey
	}
	return ""
}
