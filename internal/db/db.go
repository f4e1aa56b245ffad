package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// DefaultPath is used when New is given an empty path.
	DefaultPath = "data/taskflow.db"
	// MemoryPath opens an ephemeral store that lives as long as the handle.
	MemoryPath = ":memory:"

	pragmaForeignKeysOn = `PRAGMA foreign_keys = ON`
)

var errClosed = errors.New("handle is closed")

// DB owns a single connection to the store. Every statement runs in an
// implicit transaction that lasts until Commit. A DB is not safe for
// concurrent use.
type DB struct {
	pool   *sql.DB
	conn   *sql.Conn
	tx     *sql.Tx
	path   string
	logger *slog.Logger
	closed bool

	// ctx bounds everything run on the connection; Close cancels it so
	// rows left open by a caller cannot block the release.
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a DB
type Option func(*DB)

// WithLogger sets the logger used for lifecycle events
func WithLogger(logger *slog.Logger) Option {
	return func(db *DB) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// New opens the store at path and makes sure the schema exists. An empty
// path means DefaultPath; MemoryPath opens an in-memory store.
func New(path string, opts ...Option) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}

	db := &DB{
		path:   path,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.open(); err != nil {
		db.logger.Warn("open store failed", "path", path, "err", err)
		return nil, err
	}
	db.logger.Debug("store opened", "path", path)
	return db, nil
}

func (db *DB) open() error {
	if db.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
			return unavailable("create data dir", err)
		}
	}

	pool, err := sql.Open("sqlite3", db.path+"?_foreign_keys=on")
	if err != nil {
		return unavailable("open", err)
	}
	pool.SetMaxOpenConns(1)
	db.pool = pool
	db.ctx, db.cancel = context.WithCancel(context.Background())

	conn, err := pool.Conn(db.ctx)
	if err != nil {
		_ = db.release()
		return unavailable("open", err)
	}
	db.conn = conn

	if err := db.configure(); err != nil {
		_ = db.release()
		return err
	}
	if err := db.applySchema(); err != nil {
		_ = db.release()
		return err
	}
	return nil
}

// configure turns on foreign key enforcement, which SQLite leaves off by default.
func (db *DB) configure() error {
	ctx := db.ctx
	if _, err := db.conn.ExecContext(ctx, pragmaForeignKeysOn); err != nil {
		return unavailable("configure sqlite", err)
	}

	var enabled int
	if err := db.conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		return unavailable("configure sqlite", err)
	}
	if enabled != 1 {
		return unavailable("configure sqlite", fmt.Errorf("foreign keys not enforced"))
	}
	return nil
}

// Path returns the location the store was opened at
func (db *DB) Path() string {
	return db.path
}

// Exec runs one parameterized statement. Placeholders are positional (?).
// The statement joins the pending transaction and is not durable until Commit.
func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	if err := db.begin("exec"); err != nil {
		return nil, err
	}

	result, err := db.tx.ExecContext(db.ctx, query, args...)
	if err != nil {
		return nil, classify("exec", err)
	}
	return result, nil
}

// Query runs a statement that returns rows, in the same pending transaction
// as Exec: it sees uncommitted writes, and a writing statement such as
// INSERT ... RETURNING is not durable until Commit. The caller must close
// the returned Rows.
func (db *DB) Query(query string, args ...any) (*Rows, error) {
	if err := db.begin("query"); err != nil {
		return nil, err
	}

	rows, err := db.tx.QueryContext(db.ctx, query, args...)
	if err != nil {
		return nil, classify("query", err)
	}
	return wrapRows(rows)
}

// QueryRow runs a statement expected to return at most one row
func (db *DB) QueryRow(query string, args ...any) *SingleRow {
	rows, err := db.Query(query, args...)
	return &SingleRow{rows: rows, err: err}
}

// Commit makes pending writes durable. It is a no-op when nothing is pending.
func (db *DB) Commit() error {
	if db.closed {
		return unavailable("commit", errClosed)
	}
	if db.tx == nil {
		return nil
	}

	tx := db.tx
	db.tx = nil
	if err := tx.Commit(); err != nil {
		return classify("commit", err)
	}
	return nil
}

// Rollback discards pending writes. It is a no-op when nothing is pending.
func (db *DB) Rollback() error {
	if db.closed {
		return unavailable("rollback", errClosed)
	}
	if db.tx == nil {
		return nil
	}

	tx := db.tx
	db.tx = nil
	if err := tx.Rollback(); err != nil {
		return classify("rollback", err)
	}
	return nil
}

// Close discards uncommitted writes and releases the connection, closing any
// rows the caller left open. Any later call on the handle fails with
// ErrStoreUnavailable.
func (db *DB) Close() error {
	if db == nil || db.closed {
		return nil
	}

	// cancelling first closes open rows and rolls back the pending transaction
	db.cancel()

	var errs []error
	if db.tx != nil {
		if err := db.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		db.tx = nil
	}
	errs = append(errs, db.release())
	db.closed = true

	db.logger.Debug("store closed", "path", db.path)
	if err := errors.Join(errs...); err != nil {
		return unavailable("close", err)
	}
	return nil
}

func (db *DB) release() error {
	if db.cancel != nil {
		db.cancel()
	}

	var errs []error
	if db.conn != nil {
		// a transaction cancelled mid-flight may already have discarded the conn
		if err := db.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
		db.conn = nil
	}
	if db.pool != nil {
		errs = append(errs, db.pool.Close())
		db.pool = nil
	}
	return errors.Join(errs...)
}

// begin opens the implicit transaction if none is pending
func (db *DB) begin(op string) error {
	if db.closed {
		return unavailable(op, errClosed)
	}
	if db.tx != nil {
		return nil
	}

	tx, err := db.conn.BeginTx(db.ctx, nil)
	if err != nil {
		return classify("begin", err)
	}
	db.tx = tx
	return nil
}
