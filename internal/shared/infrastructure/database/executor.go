package database

import (
	"context"
	"database/sql"
)

// Row is a single result row. *sql.Row and pgx.Row satisfy it.
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result cursor. *sql.Rows satisfies it directly.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Result reports what an Exec changed.
type Result interface {
	RowsAffected() (int64, error)
}

// Executor runs queries. Repositories only ever see this interface, so the
// same code serves a connection or the transaction stored in the context.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Transaction is an Executor that must end in Commit or Rollback.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection is a driver-specific handle to the store.
type Connection interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
	Ping(ctx context.Context) error
	Driver() Driver
}

// SQLQuerier is the part of *sql.DB and *sql.Tx an SQLExecutor needs.
type SQLQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLExecutor adapts a database/sql handle to Executor.
type SQLExecutor struct {
	Q SQLQuerier
}

// Exec runs a statement that returns no rows.
func (e SQLExecutor) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return e.Q.ExecContext(ctx, query, args...)
}

// QueryRow runs a query expected to return at most one row.
func (e SQLExecutor) QueryRow(ctx context.Context, query string, args ...any) Row {
	return e.Q.QueryRowContext(ctx, query, args...)
}

// Query runs a query returning any number of rows.
func (e SQLExecutor) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := e.Q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
