// Package repository defines the narrow database-access interface the
// solver service depends on, so its storage-backed code can run against
// either a real *sql.DB or a mock satisfying the same methods.
package repository

import (
	"context"
	"database/sql"
)

// DB is the subset of *sql.DB the service depends on.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
