// Package database wraps a pooled Postgres connection with slow-query
// logging and a transaction helper shared by the repository layer.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paiban/paiban-core/internal/config"
	"github.com/paiban/paiban-core/pkg/logger"

	_ "github.com/lib/pq"
)

const slowQueryThreshold = 100 * time.Millisecond

// DB wraps *sql.DB with slow-query logging, keeping the configuration
// it was opened with for diagnostics.
type DB struct {
	*sql.DB
	cfg *config.DatabaseConfig
}

// New opens a pooled connection to cfg, pinging it before returning.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	logger.LogEvent("info", "database.connected",
		logger.F("host", cfg.Host),
		logger.F("port", cfg.Port),
		logger.F("database", cfg.Name),
	)

	return &DB{DB: db, cfg: cfg}, nil
}

// Close closes the pooled connection.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	logger.LogEvent("info", "database.closed")
	return db.DB.Close()
}

// Health pings the database.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Transaction runs fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ExecContext executes a statement, logging it as slow if it exceeds
// slowQueryThreshold.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	if duration := time.Since(start); duration > slowQueryThreshold {
		logger.LogEvent("warn", "database.slow_query",
			logger.F("query", truncateQuery(query)),
			logger.F("duration_ms", duration.Milliseconds()),
		)
	}
	return result, err
}

// QueryContext runs a query, logging it as slow if it exceeds
// slowQueryThreshold.
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	if duration := time.Since(start); duration > slowQueryThreshold {
		logger.LogEvent("warn", "database.slow_query",
			logger.F("query", truncateQuery(query)),
			logger.F("duration_ms", duration.Milliseconds()),
		)
	}
	return rows, err
}

// QueryRowContext runs a single-row query.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, query, args...)
}

func truncateQuery(query string) string {
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
