// Package storage provides functionality for persisting and retrieving client data.
// This file handles the general SQL database interfaces and schemas.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"bloglist/local-app/src/pkg/log"
)

// DBDriver represents the type of database driver
type DBDriver string

const (
	// SQLite uses github.com/mattn/go-sqlite3 (cgo)
	SQLite DBDriver = "sqlite3"
	// SQLitePure uses modernc.org/sqlite (no cgo)
	SQLitePure DBDriver = "sqlite"
)

// Database interface defines common database operations
type Database interface {
	Open(dataSourceName string) error
	Close() error
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row
	InitSchema(ctx context.Context) error
}

// NewDatabase creates a new Database instance based on the specified driver
func NewDatabase(driver DBDriver, logger *log.Logger) (Database, error) {
	switch driver {
	case SQLite, SQLitePure:
		return &SQLiteDatabase{BaseDatabase: BaseDatabase{driver: driver, logger: logger}}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// BaseDatabase provides a base implementation of some Database methods
type BaseDatabase struct {
	db     *sql.DB
	driver DBDriver
	logger *log.Logger
}

// Exec executes a query without returning any rows
func (b *BaseDatabase) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	b.logger.Debug(ctx, "Executing query", log.Fields{"query": query})
	return b.db.ExecContext(ctx, query, args...)
}

// QueryRow executes a query that is expected to return at most one row
func (b *BaseDatabase) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return b.db.QueryRowContext(ctx, query, args...)
}

// InitSchema initializes the database schema
func (b *BaseDatabase) InitSchema(ctx context.Context) error {
	b.logger.Info(ctx, "Initializing database schema", nil)

	_, err := b.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS local_storage (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated INTEGER NOT NULL
		)
	`)
	if err != nil {
		b.logger.Error(ctx, "Failed to create tables", log.Fields{"error": err})
		return fmt.Errorf("failed to create tables: %w", err)
	}
	b.logger.Info(ctx, "Database schema initialized successfully", nil)
	return nil
}

// validateDBDriver checks if the provided driver is supported
func validateDBDriver(driver string) (DBDriver, error) {
	switch DBDriver(driver) {
	case SQLite:
		return SQLite, nil
	case SQLitePure:
		return SQLitePure, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}
