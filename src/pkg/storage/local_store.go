package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloglist/local-app/src/pkg/log"
)

// LocalStore is a durable string key/value store, the client's local storage.
type LocalStore interface {
	ItemGet(ctx context.Context, key string) (string, bool, error)
	ItemSet(ctx context.Context, key, value string) error
	ItemRemove(ctx context.Context, key string) error
}

// LocalStorage implements LocalStore on top of a Database.
type LocalStorage struct {
	db     Database
	logger *log.Logger
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(db Database, logger *log.Logger) *LocalStorage {
	return &LocalStorage{db: db, logger: logger}
}

// ItemGet returns the value stored under key and whether it exists.
func (s *LocalStorage) ItemGet(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, "SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read item %q: %w", key, err)
	}
	return value, true, nil
}

// ItemSet stores value under key, replacing any previous value.
func (s *LocalStorage) ItemSet(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO local_storage (key, value, updated) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated = excluded.updated`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write item %q: %w", key, err)
	}
	s.logger.Debug(ctx, "Local storage item written", log.Fields{"key": key})
	return nil
}

// ItemRemove deletes key. Removing a missing key is not an error.
func (s *LocalStorage) ItemRemove(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM local_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove item %q: %w", key, err)
	}
	s.logger.Debug(ctx, "Local storage item removed", log.Fields{"key": key})
	return nil
}
