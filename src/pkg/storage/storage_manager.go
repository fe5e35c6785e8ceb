package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
)

// Storage represents the main storage implementation.
type Storage struct {
	db Database
	LocalStore
}

// NewStorage creates a new Storage instance and initializes the database.
func NewStorage(config *model.Config, logger *log.Logger) (*Storage, error) {
	dbDriver, err := validateDBDriver(config.StorageDriver)
	if err != nil {
		return nil, fmt.Errorf("invalid database driver '%s': %w", config.StorageDriver, err)
	}

	db, err := NewDatabase(dbDriver, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database instance: %w", err)
	}

	// Construct the full path for the database file
	dataSourceName := filepath.Join(config.StorageDir, config.StorageFile)

	if err := db.Open(dataSourceName); err != nil {
		return nil, fmt.Errorf("failed to open database connection '%s': %w", dataSourceName, err)
	}

	if err := db.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	storage := &Storage{db: db}
	storage.LocalStore = NewLocalStorage(db, logger)

	return storage, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
