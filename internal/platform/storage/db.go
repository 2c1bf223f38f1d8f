package storage

import (
	"fmt"
	"os"

	"catalogservice/internal/platform/observability"

	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"
)

// DB manages the badgerhold store backing the catalog.
type DB struct {
	store  *badgerhold.Store
	logger observability.Logger
}

// Open opens the store at path, creating the directory if needed.
// An empty path opens an in-memory store.
func Open(path string, logger observability.Logger) (*DB, error) {
	options := badgerhold.DefaultOptions
	options.Logger = nil // service logs go through zap

	if path == "" {
		options.InMemory = true
		options.Dir = ""
		options.ValueDir = ""
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		options.Dir = path
		options.ValueDir = path
	}

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Info("Badger database initialized",
		zap.String("path", path),
		zap.Bool("in_memory", options.InMemory),
	)
	return &DB{store: store, logger: logger}, nil
}

// Store returns the underlying badgerhold store.
func (d *DB) Store() *badgerhold.Store {
	return d.store
}

// Close closes the database.
func (d *DB) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
