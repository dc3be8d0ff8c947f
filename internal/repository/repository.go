package repository

import (
	"context"

	"repocache/internal/domain"
)

// Repository defines the interface for fixture record access
type Repository interface {
	// Read operations
	Get(ctx context.Context, id string) (*domain.Record, error)
	GetByName(ctx context.Context, schema, name string) (*domain.Record, error)
	// GetPreloaded reads a record and fills Associations for each of assocs
	GetPreloaded(ctx context.Context, id string, assocs []string) (*domain.Record, error)

	// Write operations
	Insert(ctx context.Context, rec *domain.Record) error

	// Close releases resources
	Close() error
}
