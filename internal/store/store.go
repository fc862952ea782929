package store

import (
	"context"
	"errors"

	"github.com/evyataryagoni/iplocator/internal/models"
)

var (
	// ErrNotFound is returned by FindByIP when no record exists for the IP
	ErrNotFound = errors.New("location record not found")

	// ErrDuplicate is returned by Insert when a record for the IP already exists
	ErrDuplicate = errors.New("location record already exists")
)

// Store defines the storage accessor for cached IP locations
// There is no update path: records are created once and kept forever
type Store interface {
	// FindByIP looks up a record by exact match on the IP text
	FindByIP(ctx context.Context, ip string) (*models.LocationRecord, error)

	// Insert creates a new record, failing with ErrDuplicate if the IP is taken
	Insert(ctx context.Context, record *models.LocationRecord) error

	// Close cleans up resources (database connections, client pools, etc.)
	Close() error
}
