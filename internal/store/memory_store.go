package store

import (
	"context"
	"sync"

	"github.com/evyataryagoni/iplocator/internal/models"
)

// MemoryStore implements Store with a map guarded by a mutex
// Records live as long as the process; used for local runs without a database
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.LocationRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.LocationRecord),
	}
}

// FindByIP returns a copy of the stored record
func (s *MemoryStore) FindByIP(_ context.Context, ip string) (*models.LocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[ip]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

// Insert adds a record unless the IP is already present
func (s *MemoryStore) Insert(_ context.Context, record *models.LocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.IP]; exists {
		return ErrDuplicate
	}
	s.records[record.IP] = *record
	return nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
