package store

import (
	"context"
	"sync"

	"github.com/evyataryagoni/iplocator/internal/models"
)

// MockStore is a test double for the Store interface
// It keeps real in-memory semantics and records every call for verification
type MockStore struct {
	*MemoryStore

	mu sync.Mutex

	// Track method calls for verification in tests
	FindByIPCalls []string
	InsertCalls   []models.LocationRecord
	CloseCalled   bool

	// Control behavior for error scenarios
	FindByIPError error
	InsertError   error
	CloseError    error
}

// NewMockStore creates a mock store pre-populated with common test IPs
func NewMockStore() *MockStore {
	m := NewEmptyMockStore()
	m.MemoryStore.records["8.8.8.8"] = models.LocationRecord{
		IP:       "8.8.8.8",
		Location: "Mountain View, California, US",
	}
	m.MemoryStore.records["1.1.1.1"] = models.LocationRecord{
		IP:       "1.1.1.1",
		Location: "Brisbane, Queensland, AU",
	}
	return m
}

// NewEmptyMockStore creates a mock store with no data
// Useful for testing cache misses
func NewEmptyMockStore() *MockStore {
	return &MockStore{
		MemoryStore:   NewMemoryStore(),
		FindByIPCalls: []string{},
		InsertCalls:   []models.LocationRecord{},
	}
}

// FindByIP tracks the call and returns the configured error or stored data
func (m *MockStore) FindByIP(ctx context.Context, ip string) (*models.LocationRecord, error) {
	m.mu.Lock()
	m.FindByIPCalls = append(m.FindByIPCalls, ip)
	err := m.FindByIPError
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.MemoryStore.FindByIP(ctx, ip)
}

// Insert tracks the call and returns the configured error or stores the record
func (m *MockStore) Insert(ctx context.Context, record *models.LocationRecord) error {
	m.mu.Lock()
	m.InsertCalls = append(m.InsertCalls, *record)
	err := m.InsertError
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.MemoryStore.Insert(ctx, record)
}

// FindCount returns how many times FindByIP was called
func (m *MockStore) FindCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.FindByIPCalls)
}

// InsertCount returns how many times Insert was called
func (m *MockStore) InsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.InsertCalls)
}

// Close tracks that close was called and returns the configured error if any
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return m.CloseError
}
