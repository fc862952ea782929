package resolver

import (
	"context"
	"sync"

	"github.com/evyataryagoni/iplocator/internal/models"
)

// MockResolver is a test double for the Resolver interface
type MockResolver struct {
	mu sync.Mutex

	// Responses maps IP -> resolution; IPs not listed get Default
	Responses map[string]models.Resolution
	Default   models.Resolution

	// Gate, when set, blocks every Resolve until it is closed
	Gate chan struct{}

	// Track method calls for verification in tests
	ResolveCalls []string
	CloseCalled  bool
}

// NewMockResolver creates a mock that answers location for every IP
func NewMockResolver(location string) *MockResolver {
	return &MockResolver{
		Responses:    map[string]models.Resolution{},
		Default:      models.Resolution{Location: location},
		ResolveCalls: []string{},
	}
}

// NewFailingMockResolver creates a mock that falls back with err for every IP
func NewFailingMockResolver(err error) *MockResolver {
	return &MockResolver{
		Responses:    map[string]models.Resolution{},
		Default:      models.Fallen(err),
		ResolveCalls: []string{},
	}
}

func (m *MockResolver) Name() string {
	return "mock"
}

// Resolve records the call and returns the configured resolution
func (m *MockResolver) Resolve(ctx context.Context, ip string) models.Resolution {
	m.mu.Lock()
	m.ResolveCalls = append(m.ResolveCalls, ip)
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.Fallen(ctx.Err())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if res, ok := m.Responses[ip]; ok {
		return res
	}
	return m.Default
}

// CallCount returns how many times Resolve was called
func (m *MockResolver) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ResolveCalls)
}

// Close tracks that close was called
func (m *MockResolver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}
