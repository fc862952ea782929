package limiter

import "sync"

// MockLimiter answers every Allow with AllowResult and records the keys it saw
type MockLimiter struct {
	mu sync.Mutex

	AllowResult bool
	CloseError  error

	AllowCalls  []string
	CloseCalled bool
}

// NewMockLimiter creates a mock that always allows or always denies
func NewMockLimiter(allowResult bool) *MockLimiter {
	return &MockLimiter{AllowResult: allowResult}
}

func (m *MockLimiter) Allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AllowCalls = append(m.AllowCalls, key)
	return m.AllowResult
}

// Keys returns a copy of the keys passed to Allow, safe to read while requests are in flight
func (m *MockLimiter) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.AllowCalls...)
}

func (m *MockLimiter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return m.CloseError
}
