package mocks

import (
	"time"

	"github.com/you/accountsvc/domain"
)

// MockClock implements domain.Clock with a controllable instant
type MockClock struct {
	Current time.Time
}

// NewMockClock creates a clock frozen at the given instant
func NewMockClock(at time.Time) *MockClock {
	return &MockClock{Current: at}
}

// Now returns the frozen instant
func (m *MockClock) Now() time.Time {
	return m.Current
}

// Advance moves the clock forward
func (m *MockClock) Advance(d time.Duration) {
	m.Current = m.Current.Add(d)
}

// Compile-time interface compliance verification
var _ domain.Clock = (*MockClock)(nil)
