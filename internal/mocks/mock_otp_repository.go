package mocks

import (
	"context"
	"time"

	"github.com/you/accountsvc/domain"
)

// MockOTPRepository implements domain.OTPRepository interface for testing
type MockOTPRepository struct {
	CreateFunc            func(ctx context.Context, code *domain.OneTimeCode) error
	FindLatestFunc        func(ctx context.Context, identifier string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error)
	IncrementAttemptsFunc func(ctx context.Context, id uint) (int, error)
	MarkVerifiedFunc      func(ctx context.Context, id uint, at time.Time) error
	CountSinceFunc        func(ctx context.Context, identifier string, since time.Time) (int64, error)
}

// NewMockOTPRepository creates a new MockOTPRepository with default behaviors
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

// Create stores a new one-time code
func (m *MockOTPRepository) Create(ctx context.Context, code *domain.OneTimeCode) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, code)
	}
	// Default behavior: success
	return nil
}

// FindLatest returns the freshest unconsumed code for the identifier
func (m *MockOTPRepository) FindLatest(ctx context.Context, identifier string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error) {
	if m.FindLatestFunc != nil {
		return m.FindLatestFunc(ctx, identifier, purpose)
	}
	// Default behavior: nothing outstanding
	return nil, domain.ErrOTPExpired
}

// IncrementAttempts bumps the attempt counter
func (m *MockOTPRepository) IncrementAttempts(ctx context.Context, id uint) (int, error) {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, id)
	}
	// Default behavior: first attempt
	return 1, nil
}

// MarkVerified consumes the code
func (m *MockOTPRepository) MarkVerified(ctx context.Context, id uint, at time.Time) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, id, at)
	}
	// Default behavior: success
	return nil
}

// CountSince counts recently issued codes for rate limiting
func (m *MockOTPRepository) CountSince(ctx context.Context, identifier string, since time.Time) (int64, error) {
	if m.CountSinceFunc != nil {
		return m.CountSinceFunc(ctx, identifier, since)
	}
	// Default behavior: none issued
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.OTPRepository = (*MockOTPRepository)(nil)
