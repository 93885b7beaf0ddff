package mocks

import (
	"context"
	"time"

	"github.com/you/accountsvc/domain"
)

// MockAccountLifecycle implements domain.AccountLifecycle interface for testing
type MockAccountLifecycle struct {
	RegisterFunc               func(ctx context.Context, input domain.RegisterInput) (*domain.Account, error)
	VerifyRegistrationFunc     func(ctx context.Context, identifier, code string) (*domain.Account, error)
	ResendRegistrationCodeFunc func(ctx context.Context, identifier string) error
	ApproveFunc                func(ctx context.Context, accountID uint) error
	RejectFunc                 func(ctx context.Context, accountID uint, reason string) error
	DeactivateFunc             func(ctx context.Context, accountID uint) error
	ReactivateFunc             func(ctx context.Context, accountID uint) error
	ListPendingFunc            func(ctx context.Context) ([]*domain.Account, error)
	RecordFailedLoginFunc      func(ctx context.Context, accountID uint) (int, *time.Time, error)
	RecordSuccessfulLoginFunc  func(ctx context.Context, accountID uint) error
	UnlockIfExpiredFunc        func(ctx context.Context, account *domain.Account) error
}

// NewMockAccountLifecycle creates a new MockAccountLifecycle with default behaviors
func NewMockAccountLifecycle() *MockAccountLifecycle {
	return &MockAccountLifecycle{}
}

// Register creates a new account
func (m *MockAccountLifecycle) Register(ctx context.Context, input domain.RegisterInput) (*domain.Account, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	// Default behavior: pending account
	return &domain.Account{
		ID:     1,
		Email:  input.Email,
		Phone:  input.Phone,
		Role:   input.Role,
		Status: domain.StatusPending,
	}, nil
}

// VerifyRegistration activates a pending customer account
func (m *MockAccountLifecycle) VerifyRegistration(ctx context.Context, identifier, code string) (*domain.Account, error) {
	if m.VerifyRegistrationFunc != nil {
		return m.VerifyRegistrationFunc(ctx, identifier, code)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// ResendRegistrationCode issues a fresh registration code
func (m *MockAccountLifecycle) ResendRegistrationCode(ctx context.Context, identifier string) error {
	if m.ResendRegistrationCodeFunc != nil {
		return m.ResendRegistrationCodeFunc(ctx, identifier)
	}
	// Default behavior: success
	return nil
}

// Approve activates a pending account
func (m *MockAccountLifecycle) Approve(ctx context.Context, accountID uint) error {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, accountID)
	}
	// Default behavior: success
	return nil
}

// Reject declines a pending account
func (m *MockAccountLifecycle) Reject(ctx context.Context, accountID uint, reason string) error {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, accountID, reason)
	}
	// Default behavior: success
	return nil
}

// Deactivate disables an active account
func (m *MockAccountLifecycle) Deactivate(ctx context.Context, accountID uint) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, accountID)
	}
	// Default behavior: success
	return nil
}

// Reactivate restores an inactive account
func (m *MockAccountLifecycle) Reactivate(ctx context.Context, accountID uint) error {
	if m.ReactivateFunc != nil {
		return m.ReactivateFunc(ctx, accountID)
	}
	// Default behavior: success
	return nil
}

// ListPending lists accounts awaiting approval
func (m *MockAccountLifecycle) ListPending(ctx context.Context) ([]*domain.Account, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	// Default behavior: empty list
	return nil, nil
}

// RecordFailedLogin records a failed login attempt
func (m *MockAccountLifecycle) RecordFailedLogin(ctx context.Context, accountID uint) (int, *time.Time, error) {
	if m.RecordFailedLoginFunc != nil {
		return m.RecordFailedLoginFunc(ctx, accountID)
	}
	// Default behavior: attempts remain, no lock
	return 4, nil, nil
}

// RecordSuccessfulLogin clears failure tracking
func (m *MockAccountLifecycle) RecordSuccessfulLogin(ctx context.Context, accountID uint) error {
	if m.RecordSuccessfulLoginFunc != nil {
		return m.RecordSuccessfulLoginFunc(ctx, accountID)
	}
	// Default behavior: success
	return nil
}

// UnlockIfExpired clears an expired lock
func (m *MockAccountLifecycle) UnlockIfExpired(ctx context.Context, account *domain.Account) error {
	if m.UnlockIfExpiredFunc != nil {
		return m.UnlockIfExpiredFunc(ctx, account)
	}
	// Default behavior: no-op
	return nil
}

// Compile-time interface compliance verification
var _ domain.AccountLifecycle = (*MockAccountLifecycle)(nil)
