package mocks

import (
	"context"
	"time"

	"github.com/you/accountsvc/domain"
)

// MockAccountRepository implements domain.AccountRepository interface for testing
type MockAccountRepository struct {
	CreateFunc            func(ctx context.Context, account *domain.Account) error
	FindByIDFunc          func(ctx context.Context, id uint) (*domain.Account, error)
	FindByEmailFunc       func(ctx context.Context, email string) (*domain.Account, error)
	FindByPhoneFunc       func(ctx context.Context, phone string) (*domain.Account, error)
	FindByIdentityFunc    func(ctx context.Context, provider, providerID string) (*domain.Account, error)
	UpdateFunc            func(ctx context.Context, account *domain.Account) error
	UpdateStatusFunc      func(ctx context.Context, id uint, status domain.Status) error
	UpdatePasswordFunc    func(ctx context.Context, id uint, passwordHash string) error
	LinkIdentityFunc      func(ctx context.Context, identity *domain.LinkedIdentity) error
	ListByStatusFunc      func(ctx context.Context, status domain.Status) ([]*domain.Account, error)
	RecordFailedLoginFunc func(ctx context.Context, id uint, maxAttempts int, lockFor time.Duration, now time.Time) (int, *time.Time, error)
	ResetFailedLoginsFunc func(ctx context.Context, id uint) error
	UnlockFunc            func(ctx context.Context, id uint) error
}

// NewMockAccountRepository creates a new MockAccountRepository with default behaviors
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

// Create creates a new account
func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	// Default behavior: success
	return nil
}

// FindByID finds an account by ID
func (m *MockAccountRepository) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// FindByEmail finds an account by email
func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// FindByPhone finds an account by phone number
func (m *MockAccountRepository) FindByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// FindByIdentity finds an account by a linked external identity
func (m *MockAccountRepository) FindByIdentity(ctx context.Context, provider, providerID string) (*domain.Account, error) {
	if m.FindByIdentityFunc != nil {
		return m.FindByIdentityFunc(ctx, provider, providerID)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// Update updates an existing account
func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, account)
	}
	// Default behavior: success
	return nil
}

// UpdateStatus transitions the account status
func (m *MockAccountRepository) UpdateStatus(ctx context.Context, id uint, status domain.Status) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	// Default behavior: success
	return nil
}

// UpdatePassword replaces the stored password hash
func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	// Default behavior: success
	return nil
}

// LinkIdentity binds an external identity to an account
func (m *MockAccountRepository) LinkIdentity(ctx context.Context, identity *domain.LinkedIdentity) error {
	if m.LinkIdentityFunc != nil {
		return m.LinkIdentityFunc(ctx, identity)
	}
	// Default behavior: success
	return nil
}

// ListByStatus lists accounts in a given status
func (m *MockAccountRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Account, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status)
	}
	// Default behavior: empty list
	return nil, nil
}

// RecordFailedLogin bumps the failed-login counter atomically
func (m *MockAccountRepository) RecordFailedLogin(ctx context.Context, id uint, maxAttempts int, lockFor time.Duration, now time.Time) (int, *time.Time, error) {
	if m.RecordFailedLoginFunc != nil {
		return m.RecordFailedLoginFunc(ctx, id, maxAttempts, lockFor, now)
	}
	// Default behavior: one attempt recorded, no lock
	return 1, nil, nil
}

// ResetFailedLogins clears the failed-login counter
func (m *MockAccountRepository) ResetFailedLogins(ctx context.Context, id uint) error {
	if m.ResetFailedLoginsFunc != nil {
		return m.ResetFailedLoginsFunc(ctx, id)
	}
	// Default behavior: success
	return nil
}

// Unlock transitions a locked account back to active
func (m *MockAccountRepository) Unlock(ctx context.Context, id uint) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, id)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.AccountRepository = (*MockAccountRepository)(nil)
