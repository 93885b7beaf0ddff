package mocks

import (
	"context"
	"time"

	"github.com/you/accountsvc/domain"
)

// MockSessionRepository implements domain.SessionRepository interface for testing
type MockSessionRepository struct {
	CreateFunc            func(ctx context.Context, session *domain.Session) error
	FindByIDFunc          func(ctx context.Context, sessionID string) (*domain.Session, error)
	FindByRefreshHashFunc func(ctx context.Context, hash string) (*domain.Session, error)
	FindAllActiveFunc     func(ctx context.Context, accountID uint) ([]*domain.Session, error)
	TouchFunc             func(ctx context.Context, sessionID string, at time.Time) error
	DeleteFunc            func(ctx context.Context, sessionID string) error
	DeleteAllFunc         func(ctx context.Context, accountID uint) error
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

// Create stores a new session
func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	// Default behavior: success
	return nil
}

// FindByID finds a live session by ID
func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

// FindByRefreshHash finds a live session by its refresh-token hash
func (m *MockSessionRepository) FindByRefreshHash(ctx context.Context, hash string) (*domain.Session, error) {
	if m.FindByRefreshHashFunc != nil {
		return m.FindByRefreshHashFunc(ctx, hash)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

// FindAllActive lists the live sessions of an account
func (m *MockSessionRepository) FindAllActive(ctx context.Context, accountID uint) ([]*domain.Session, error) {
	if m.FindAllActiveFunc != nil {
		return m.FindAllActiveFunc(ctx, accountID)
	}
	// Default behavior: no sessions
	return nil, nil
}

// Touch updates the session's last-active timestamp
func (m *MockSessionRepository) Touch(ctx context.Context, sessionID string, at time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, sessionID, at)
	}
	// Default behavior: success
	return nil
}

// Delete terminates one session
func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	// Default behavior: success
	return nil
}

// DeleteAll terminates every session of an account
func (m *MockSessionRepository) DeleteAll(ctx context.Context, accountID uint) error {
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx, accountID)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)
