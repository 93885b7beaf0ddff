package mocks

import (
	"context"

	"github.com/you/accountsvc/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	LoginWithPasswordFunc    func(ctx context.Context, identifier, password string, device domain.DeviceMeta) (*domain.AuthResult, error)
	LoginWithOTPFunc         func(ctx context.Context, identifier, code string, device domain.DeviceMeta) (*domain.AuthResult, error)
	LoginWithProviderFunc    func(ctx context.Context, login domain.ProviderLogin, device domain.DeviceMeta) (*domain.AuthResult, error)
	RequestLoginOTPFunc      func(ctx context.Context, identifier string) error
	RefreshFunc              func(ctx context.Context, refreshToken string) (*domain.RefreshResult, error)
	LogoutFunc               func(ctx context.Context, accountID uint, sessionID string) error
	LogoutAllFunc            func(ctx context.Context, accountID uint) error
	ActiveSessionsFunc       func(ctx context.Context, accountID uint) ([]*domain.Session, error)
	RequestPasswordResetFunc func(ctx context.Context, identifier string) error
	ResetPasswordFunc        func(ctx context.Context, identifier, code, newPassword string) error
	ChangePasswordFunc       func(ctx context.Context, accountID uint, currentPassword, newPassword string) error
	ProfileFunc              func(ctx context.Context, accountID uint) (*domain.Account, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func defaultAuthResult() *domain.AuthResult {
	return &domain.AuthResult{
		Account: &domain.Account{
			ID:     1,
			Email:  "customer@example.com",
			Role:   domain.RoleCustomer,
			Status: domain.StatusActive,
		},
		AccessToken:  "access_token",
		RefreshToken: "refresh_token",
		SessionID:    "sess-1",
		ExpiresIn:    900,
	}
}

// LoginWithPassword authenticates with an identifier and password
func (m *MockAuthService) LoginWithPassword(ctx context.Context, identifier, password string, device domain.DeviceMeta) (*domain.AuthResult, error) {
	if m.LoginWithPasswordFunc != nil {
		return m.LoginWithPasswordFunc(ctx, identifier, password, device)
	}
	return defaultAuthResult(), nil
}

// LoginWithOTP authenticates with an identifier and one-time code
func (m *MockAuthService) LoginWithOTP(ctx context.Context, identifier, code string, device domain.DeviceMeta) (*domain.AuthResult, error) {
	if m.LoginWithOTPFunc != nil {
		return m.LoginWithOTPFunc(ctx, identifier, code, device)
	}
	return defaultAuthResult(), nil
}

// LoginWithProvider authenticates with an identity-provider assertion
func (m *MockAuthService) LoginWithProvider(ctx context.Context, login domain.ProviderLogin, device domain.DeviceMeta) (*domain.AuthResult, error) {
	if m.LoginWithProviderFunc != nil {
		return m.LoginWithProviderFunc(ctx, login, device)
	}
	return defaultAuthResult(), nil
}

// RequestLoginOTP requests a login code
func (m *MockAuthService) RequestLoginOTP(ctx context.Context, identifier string) error {
	if m.RequestLoginOTPFunc != nil {
		return m.RequestLoginOTPFunc(ctx, identifier)
	}
	return nil
}

// Refresh mints a new access token from a refresh token
func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.RefreshResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return &domain.RefreshResult{AccessToken: "new_access_token", ExpiresIn: 900}, nil
}

// Logout terminates one session
func (m *MockAuthService) Logout(ctx context.Context, accountID uint, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, accountID, sessionID)
	}
	return nil
}

// LogoutAll terminates every session
func (m *MockAuthService) LogoutAll(ctx context.Context, accountID uint) error {
	if m.LogoutAllFunc != nil {
		return m.LogoutAllFunc(ctx, accountID)
	}
	return nil
}

// ActiveSessions lists live sessions
func (m *MockAuthService) ActiveSessions(ctx context.Context, accountID uint) ([]*domain.Session, error) {
	if m.ActiveSessionsFunc != nil {
		return m.ActiveSessionsFunc(ctx, accountID)
	}
	return nil, nil
}

// RequestPasswordReset requests a reset code
func (m *MockAuthService) RequestPasswordReset(ctx context.Context, identifier string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, identifier)
	}
	return nil
}

// ResetPassword resets a password via code
func (m *MockAuthService) ResetPassword(ctx context.Context, identifier, code, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, identifier, code, newPassword)
	}
	return nil
}

// ChangePassword changes the password of an authenticated account
func (m *MockAuthService) ChangePassword(ctx context.Context, accountID uint, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, accountID, currentPassword, newPassword)
	}
	return nil
}

// Profile returns the account record
func (m *MockAuthService) Profile(ctx context.Context, accountID uint) (*domain.Account, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, accountID)
	}
	return nil, domain.ErrAccountNotFound
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
