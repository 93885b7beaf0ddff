package mocks

import (
	"time"

	"github.com/you/accountsvc/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	MintAccessTokenFunc      func(accountID uint, role domain.Role, sessionID string) (string, error)
	MintRefreshTokenFunc     func(accountID uint, role domain.Role, sessionID string) (string, error)
	ValidateAccessTokenFunc  func(token string) (*domain.TokenClaims, error)
	ValidateRefreshTokenFunc func(token string) (*domain.TokenClaims, error)
	ExpiryOfFunc             func(token string) (time.Time, error)
	AccessTTLFunc            func() time.Duration
	RefreshTTLFunc           func() time.Duration
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// MintAccessToken mints an access token
func (m *MockTokenService) MintAccessToken(accountID uint, role domain.Role, sessionID string) (string, error) {
	if m.MintAccessTokenFunc != nil {
		return m.MintAccessTokenFunc(accountID, role, sessionID)
	}
	// Default behavior: stub token
	return "access_token_" + sessionID, nil
}

// MintRefreshToken mints a refresh token
func (m *MockTokenService) MintRefreshToken(accountID uint, role domain.Role, sessionID string) (string, error) {
	if m.MintRefreshTokenFunc != nil {
		return m.MintRefreshTokenFunc(accountID, role, sessionID)
	}
	// Default behavior: stub token
	return "refresh_token_" + sessionID, nil
}

// ValidateAccessToken validates an access token
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	// Default behavior: invalid
	return nil, domain.ErrTokenInvalid
}

// ValidateRefreshToken validates a refresh token
func (m *MockTokenService) ValidateRefreshToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateRefreshTokenFunc != nil {
		return m.ValidateRefreshTokenFunc(token)
	}
	// Default behavior: invalid
	return nil, domain.ErrTokenInvalid
}

// ExpiryOf extracts the expiry claim
func (m *MockTokenService) ExpiryOf(token string) (time.Time, error) {
	if m.ExpiryOfFunc != nil {
		return m.ExpiryOfFunc(token)
	}
	// Default behavior: an hour out
	return time.Now().Add(time.Hour), nil
}

// AccessTTL returns the access token lifetime
func (m *MockTokenService) AccessTTL() time.Duration {
	if m.AccessTTLFunc != nil {
		return m.AccessTTLFunc()
	}
	return 15 * time.Minute
}

// RefreshTTL returns the refresh token lifetime
func (m *MockTokenService) RefreshTTL() time.Duration {
	if m.RefreshTTLFunc != nil {
		return m.RefreshTTLFunc()
	}
	return 720 * time.Hour
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
