package mocks

import (
	"context"
	"time"

	"github.com/you/accountsvc/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc  func(ctx context.Context, identifier string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error)
	VerifyFunc func(ctx context.Context, identifier string, purpose domain.OTPPurpose, code string) error
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue creates and delivers a new one-time code
func (m *MockOTPService) Issue(ctx context.Context, identifier string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, identifier, purpose)
	}
	// Default behavior: stub code
	return &domain.OneTimeCode{
		Identifier:  identifier,
		Purpose:     purpose,
		Code:        "123456",
		MaxAttempts: 5,
		ExpiresAt:   time.Now().Add(5 * time.Minute),
	}, nil
}

// Verify checks a submitted code
func (m *MockOTPService) Verify(ctx context.Context, identifier string, purpose domain.OTPPurpose, code string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, identifier, purpose, code)
	}
	// Default behavior: accept the stub code only
	if code == "123456" {
		return nil
	}
	return domain.ErrOTPInvalid
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
