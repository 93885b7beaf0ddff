package mocks

import "github.com/you/accountsvc/domain"

// MockNotificationService implements domain.NotificationService interface for testing
type MockNotificationService struct {
	SendCodeFunc func(identifier, code string, purpose domain.OTPPurpose) error

	// SentCodes records every delivery when no SendCodeFunc is set
	SentCodes []SentCode
}

// SentCode is one recorded delivery
type SentCode struct {
	Identifier string
	Code       string
	Purpose    domain.OTPPurpose
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendCode delivers a one-time code
func (m *MockNotificationService) SendCode(identifier, code string, purpose domain.OTPPurpose) error {
	if m.SendCodeFunc != nil {
		return m.SendCodeFunc(identifier, code, purpose)
	}
	// Default behavior: record and succeed
	m.SentCodes = append(m.SentCodes, SentCode{Identifier: identifier, Code: code, Purpose: purpose})
	return nil
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
