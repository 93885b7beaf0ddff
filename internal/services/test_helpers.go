package services

import (
	"testing"
	"time"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/mocks"
	"github.com/you/accountsvc/pkg/log"
)

// testBase is the frozen instant every service test runs at.
var testBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testOTPConfig() OTPConfig {
	return OTPConfig{
		TTL:            5 * time.Minute,
		MaxAttempts:    5,
		RequestCeiling: 3,
		RequestWindow:  time.Hour,
	}
}

func testLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts: 5,
		Duration:    15 * time.Minute,
	}
}

// newOTPServiceForTest wires an OTP service with mock dependencies
func newOTPServiceForTest(t *testing.T, otpRepo domain.OTPRepository, notificationSvc domain.NotificationService, clock domain.Clock) domain.OTPService {
	t.Helper()

	if otpRepo == nil {
		otpRepo = mocks.NewMockOTPRepository()
	}
	if notificationSvc == nil {
		notificationSvc = mocks.NewMockNotificationService()
	}
	if clock == nil {
		clock = mocks.NewMockClock(testBase)
	}
	return NewOTPService(otpRepo, notificationSvc, clock, log.Nop(), testOTPConfig())
}

// newLifecycleForTest wires a lifecycle service with mock dependencies
func newLifecycleForTest(t *testing.T,
	accountRepo domain.AccountRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	otpSvc domain.OTPService,
	clock domain.Clock) domain.AccountLifecycle {
	t.Helper()

	if accountRepo == nil {
		accountRepo = mocks.NewMockAccountRepository()
	}
	if sessionRepo == nil {
		sessionRepo = mocks.NewMockSessionRepository()
	}
	if passwordSvc == nil {
		passwordSvc = mocks.NewMockPasswordService()
	}
	if otpSvc == nil {
		otpSvc = mocks.NewMockOTPService()
	}
	if clock == nil {
		clock = mocks.NewMockClock(testBase)
	}
	return NewLifecycleService(accountRepo, sessionRepo, passwordSvc, otpSvc, clock, log.Nop(), testLockoutConfig())
}

// newAuthServiceForTest wires an auth service with mock dependencies
func newAuthServiceForTest(t *testing.T,
	accountRepo domain.AccountRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	lifecycleSvc domain.AccountLifecycle,
	clock domain.Clock) domain.AuthService {
	t.Helper()

	if accountRepo == nil {
		accountRepo = mocks.NewMockAccountRepository()
	}
	if sessionRepo == nil {
		sessionRepo = mocks.NewMockSessionRepository()
	}
	if passwordSvc == nil {
		passwordSvc = mocks.NewMockPasswordService()
	}
	if tokenSvc == nil {
		tokenSvc = mocks.NewMockTokenService()
	}
	if otpSvc == nil {
		otpSvc = mocks.NewMockOTPService()
	}
	if lifecycleSvc == nil {
		lifecycleSvc = mocks.NewMockAccountLifecycle()
	}
	if clock == nil {
		clock = mocks.NewMockClock(testBase)
	}
	return NewAuthService(accountRepo, sessionRepo, passwordSvc, tokenSvc, otpSvc, lifecycleSvc, clock, log.Nop())
}

// activeCustomer returns an active customer account for testing
func activeCustomer(t *testing.T) *domain.Account {
	t.Helper()

	return &domain.Account{
		ID:           1,
		Email:        "customer@example.com",
		Phone:        "+5511999999999",
		PasswordHash: "hashed_Password1",
		Role:         domain.RoleCustomer,
		Status:       domain.StatusActive,
	}
}
