package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/pkg/log"
)

// OTPServiceImpl implements domain.OTPService on top of persisted
// one-time-code rows.
type OTPServiceImpl struct {
	otpRepo         domain.OTPRepository
	notificationSvc domain.NotificationService
	clock           domain.Clock
	logger          log.Logger
	config          OTPConfig
}

type OTPConfig struct {
	TTL            time.Duration
	MaxAttempts    int
	RequestCeiling int
	RequestWindow  time.Duration
}

// NewOTPService creates a new OTP service
func NewOTPService(otpRepo domain.OTPRepository, notificationSvc domain.NotificationService, clock domain.Clock, logger log.Logger, config OTPConfig) domain.OTPService {
	return &OTPServiceImpl{
		otpRepo:         otpRepo,
		notificationSvc: notificationSvc,
		clock:           clock,
		logger:          logger,
		config:          config,
	}
}

// Issue implements domain.OTPService. Each request appends a new row; the
// persisted count over the sliding window enforces the request ceiling so
// parallel requests cannot bypass it.
func (s *OTPServiceImpl) Issue(ctx context.Context, identifier string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error) {
	now := s.clock.Now()

	recent, err := s.otpRepo.CountSince(ctx, identifier, now.Add(-s.config.RequestWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent codes: %w", err)
	}
	if recent >= int64(s.config.RequestCeiling) {
		return nil, domain.RateLimitedError(s.config.RequestWindow)
	}

	value, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	code := &domain.OneTimeCode{
		Identifier:  identifier,
		Purpose:     purpose,
		Code:        value,
		MaxAttempts: s.config.MaxAttempts,
		ExpiresAt:   now.Add(s.config.TTL),
	}
	if err := s.otpRepo.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}

	// Delivery is fire-and-forget: a dispatch failure must not fail the
	// issuing operation.
	if err := s.notificationSvc.SendCode(identifier, value, purpose); err != nil {
		s.logger.Warn().Err(err).Str("identifier", identifier).Str("purpose", string(purpose)).
			Msg("code dispatch failed")
	}

	return code, nil
}

// Verify implements domain.OTPService
func (s *OTPServiceImpl) Verify(ctx context.Context, identifier string, purpose domain.OTPPurpose, submitted string) error {
	code, err := s.otpRepo.FindLatest(ctx, identifier, purpose)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if code.Expired(now) {
		return domain.ErrOTPExpired
	}

	// The ceiling check consumes no attempt; a correct code after exhaustion
	// still fails and the code is never marked verified.
	if code.Exhausted() {
		return domain.ErrOTPLocked
	}

	if code.Code != submitted {
		attempts, err := s.otpRepo.IncrementAttempts(ctx, code.ID)
		if err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}
		return domain.OTPInvalidError(code.MaxAttempts - attempts)
	}

	// MarkVerified is conditional on the code being unconsumed, so of two
	// concurrent verifications only one can succeed.
	if err := s.otpRepo.MarkVerified(ctx, code.ID, now); err != nil {
		if errors.Is(err, domain.ErrOTPExpired) {
			return domain.ErrOTPExpired
		}
		return fmt.Errorf("failed to consume code: %w", err)
	}

	return nil
}
