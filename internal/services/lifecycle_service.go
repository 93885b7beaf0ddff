package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/pkg/log"
)

// LifecycleServiceImpl implements domain.AccountLifecycle, the account
// state machine: pending -> active -> {locked <-> active} -> inactive.
type LifecycleServiceImpl struct {
	accountRepo domain.AccountRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	otpSvc      domain.OTPService
	clock       domain.Clock
	logger      log.Logger
	config      LockoutConfig
}

type LockoutConfig struct {
	MaxAttempts int
	Duration    time.Duration
}

// NewLifecycleService creates a new account lifecycle service
func NewLifecycleService(
	accountRepo domain.AccountRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	otpSvc domain.OTPService,
	clock domain.Clock,
	logger log.Logger,
	config LockoutConfig,
) domain.AccountLifecycle {
	return &LifecycleServiceImpl{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		otpSvc:      otpSvc,
		clock:       clock,
		logger:      logger,
		config:      config,
	}
}

// Register implements domain.AccountLifecycle. Partner and shipper accounts
// stay pending until an administrator approves them; customers stay pending
// until they verify the registration code sent to their identifier.
func (s *LifecycleServiceImpl) Register(ctx context.Context, input domain.RegisterInput) (*domain.Account, error) {
	if err := s.validateRegisterInput(input); err != nil {
		return nil, err
	}

	if err := s.ensureIdentifiersFree(ctx, input.Email, input.Phone); err != nil {
		return nil, err
	}

	hashed, err := s.passwordSvc.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hashed,
		Name:         input.Name,
		Role:         input.Role,
		Status:       domain.StatusPending,
		Profile:      input.Profile,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if input.Role == domain.RoleCustomer {
		if _, err := s.otpSvc.Issue(ctx, registrationIdentifier(account), domain.PurposeRegistration); err != nil {
			return nil, fmt.Errorf("failed to issue registration code: %w", err)
		}
	}

	s.logger.Info().Uint("account_id", account.ID).Str("role", string(account.Role)).
		Msg("account registered")
	return account, nil
}

// VerifyRegistration implements domain.AccountLifecycle
func (s *LifecycleServiceImpl) VerifyRegistration(ctx context.Context, identifier, code string) (*domain.Account, error) {
	if err := s.otpSvc.Verify(ctx, identifier, domain.PurposeRegistration, code); err != nil {
		return nil, err
	}

	account, err := findByIdentifier(ctx, s.accountRepo, identifier)
	if err != nil {
		return nil, err
	}

	// Only customers activate through code verification; restricted roles
	// wait for an administrator.
	if account.Role == domain.RoleCustomer && account.Status == domain.StatusPending {
		if err := s.accountRepo.UpdateStatus(ctx, account.ID, domain.StatusActive); err != nil {
			return nil, err
		}
		account.Status = domain.StatusActive
	}

	return account, nil
}

// ResendRegistrationCode implements domain.AccountLifecycle. Only pending
// customers ever hold a registration code, so every other case returns
// success without issuing anything.
func (s *LifecycleServiceImpl) ResendRegistrationCode(ctx context.Context, identifier string) error {
	account, err := findByIdentifier(ctx, s.accountRepo, identifier)
	if err != nil {
		if domain.KindOf(err) == domain.KindAccountNotFound {
			s.logger.Info().Str("identifier", identifier).Msg("registration code requested for unknown identifier")
			return nil
		}
		return err
	}
	if account.Role != domain.RoleCustomer || account.Status != domain.StatusPending {
		return nil
	}

	_, err = s.otpSvc.Issue(ctx, registrationIdentifier(account), domain.PurposeRegistration)
	return err
}

// Approve implements domain.AccountLifecycle
func (s *LifecycleServiceImpl) Approve(ctx context.Context, accountID uint) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.Role.RequiresApproval() {
		return domain.ErrForbidden
	}
	if account.Status != domain.StatusPending {
		return domain.InvalidStateError(account.Status, "approve")
	}

	if err := s.accountRepo.UpdateStatus(ctx, accountID, domain.StatusActive); err != nil {
		return err
	}
	s.logger.Info().Uint("account_id", accountID).Msg("account approved")
	return nil
}

// Reject implements domain.AccountLifecycle
func (s *LifecycleServiceImpl) Reject(ctx context.Context, accountID uint, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.ValidationError([]string{"rejection reason is required"})
	}

	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status != domain.StatusPending {
		return domain.InvalidStateError(account.Status, "reject")
	}

	if err := s.accountRepo.UpdateStatus(ctx, accountID, domain.StatusInactive); err != nil {
		return err
	}
	s.logger.Info().Uint("account_id", accountID).Str("reason", reason).
		Msg("account rejected")
	return nil
}

// Deactivate implements domain.AccountLifecycle. Deactivation invalidates
// every session of the account.
func (s *LifecycleServiceImpl) Deactivate(ctx context.Context, accountID uint) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Role == domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if account.Status != domain.StatusActive {
		return domain.InvalidStateError(account.Status, "deactivate")
	}

	if err := s.accountRepo.UpdateStatus(ctx, accountID, domain.StatusInactive); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteAll(ctx, accountID); err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}
	s.logger.Info().Uint("account_id", accountID).Msg("account deactivated")
	return nil
}

// Reactivate implements domain.AccountLifecycle
func (s *LifecycleServiceImpl) Reactivate(ctx context.Context, accountID uint) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status != domain.StatusInactive {
		return domain.InvalidStateError(account.Status, "reactivate")
	}
	return s.accountRepo.UpdateStatus(ctx, accountID, domain.StatusActive)
}

// ListPending implements domain.AccountLifecycle
func (s *LifecycleServiceImpl) ListPending(ctx context.Context) ([]*domain.Account, error) {
	return s.accountRepo.ListByStatus(ctx, domain.StatusPending)
}

// RecordFailedLogin implements domain.AccountLifecycle
func (s *LifecycleServiceImpl) RecordFailedLogin(ctx context.Context, accountID uint) (int, *time.Time, error) {
	attempts, lockedUntil, err := s.accountRepo.RecordFailedLogin(
		ctx, accountID, s.config.MaxAttempts, s.config.Duration, s.clock.Now())
	if err != nil {
		return 0, nil, err
	}
	if lockedUntil != nil {
		s.logger.Warn().Uint("account_id", accountID).Time("locked_until", *lockedUntil).
			Msg("account locked after repeated failures")
		return 0, lockedUntil, nil
	}
	return s.config.MaxAttempts - attempts, nil, nil
}

// RecordSuccessfulLogin implements domain.AccountLifecycle
func (s *LifecycleServiceImpl) RecordSuccessfulLogin(ctx context.Context, accountID uint) error {
	return s.accountRepo.ResetFailedLogins(ctx, accountID)
}

// UnlockIfExpired implements domain.AccountLifecycle
func (s *LifecycleServiceImpl) UnlockIfExpired(ctx context.Context, account *domain.Account) error {
	if !account.LockExpired(s.clock.Now()) {
		return nil
	}
	if err := s.accountRepo.Unlock(ctx, account.ID); err != nil {
		return err
	}
	account.Status = domain.StatusActive
	account.LockedUntil = nil
	account.FailedLogins = 0
	return nil
}

func (s *LifecycleServiceImpl) validateRegisterInput(input domain.RegisterInput) error {
	var violations []string

	if !input.Role.Valid() || input.Role == domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if input.Email == "" && input.Phone == "" {
		violations = append(violations, "an email or phone is required")
	}
	if input.Role.RequiresApproval() {
		if input.Profile == nil {
			violations = append(violations, fmt.Sprintf("a %s profile is required", input.Role))
		} else if input.Profile.ProfileRole() != input.Role {
			violations = append(violations, "profile does not match role")
		}
	} else if input.Profile != nil {
		violations = append(violations, "profile is not allowed for this role")
	}
	if len(violations) > 0 {
		return domain.ValidationError(violations)
	}

	return ValidatePassword(input.Password)
}

func (s *LifecycleServiceImpl) ensureIdentifiersFree(ctx context.Context, email, phone string) error {
	if email != "" {
		if _, err := s.accountRepo.FindByEmail(ctx, email); err == nil {
			return domain.ErrDuplicateIdentifier
		} else if domain.KindOf(err) != domain.KindAccountNotFound {
			return err
		}
	}
	if phone != "" {
		if _, err := s.accountRepo.FindByPhone(ctx, phone); err == nil {
			return domain.ErrDuplicateIdentifier
		} else if domain.KindOf(err) != domain.KindAccountNotFound {
			return err
		}
	}
	return nil
}

// registrationIdentifier picks where the registration code goes: the phone
// when present, otherwise the email.
func registrationIdentifier(account *domain.Account) string {
	if account.Phone != "" {
		return account.Phone
	}
	return account.Email
}

// findByIdentifier resolves an account by email or phone depending on the
// identifier's shape.
func findByIdentifier(ctx context.Context, repo domain.AccountRepository, identifier string) (*domain.Account, error) {
	if strings.Contains(identifier, "@") {
		return repo.FindByEmail(ctx, identifier)
	}
	return repo.FindByPhone(ctx, identifier)
}
