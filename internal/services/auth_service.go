package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/pkg/log"
)

// AuthServiceImpl implements domain.AuthService, coordinating the lifecycle
// engine, the OTP ledger, the token codec and the session ledger.
type AuthServiceImpl struct {
	accountRepo  domain.AccountRepository
	sessionRepo  domain.SessionRepository
	passwordSvc  domain.PasswordService
	tokenSvc     domain.TokenService
	otpSvc       domain.OTPService
	lifecycleSvc domain.AccountLifecycle
	clock        domain.Clock
	logger       log.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	accountRepo domain.AccountRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	lifecycleSvc domain.AccountLifecycle,
	clock domain.Clock,
	logger log.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		accountRepo:  accountRepo,
		sessionRepo:  sessionRepo,
		passwordSvc:  passwordSvc,
		tokenSvc:     tokenSvc,
		otpSvc:       otpSvc,
		lifecycleSvc: lifecycleSvc,
		clock:        clock,
		logger:       logger,
	}
}

// hashToken digests a refresh token for session storage; the raw token is
// never persisted.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// LoginWithPassword implements domain.AuthService. An unknown identifier
// and a wrong password both surface as invalid credentials so callers
// cannot enumerate accounts.
func (s *AuthServiceImpl) LoginWithPassword(ctx context.Context, identifier, password string, device domain.DeviceMeta) (*domain.AuthResult, error) {
	account, err := findByIdentifier(ctx, s.accountRepo, identifier)
	if err != nil {
		if domain.KindOf(err) == domain.KindAccountNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.requireLoginable(ctx, account); err != nil {
		return nil, err
	}

	if account.PasswordHash == "" || !s.passwordSvc.Verify(account.PasswordHash, password) {
		remaining, lockedUntil, err := s.lifecycleSvc.RecordFailedLogin(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		if lockedUntil != nil {
			return nil, domain.AccountLockedError(lockedUntil.Sub(s.clock.Now()))
		}
		return nil, domain.InvalidCredentialsError(remaining)
	}

	if err := s.lifecycleSvc.RecordSuccessfulLogin(ctx, account.ID); err != nil {
		return nil, err
	}

	return s.openSession(ctx, account, device, false)
}

// LoginWithOTP implements domain.AuthService
func (s *AuthServiceImpl) LoginWithOTP(ctx context.Context, identifier, code string, device domain.DeviceMeta) (*domain.AuthResult, error) {
	account, err := findByIdentifier(ctx, s.accountRepo, identifier)
	if err != nil {
		if domain.KindOf(err) == domain.KindAccountNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.requireLoginable(ctx, account); err != nil {
		return nil, err
	}

	if err := s.otpSvc.Verify(ctx, identifier, domain.PurposeLogin, code); err != nil {
		return nil, err
	}

	if err := s.lifecycleSvc.RecordSuccessfulLogin(ctx, account.ID); err != nil {
		return nil, err
	}

	return s.openSession(ctx, account, device, false)
}

// RequestLoginOTP implements domain.AuthService. An unknown identifier is
// reported as success to avoid enumeration; rate limiting still surfaces.
func (s *AuthServiceImpl) RequestLoginOTP(ctx context.Context, identifier string) error {
	account, err := findByIdentifier(ctx, s.accountRepo, identifier)
	if err != nil {
		if domain.KindOf(err) == domain.KindAccountNotFound {
			s.logger.Info().Str("identifier", identifier).Msg("login code requested for unknown identifier")
			return nil
		}
		return err
	}
	if account.Status != domain.StatusActive {
		return nil
	}

	_, err = s.otpSvc.Issue(ctx, identifier, domain.PurposeLogin)
	return err
}

// LoginWithProvider implements domain.AuthService. Resolution order: the
// provider binding, then the asserted email, then a fresh active customer
// account. Linking is idempotent for the same (provider, provider id).
func (s *AuthServiceImpl) LoginWithProvider(ctx context.Context, login domain.ProviderLogin, device domain.DeviceMeta) (*domain.AuthResult, error) {
	account, err := s.accountRepo.FindByIdentity(ctx, login.Provider, login.ProviderID)
	if err == nil {
		if err := s.requireLoginable(ctx, account); err != nil {
			return nil, err
		}
		return s.openSession(ctx, account, device, false)
	}
	if domain.KindOf(err) != domain.KindAccountNotFound {
		return nil, err
	}

	if login.Email != "" {
		account, err = s.accountRepo.FindByEmail(ctx, login.Email)
		if err == nil {
			return s.linkAndLogin(ctx, account, login, device)
		}
		if domain.KindOf(err) != domain.KindAccountNotFound {
			return nil, err
		}
	}

	// Identity-provider signups are customers and active immediately; the
	// provider already proved control of the email.
	account = &domain.Account{
		Email:     login.Email,
		Name:      login.DisplayName,
		AvatarURL: login.AvatarURL,
		Role:      domain.RoleCustomer,
		Status:    domain.StatusActive,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	if err := s.accountRepo.LinkIdentity(ctx, &domain.LinkedIdentity{
		AccountID:  account.ID,
		Provider:   login.Provider,
		ProviderID: login.ProviderID,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("account_id", account.ID).Str("provider", login.Provider).
		Msg("account created from identity provider")
	return s.openSession(ctx, account, device, true)
}

func (s *AuthServiceImpl) linkAndLogin(ctx context.Context, account *domain.Account, login domain.ProviderLogin, device domain.DeviceMeta) (*domain.AuthResult, error) {
	// An account that cannot log in must not acquire the binding either.
	if err := s.requireLoginable(ctx, account); err != nil {
		return nil, err
	}

	if existing, ok := account.IdentityFor(login.Provider); ok {
		if existing.ProviderID != login.ProviderID {
			return nil, domain.ErrAlreadyLinked
		}
		// Already linked to this exact identity; nothing to do.
	} else {
		if err := s.accountRepo.LinkIdentity(ctx, &domain.LinkedIdentity{
			AccountID:  account.ID,
			Provider:   login.Provider,
			ProviderID: login.ProviderID,
		}); err != nil {
			return nil, err
		}
	}

	return s.openSession(ctx, account, device, false)
}

// Refresh implements domain.AuthService. The refresh token and session are
// not rotated; only a new access token is minted.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.RefreshResult, error) {
	claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByRefreshHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	account, err := s.accountRepo.FindByID(ctx, claims.AccountID)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if err := s.requireLoginable(ctx, account); err != nil {
		return nil, err
	}

	accessToken, err := s.tokenSvc.MintAccessToken(account.ID, account.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}

	if err := s.sessionRepo.Touch(ctx, session.ID, s.clock.Now()); err != nil {
		return nil, err
	}

	return &domain.RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.tokenSvc.AccessTTL().Seconds()),
	}, nil
}

// Logout implements domain.AuthService
func (s *AuthServiceImpl) Logout(ctx context.Context, accountID uint, sessionID string) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.AccountID != accountID {
		return domain.ErrForbidden
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

// LogoutAll implements domain.AuthService
func (s *AuthServiceImpl) LogoutAll(ctx context.Context, accountID uint) error {
	return s.sessionRepo.DeleteAll(ctx, accountID)
}

// ActiveSessions implements domain.AuthService
func (s *AuthServiceImpl) ActiveSessions(ctx context.Context, accountID uint) ([]*domain.Session, error) {
	return s.sessionRepo.FindAllActive(ctx, accountID)
}

// RequestPasswordReset implements domain.AuthService. Always reports
// success for unknown identifiers; only throttling surfaces.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, identifier string) error {
	if _, err := findByIdentifier(ctx, s.accountRepo, identifier); err != nil {
		if domain.KindOf(err) == domain.KindAccountNotFound {
			s.logger.Info().Str("identifier", identifier).Msg("reset requested for unknown identifier")
			return nil
		}
		return err
	}

	_, err := s.otpSvc.Issue(ctx, identifier, domain.PurposePasswordReset)
	return err
}

// ResetPassword implements domain.AuthService. A successful reset
// invalidates every session of the account.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, identifier, code, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	if err := s.otpSvc.Verify(ctx, identifier, domain.PurposePasswordReset, code); err != nil {
		return err
	}

	account, err := findByIdentifier(ctx, s.accountRepo, identifier)
	if err != nil {
		return err
	}

	hashed, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accountRepo.UpdatePassword(ctx, account.ID, hashed); err != nil {
		return err
	}

	if err := s.sessionRepo.DeleteAll(ctx, account.ID); err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}

	s.logger.Info().Uint("account_id", account.ID).Msg("password reset")
	return nil
}

// ChangePassword implements domain.AuthService. A successful change
// invalidates every session of the account.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, accountID uint, currentPassword, newPassword string) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.PasswordHash == "" || !s.passwordSvc.Verify(account.PasswordHash, currentPassword) {
		return domain.ErrInvalidCredentials
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accountRepo.UpdatePassword(ctx, accountID, hashed); err != nil {
		return err
	}

	if err := s.sessionRepo.DeleteAll(ctx, accountID); err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}

	s.logger.Info().Uint("account_id", accountID).Msg("password changed")
	return nil
}

// Profile implements domain.AuthService
func (s *AuthServiceImpl) Profile(ctx context.Context, accountID uint) (*domain.Account, error) {
	return s.accountRepo.FindByID(ctx, accountID)
}

// requireLoginable clears an expired lock, then rejects any status other
// than active with a status-specific failure.
func (s *AuthServiceImpl) requireLoginable(ctx context.Context, account *domain.Account) error {
	if err := s.lifecycleSvc.UnlockIfExpired(ctx, account); err != nil {
		return err
	}

	switch account.Status {
	case domain.StatusActive:
		return nil
	case domain.StatusPending:
		return domain.ErrAccountPending
	case domain.StatusInactive:
		return domain.ErrAccountInactive
	case domain.StatusLocked:
		if account.LockedUntil != nil {
			return domain.AccountLockedError(account.LockedUntil.Sub(s.clock.Now()))
		}
		return domain.ErrAccountLocked
	default:
		return domain.ErrForbidden
	}
}

func (s *AuthServiceImpl) openSession(ctx context.Context, account *domain.Account, device domain.DeviceMeta, isNew bool) (*domain.AuthResult, error) {
	sessionID := uuid.NewString()

	accessToken, err := s.tokenSvc.MintAccessToken(account.ID, account.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}
	refreshToken, err := s.tokenSvc.MintRefreshToken(account.ID, account.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint refresh token: %w", err)
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:           sessionID,
		AccountID:    account.ID,
		RefreshHash:  hashToken(refreshToken),
		DeviceType:   device.Type,
		DeviceName:   device.Name,
		IP:           device.IP,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(s.tokenSvc.RefreshTTL()),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &domain.AuthResult{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sessionID,
		ExpiresIn:    int64(s.tokenSvc.AccessTTL().Seconds()),
		IsNewAccount: isNew,
	}, nil
}
