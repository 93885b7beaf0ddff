package services

import (
	"context"
	"testing"
	"time"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/mocks"
)

func TestAuthServiceImpl_LoginWithPassword(t *testing.T) {
	tests := []struct {
		name         string
		identifier   string
		password     string
		setupMocks   func(*mocks.MockAccountRepository, *mocks.MockAccountLifecycle)
		expectedKind domain.Kind
	}{
		{
			name:       "successful login",
			identifier: "customer@example.com",
			password:   "Password1",
			setupMocks: func(repo *mocks.MockAccountRepository, lc *mocks.MockAccountLifecycle) {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return activeCustomer(t), nil
				}
			},
		},
		{
			name:       "unknown identifier is masked",
			identifier: "ghost@example.com",
			password:   "Password1",
			setupMocks: func(repo *mocks.MockAccountRepository, lc *mocks.MockAccountLifecycle) {
				lc.RecordFailedLoginFunc = func(ctx context.Context, accountID uint) (int, *time.Time, error) {
					t.Fatal("unknown identifiers must not touch failure tracking")
					return 0, nil, nil
				}
			},
			expectedKind: domain.KindInvalidCredentials,
		},
		{
			name:       "wrong password burns an attempt",
			identifier: "customer@example.com",
			password:   "nope",
			setupMocks: func(repo *mocks.MockAccountRepository, lc *mocks.MockAccountLifecycle) {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return activeCustomer(t), nil
				}
				lc.RecordFailedLoginFunc = func(ctx context.Context, accountID uint) (int, *time.Time, error) {
					return 3, nil, nil
				}
			},
			expectedKind: domain.KindInvalidCredentials,
		},
		{
			name:       "fifth wrong password locks the account",
			identifier: "customer@example.com",
			password:   "nope",
			setupMocks: func(repo *mocks.MockAccountRepository, lc *mocks.MockAccountLifecycle) {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return activeCustomer(t), nil
				}
				lc.RecordFailedLoginFunc = func(ctx context.Context, accountID uint) (int, *time.Time, error) {
					until := testBase.Add(15 * time.Minute)
					return 0, &until, nil
				}
			},
			expectedKind: domain.KindAccountLocked,
		},
		{
			name:       "pending account cannot log in",
			identifier: "customer@example.com",
			password:   "Password1",
			setupMocks: func(repo *mocks.MockAccountRepository, lc *mocks.MockAccountLifecycle) {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					a := activeCustomer(t)
					a.Status = domain.StatusPending
					return a, nil
				}
			},
			expectedKind: domain.KindAccountPending,
		},
		{
			name:       "inactive account cannot log in",
			identifier: "customer@example.com",
			password:   "Password1",
			setupMocks: func(repo *mocks.MockAccountRepository, lc *mocks.MockAccountLifecycle) {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					a := activeCustomer(t)
					a.Status = domain.StatusInactive
					return a, nil
				}
			},
			expectedKind: domain.KindAccountInactive,
		},
		{
			name:       "locked account reports retry window even for correct password",
			identifier: "customer@example.com",
			password:   "Password1",
			setupMocks: func(repo *mocks.MockAccountRepository, lc *mocks.MockAccountLifecycle) {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					a := activeCustomer(t)
					a.Status = domain.StatusLocked
					until := testBase.Add(10 * time.Minute)
					a.LockedUntil = &until
					return a, nil
				}
			},
			expectedKind: domain.KindAccountLocked,
		},
		{
			name:       "provider-only account has no usable password",
			identifier: "customer@example.com",
			password:   "anything",
			setupMocks: func(repo *mocks.MockAccountRepository, lc *mocks.MockAccountLifecycle) {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					a := activeCustomer(t)
					a.PasswordHash = ""
					return a, nil
				}
				lc.RecordFailedLoginFunc = func(ctx context.Context, accountID uint) (int, *time.Time, error) {
					return 4, nil, nil
				}
			},
			expectedKind: domain.KindInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository()
			lc := mocks.NewMockAccountLifecycle()
			tt.setupMocks(repo, lc)

			svc := newAuthServiceForTest(t, repo, nil, nil, nil, nil, lc, nil)
			result, err := svc.LoginWithPassword(context.Background(), tt.identifier, tt.password, domain.DeviceMeta{Type: "web"})

			if tt.expectedKind != "" {
				if domain.KindOf(err) != tt.expectedKind {
					t.Fatalf("expected kind %s, got %v", tt.expectedKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.AccessToken == "" || result.RefreshToken == "" {
				t.Error("expected a token pair")
			}
			if result.SessionID == "" {
				t.Error("expected a session id")
			}
		})
	}
}

// A lock whose window has passed must clear on the next login attempt.
func TestAuthServiceImpl_LoginWithPassword_ExpiredLock(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	past := testBase.Add(-time.Minute)
	account := activeCustomer(t)
	account.Status = domain.StatusLocked
	account.LockedUntil = &past
	repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
		return account, nil
	}

	lc := mocks.NewMockAccountLifecycle()
	lc.UnlockIfExpiredFunc = func(ctx context.Context, a *domain.Account) error {
		if a.LockExpired(testBase) {
			a.Status = domain.StatusActive
			a.LockedUntil = nil
		}
		return nil
	}

	svc := newAuthServiceForTest(t, repo, nil, nil, nil, nil, lc, nil)
	result, err := svc.LoginWithPassword(context.Background(), "customer@example.com", "Password1", domain.DeviceMeta{})
	if err != nil {
		t.Fatalf("expected login to succeed after lock expiry, got %v", err)
	}
	if result.Account.Status != domain.StatusActive {
		t.Errorf("expected account active, got %s", result.Account.Status)
	}
}

func TestAuthServiceImpl_LoginWithOTP(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	repo.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.Account, error) {
		return activeCustomer(t), nil
	}

	otpSvc := mocks.NewMockOTPService()
	otpSvc.VerifyFunc = func(ctx context.Context, identifier string, purpose domain.OTPPurpose, code string) error {
		if purpose != domain.PurposeLogin {
			t.Errorf("expected login purpose, got %s", purpose)
		}
		if code != "654321" {
			return domain.OTPInvalidError(4)
		}
		return nil
	}

	svc := newAuthServiceForTest(t, repo, nil, nil, nil, otpSvc, nil, nil)
	ctx := context.Background()

	if _, err := svc.LoginWithOTP(ctx, "+5511999999999", "000000", domain.DeviceMeta{}); domain.KindOf(err) != domain.KindOTPInvalid {
		t.Fatalf("expected otp_invalid, got %v", err)
	}

	result, err := svc.LoginWithOTP(ctx, "+5511999999999", "654321", domain.DeviceMeta{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.AccessToken == "" {
		t.Error("expected an access token")
	}
}

func TestAuthServiceImpl_RequestLoginOTP(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(*mocks.MockAccountRepository, *mocks.MockOTPService)
		expectIssue bool
	}{
		{
			name: "active account gets a code",
			setupMocks: func(repo *mocks.MockAccountRepository, otpSvc *mocks.MockOTPService) {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					return activeCustomer(t), nil
				}
			},
			expectIssue: true,
		},
		{
			name:       "unknown identifier reports success silently",
			setupMocks: func(repo *mocks.MockAccountRepository, otpSvc *mocks.MockOTPService) {},
		},
		{
			name: "non-active account reports success silently",
			setupMocks: func(repo *mocks.MockAccountRepository, otpSvc *mocks.MockOTPService) {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
					a := activeCustomer(t)
					a.Status = domain.StatusInactive
					return a, nil
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository()
			otpSvc := mocks.NewMockOTPService()
			var issued bool
			otpSvc.IssueFunc = func(ctx context.Context, identifier string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error) {
				issued = true
				return &domain.OneTimeCode{}, nil
			}
			tt.setupMocks(repo, otpSvc)

			svc := newAuthServiceForTest(t, repo, nil, nil, nil, otpSvc, nil, nil)
			if err := svc.RequestLoginOTP(context.Background(), "customer@example.com"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if issued != tt.expectIssue {
				t.Errorf("expected issue=%v, got %v", tt.expectIssue, issued)
			}
		})
	}
}

func TestAuthServiceImpl_LoginWithProvider(t *testing.T) {
	login := domain.ProviderLogin{
		Provider:    "google",
		ProviderID:  "goog-123",
		Email:       "customer@example.com",
		DisplayName: "Pat",
	}

	t.Run("returning linked account", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		repo.FindByIdentityFunc = func(ctx context.Context, provider, providerID string) (*domain.Account, error) {
			return activeCustomer(t), nil
		}
		repo.CreateFunc = func(ctx context.Context, account *domain.Account) error {
			t.Fatal("no account should be created for a returning identity")
			return nil
		}

		svc := newAuthServiceForTest(t, repo, nil, nil, nil, nil, nil, nil)
		result, err := svc.LoginWithProvider(context.Background(), login, domain.DeviceMeta{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.IsNewAccount {
			t.Error("returning identity must not be flagged as new")
		}
	})

	t.Run("email match links the identity", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			return activeCustomer(t), nil
		}
		var linked *domain.LinkedIdentity
		repo.LinkIdentityFunc = func(ctx context.Context, identity *domain.LinkedIdentity) error {
			linked = identity
			return nil
		}

		svc := newAuthServiceForTest(t, repo, nil, nil, nil, nil, nil, nil)
		result, err := svc.LoginWithProvider(context.Background(), login, domain.DeviceMeta{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if linked == nil || linked.Provider != "google" || linked.ProviderID != "goog-123" {
			t.Errorf("expected identity linked, got %+v", linked)
		}
		if result.IsNewAccount {
			t.Error("linking to an existing account is not a signup")
		}
	})

	t.Run("relinking the same identity is idempotent", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			a := activeCustomer(t)
			a.Identities = []domain.LinkedIdentity{{AccountID: a.ID, Provider: "google", ProviderID: "goog-123"}}
			return a, nil
		}
		repo.LinkIdentityFunc = func(ctx context.Context, identity *domain.LinkedIdentity) error {
			t.Fatal("an identical binding must not be written again")
			return nil
		}

		svc := newAuthServiceForTest(t, repo, nil, nil, nil, nil, nil, nil)
		if _, err := svc.LoginWithProvider(context.Background(), login, domain.DeviceMeta{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("pending account does not acquire the binding", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			a := activeCustomer(t)
			a.Status = domain.StatusPending
			return a, nil
		}
		repo.LinkIdentityFunc = func(ctx context.Context, identity *domain.LinkedIdentity) error {
			t.Fatal("an account refused login must not be linked")
			return nil
		}

		svc := newAuthServiceForTest(t, repo, nil, nil, nil, nil, nil, nil)
		_, err := svc.LoginWithProvider(context.Background(), login, domain.DeviceMeta{})
		if domain.KindOf(err) != domain.KindAccountPending {
			t.Fatalf("expected account_pending, got %v", err)
		}
	})

	t.Run("conflicting provider binding is rejected", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			a := activeCustomer(t)
			a.Identities = []domain.LinkedIdentity{{AccountID: a.ID, Provider: "google", ProviderID: "goog-999"}}
			return a, nil
		}

		svc := newAuthServiceForTest(t, repo, nil, nil, nil, nil, nil, nil)
		_, err := svc.LoginWithProvider(context.Background(), login, domain.DeviceMeta{})
		if domain.KindOf(err) != domain.KindAlreadyLinked {
			t.Fatalf("expected already_linked, got %v", err)
		}
	})

	t.Run("fresh identity creates an active customer", func(t *testing.T) {
		repo := mocks.NewMockAccountRepository()
		var created *domain.Account
		repo.CreateFunc = func(ctx context.Context, account *domain.Account) error {
			account.ID = 42
			created = account
			return nil
		}
		var linked *domain.LinkedIdentity
		repo.LinkIdentityFunc = func(ctx context.Context, identity *domain.LinkedIdentity) error {
			linked = identity
			return nil
		}

		svc := newAuthServiceForTest(t, repo, nil, nil, nil, nil, nil, nil)
		result, err := svc.LoginWithProvider(context.Background(), login, domain.DeviceMeta{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created == nil {
			t.Fatal("expected an account to be created")
		}
		if created.Role != domain.RoleCustomer || created.Status != domain.StatusActive {
			t.Errorf("expected an active customer, got %s/%s", created.Role, created.Status)
		}
		if created.PasswordHash != "" {
			t.Error("provider signups must not get a password")
		}
		if linked == nil || linked.AccountID != 42 {
			t.Errorf("expected identity bound to the new account, got %+v", linked)
		}
		if !result.IsNewAccount {
			t.Error("fresh signup must be flagged as new")
		}
	})
}

func TestAuthServiceImpl_Refresh(t *testing.T) {
	session := &domain.Session{
		ID:        "sess-1",
		AccountID: 1,
		ExpiresAt: testBase.Add(24 * time.Hour),
	}

	tests := []struct {
		name         string
		setupMocks   func(*mocks.MockAccountRepository, *mocks.MockSessionRepository, *mocks.MockTokenService)
		expectedKind domain.Kind
	}{
		{
			name: "successful refresh mints a new access token",
			setupMocks: func(repo *mocks.MockAccountRepository, sessions *mocks.MockSessionRepository, tokens *mocks.MockTokenService) {
				tokens.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{AccountID: 1, SessionID: "sess-1", TokenType: "refresh"}, nil
				}
				sessions.FindByRefreshHashFunc = func(ctx context.Context, hash string) (*domain.Session, error) {
					return session, nil
				}
				repo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Account, error) {
					return activeCustomer(t), nil
				}
			},
		},
		{
			name: "expired refresh token",
			setupMocks: func(repo *mocks.MockAccountRepository, sessions *mocks.MockSessionRepository, tokens *mocks.MockTokenService) {
				tokens.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return nil, domain.ErrTokenExpired
				}
			},
			expectedKind: domain.KindTokenExpired,
		},
		{
			name: "terminated session rejects the refresh",
			setupMocks: func(repo *mocks.MockAccountRepository, sessions *mocks.MockSessionRepository, tokens *mocks.MockTokenService) {
				tokens.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{AccountID: 1, SessionID: "sess-1", TokenType: "refresh"}, nil
				}
				// Default session lookup: not found
			},
			expectedKind: domain.KindTokenInvalid,
		},
		{
			name: "deactivated account rejects the refresh",
			setupMocks: func(repo *mocks.MockAccountRepository, sessions *mocks.MockSessionRepository, tokens *mocks.MockTokenService) {
				tokens.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{AccountID: 1, SessionID: "sess-1", TokenType: "refresh"}, nil
				}
				sessions.FindByRefreshHashFunc = func(ctx context.Context, hash string) (*domain.Session, error) {
					return session, nil
				}
				repo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Account, error) {
					a := activeCustomer(t)
					a.Status = domain.StatusInactive
					return a, nil
				}
			},
			expectedKind: domain.KindAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository()
			sessions := mocks.NewMockSessionRepository()
			tokens := mocks.NewMockTokenService()
			tt.setupMocks(repo, sessions, tokens)

			svc := newAuthServiceForTest(t, repo, sessions, nil, tokens, nil, nil, nil)
			result, err := svc.Refresh(context.Background(), "some-refresh-token")

			if tt.expectedKind != "" {
				if domain.KindOf(err) != tt.expectedKind {
					t.Fatalf("expected kind %s, got %v", tt.expectedKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.AccessToken == "" {
				t.Error("expected a new access token")
			}
		})
	}
}

func TestAuthServiceImpl_Logout(t *testing.T) {
	sessions := mocks.NewMockSessionRepository()
	sessions.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return &domain.Session{ID: sessionID, AccountID: 1}, nil
	}
	var deleted string
	sessions.DeleteFunc = func(ctx context.Context, sessionID string) error {
		deleted = sessionID
		return nil
	}

	svc := newAuthServiceForTest(t, nil, sessions, nil, nil, nil, nil, nil)
	ctx := context.Background()

	if err := svc.Logout(ctx, 2, "sess-1"); domain.KindOf(err) != domain.KindForbidden {
		t.Fatalf("expected forbidden for foreign session, got %v", err)
	}
	if deleted != "" {
		t.Fatal("foreign session must not be deleted")
	}

	if err := svc.Logout(ctx, 1, "sess-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != "sess-1" {
		t.Errorf("expected sess-1 deleted, got %q", deleted)
	}
}

func TestAuthServiceImpl_ResetPassword(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
		return activeCustomer(t), nil
	}
	var newHash string
	repo.UpdatePasswordFunc = func(ctx context.Context, id uint, passwordHash string) error {
		newHash = passwordHash
		return nil
	}
	sessions := mocks.NewMockSessionRepository()
	var wiped bool
	sessions.DeleteAllFunc = func(ctx context.Context, accountID uint) error {
		wiped = true
		return nil
	}
	otpSvc := mocks.NewMockOTPService()
	otpSvc.VerifyFunc = func(ctx context.Context, identifier string, purpose domain.OTPPurpose, code string) error {
		if purpose != domain.PurposePasswordReset {
			t.Errorf("expected password_reset purpose, got %s", purpose)
		}
		if code != "654321" {
			return domain.OTPInvalidError(4)
		}
		return nil
	}

	svc := newAuthServiceForTest(t, repo, sessions, nil, nil, otpSvc, nil, nil)
	ctx := context.Background()

	if err := svc.ResetPassword(ctx, "customer@example.com", "654321", "short"); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation failure for weak password, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "customer@example.com", "000000", "NewPassword1"); domain.KindOf(err) != domain.KindOTPInvalid {
		t.Fatalf("expected otp_invalid, got %v", err)
	}
	if wiped {
		t.Fatal("sessions must survive a failed reset")
	}

	if err := svc.ResetPassword(ctx, "customer@example.com", "654321", "NewPassword1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if newHash != "hashed_NewPassword1" {
		t.Errorf("unexpected stored hash %q", newHash)
	}
	if !wiped {
		t.Error("a successful reset must terminate every session")
	}
}

func TestAuthServiceImpl_ChangePassword(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	repo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Account, error) {
		return activeCustomer(t), nil
	}
	sessions := mocks.NewMockSessionRepository()
	var wiped bool
	sessions.DeleteAllFunc = func(ctx context.Context, accountID uint) error {
		wiped = true
		return nil
	}

	svc := newAuthServiceForTest(t, repo, sessions, nil, nil, nil, nil, nil)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, 1, "wrong", "NewPassword1"); domain.KindOf(err) != domain.KindInvalidCredentials {
		t.Fatalf("expected invalid_credentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, 1, "Password1", "NewPassword1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !wiped {
		t.Error("a password change must terminate every session")
	}
}
