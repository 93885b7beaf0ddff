package domain

import (
	"context"
	"time"
)

// Clock is the single source of "now", injectable for testability.
type Clock interface {
	Now() time.Time
}

// AccountRepository defines account data access operations. Implementations
// must enforce uniqueness of email, phone and (provider, provider_id).
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uint) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByPhone(ctx context.Context, phone string) (*Account, error)
	FindByIdentity(ctx context.Context, provider, providerID string) (*Account, error)
	Update(ctx context.Context, account *Account) error
	UpdateStatus(ctx context.Context, id uint, status Status) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	LinkIdentity(ctx context.Context, identity *LinkedIdentity) error
	ListByStatus(ctx context.Context, status Status) ([]*Account, error)

	// RecordFailedLogin atomically increments the failed-login counter and,
	// once it reaches maxAttempts, transitions the account to locked until
	// now+lockFor and resets the counter. The increment and the lock decision
	// must not be visible to other callers as separate writes.
	RecordFailedLogin(ctx context.Context, id uint, maxAttempts int, lockFor time.Duration, now time.Time) (attempts int, lockedUntil *time.Time, err error)
	ResetFailedLogins(ctx context.Context, id uint) error

	// Unlock transitions a locked account back to active. It is a no-op if
	// the account is not locked.
	Unlock(ctx context.Context, id uint) error
}

// OTPRepository defines one-time-code persistence. Codes are append-only
// rows; expiry is by timestamp comparison, no deletion required.
type OTPRepository interface {
	Create(ctx context.Context, code *OneTimeCode) error

	// FindLatest returns the most recent unconsumed code for the pair, or
	// ErrOTPExpired when none exists.
	FindLatest(ctx context.Context, identifier string, purpose OTPPurpose) (*OneTimeCode, error)

	// IncrementAttempts atomically bumps the attempt counter and returns the
	// new value.
	IncrementAttempts(ctx context.Context, id uint) (int, error)

	// MarkVerified consumes the code. It fails with ErrOTPExpired when the
	// code was already consumed by a concurrent caller.
	MarkVerified(ctx context.Context, id uint, at time.Time) error

	// CountSince counts codes issued to the identifier after the given
	// instant, for request-rate limiting.
	CountSince(ctx context.Context, identifier string, since time.Time) (int64, error)
}

// SessionRepository defines session data access operations. All lookups
// treat an expired-but-not-yet-deleted session as absent.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	FindByRefreshHash(ctx context.Context, hash string) (*Session, error)
	FindAllActive(ctx context.Context, accountID uint) ([]*Session, error)
	Touch(ctx context.Context, sessionID string, at time.Time) error
	Delete(ctx context.Context, sessionID string) error
	DeleteAll(ctx context.Context, accountID uint) error
}

// PasswordService defines one-way password hashing operations.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines signed-token operations. Access and refresh tokens
// use independent secrets and lifetimes; a refresh token is never accepted
// where an access token is expected, and vice versa.
type TokenService interface {
	MintAccessToken(accountID uint, role Role, sessionID string) (string, error)
	MintRefreshToken(accountID uint, role Role, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)

	// ExpiryOf extracts the expiration claim without verifying the
	// signature, for client-side bookkeeping.
	ExpiryOf(token string) (time.Time, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// NotificationService delivers one-time codes. Delivery failures must not
// fail the issuing operation; implementations and callers log and continue.
type NotificationService interface {
	SendCode(identifier, code string, purpose OTPPurpose) error
}

// OTPService defines the one-time-code ledger operations.
type OTPService interface {
	Issue(ctx context.Context, identifier string, purpose OTPPurpose) (*OneTimeCode, error)
	Verify(ctx context.Context, identifier string, purpose OTPPurpose, code string) error
}

// AccountLifecycle orchestrates the account state machine:
// pending -> active -> {locked <-> active} -> inactive, with
// pending -> inactive as the rejection path.
type AccountLifecycle interface {
	Register(ctx context.Context, input RegisterInput) (*Account, error)
	VerifyRegistration(ctx context.Context, identifier, code string) (*Account, error)

	// ResendRegistrationCode issues a fresh registration code for a pending
	// customer. Unknown identifiers and accounts past pending succeed
	// silently so account existence does not leak.
	ResendRegistrationCode(ctx context.Context, identifier string) error
	Approve(ctx context.Context, accountID uint) error
	Reject(ctx context.Context, accountID uint, reason string) error
	Deactivate(ctx context.Context, accountID uint) error
	Reactivate(ctx context.Context, accountID uint) error
	ListPending(ctx context.Context) ([]*Account, error)

	// RecordFailedLogin returns the attempts remaining before lockout and,
	// when this attempt tripped the ceiling, the lock deadline.
	RecordFailedLogin(ctx context.Context, accountID uint) (remaining int, lockedUntil *time.Time, err error)
	RecordSuccessfulLogin(ctx context.Context, accountID uint) error

	// UnlockIfExpired clears an expired lock. Invoked before every login
	// evaluation.
	UnlockIfExpired(ctx context.Context, account *Account) error
}

// AuthService coordinates login, token refresh and credential management.
type AuthService interface {
	LoginWithPassword(ctx context.Context, identifier, password string, device DeviceMeta) (*AuthResult, error)
	LoginWithOTP(ctx context.Context, identifier, code string, device DeviceMeta) (*AuthResult, error)
	LoginWithProvider(ctx context.Context, login ProviderLogin, device DeviceMeta) (*AuthResult, error)
	RequestLoginOTP(ctx context.Context, identifier string) error
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Logout(ctx context.Context, accountID uint, sessionID string) error
	LogoutAll(ctx context.Context, accountID uint) error
	ActiveSessions(ctx context.Context, accountID uint) ([]*Session, error)
	RequestPasswordReset(ctx context.Context, identifier string) error
	ResetPassword(ctx context.Context, identifier, code, newPassword string) error
	ChangePassword(ctx context.Context, accountID uint, currentPassword, newPassword string) error
	Profile(ctx context.Context, accountID uint) (*Account, error)
}

// PolicyService defines authorization policy operations.
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer is the subset of the Casbin enforcer the service needs.
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
