package domain

import "time"

// Role identifies the kind of account. Partner and shipper accounts require
// an administrator approval before they can log in.
type Role string

const (
	RoleCustomer Role = "customer"
	RolePartner  Role = "partner"
	RoleShipper  Role = "shipper"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RolePartner, RoleShipper, RoleAdmin:
		return true
	}
	return false
}

// RequiresApproval reports whether accounts with this role start pending and
// need an explicit administrator approval to become active.
func (r Role) RequiresApproval() bool {
	return r == RolePartner || r == RoleShipper
}

// Status is the lifecycle state of an account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusLocked   Status = "locked"
)

// RoleProfile carries the role-specific attributes of an account. Only
// partner and shipper accounts have one; the variant is selected by role so
// invalid field combinations cannot be represented.
type RoleProfile interface {
	ProfileRole() Role
}

// PartnerProfile holds the business attributes of a partner account.
type PartnerProfile struct {
	BusinessName string
	TaxID        string
}

func (PartnerProfile) ProfileRole() Role { return RolePartner }

// ShipperProfile holds the vehicle attributes of a shipper account.
type ShipperProfile struct {
	VehicleType string
	PlateNumber string
}

func (ShipperProfile) ProfileRole() Role { return RoleShipper }

// Account represents an identity record in the system. Email and phone are
// each globally unique when non-empty. PasswordHash is empty for accounts
// created through an identity provider only.
type Account struct {
	ID           uint
	Email        string
	Phone        string
	PasswordHash string
	Name         string
	AvatarURL    string
	Role         Role
	Status       Status
	FailedLogins int
	LockedUntil  *time.Time
	Profile      RoleProfile
	Identities   []LinkedIdentity
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LockExpired reports whether the account is locked but its lock window has
// already passed.
func (a *Account) LockExpired(now time.Time) bool {
	return a.Status == StatusLocked && a.LockedUntil != nil && now.After(*a.LockedUntil)
}

// IdentityFor returns the linked external identity for the given provider.
func (a *Account) IdentityFor(provider string) (LinkedIdentity, bool) {
	for _, id := range a.Identities {
		if id.Provider == provider {
			return id, true
		}
	}
	return LinkedIdentity{}, false
}

// LinkedIdentity binds an external identity-provider id to an account. A
// provider id is bound to at most one account.
type LinkedIdentity struct {
	AccountID  uint
	Provider   string
	ProviderID string
	CreatedAt  time.Time
}

// OTPPurpose distinguishes what a one-time code proves control of an
// identifier for.
type OTPPurpose string

const (
	PurposeRegistration  OTPPurpose = "registration"
	PurposeLogin         OTPPurpose = "login"
	PurposePasswordReset OTPPurpose = "password_reset"
)

// OneTimeCode is an ephemeral verification artifact targeting an email or
// phone identifier. A new request issues a new row; lookups select the most
// recent unconsumed one.
type OneTimeCode struct {
	ID          uint
	Identifier  string
	Purpose     OTPPurpose
	Code        string
	Attempts    int
	MaxAttempts int
	ExpiresAt   time.Time
	VerifiedAt  *time.Time
	CreatedAt   time.Time
}

// Expired reports whether the code's lifetime has passed.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Consumed reports whether the code was already verified.
func (c *OneTimeCode) Consumed() bool {
	return c.VerifiedAt != nil
}

// Exhausted reports whether the attempt ceiling has been reached.
func (c *OneTimeCode) Exhausted() bool {
	return c.Attempts >= c.MaxAttempts
}

// DeviceMeta describes the device a session was opened from.
type DeviceMeta struct {
	Type string
	Name string
	IP   string
}

// Session binds one authenticated device to an account. RefreshHash is the
// SHA-256 of the current refresh token; the raw token is never stored.
type Session struct {
	ID           string
	AccountID    uint
	RefreshHash  string
	DeviceType   string
	DeviceName   string
	IP           string
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time
}

// Active reports whether the session is still within its lifetime.
func (s *Session) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// TokenClaims represents the claims carried by access and refresh tokens.
// TokenType is "refresh" for refresh tokens and empty for access tokens.
type TokenClaims struct {
	AccountID uint   `json:"account_id"`
	Role      Role   `json:"role"`
	SessionID string `json:"session_id"`
	TokenType string `json:"type,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// AuthResult represents a successful authentication outcome.
type AuthResult struct {
	Account      *Account
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    int64
	IsNewAccount bool
}

// RefreshResult carries the new access token minted from a refresh token.
type RefreshResult struct {
	AccessToken string
	ExpiresIn   int64
}

// RegisterInput carries the data needed to create a new account.
type RegisterInput struct {
	Role     Role
	Email    string
	Phone    string
	Password string
	Name     string
	Profile  RoleProfile
}

// ProviderLogin carries the profile an identity provider asserted.
type ProviderLogin struct {
	Provider    string
	ProviderID  string
	Email       string
	DisplayName string
	AvatarURL   string
}
