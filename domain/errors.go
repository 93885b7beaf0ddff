package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the closed enumeration of domain failure kinds. Callers inspect
// failures by kind, never by message text.
type Kind string

const (
	KindDuplicateIdentifier Kind = "duplicate_identifier"
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindAccountLocked       Kind = "account_locked"
	KindAccountPending      Kind = "account_pending"
	KindAccountInactive     Kind = "account_inactive"
	KindOTPExpired          Kind = "otp_expired"
	KindOTPInvalid          Kind = "otp_invalid"
	KindOTPLocked           Kind = "otp_locked"
	KindRateLimited         Kind = "rate_limited"
	KindTokenInvalid        Kind = "token_invalid"
	KindTokenExpired        Kind = "token_expired"
	KindSessionNotFound     Kind = "session_not_found"
	KindForbidden           Kind = "forbidden"
	KindValidation          Kind = "validation_error"
	KindAlreadyLinked       Kind = "already_linked_to_another_account"
	KindInvalidState        Kind = "invalid_state"
	KindAccountNotFound     Kind = "account_not_found"
)

// Error is a tagged domain failure. RemainingAttempts is set for invalid
// OTP and wrong-password failures, RetryAfter for lockout and rate-limit
// failures, Violations for validation failures.
type Error struct {
	Kind              Kind
	Message           string
	RemainingAttempts int
	RetryAfter        time.Duration
	Violations        []string
}

func (e *Error) Error() string {
	if len(e.Violations) > 0 {
		return e.Message + ": " + strings.Join(e.Violations, "; ")
	}
	return e.Message
}

// Is matches errors by kind so that errors.Is(err, ErrOTPInvalid) holds for
// any otp_invalid failure regardless of the attempt count it carries.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the failure kind from err, or "" for non-domain errors.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

// Authentication errors
var (
	ErrAccountNotFound     = &Error{Kind: KindAccountNotFound, Message: "account not found"}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrDuplicateIdentifier = &Error{Kind: KindDuplicateIdentifier, Message: "email or phone already registered"}
	ErrAccountLocked       = &Error{Kind: KindAccountLocked, Message: "account is temporarily locked"}
	ErrAccountPending      = &Error{Kind: KindAccountPending, Message: "account is pending activation"}
	ErrAccountInactive     = &Error{Kind: KindAccountInactive, Message: "account is inactive"}
)

// OTP errors
var (
	ErrOTPExpired   = &Error{Kind: KindOTPExpired, Message: "code has expired or was never issued"}
	ErrOTPInvalid   = &Error{Kind: KindOTPInvalid, Message: "invalid code"}
	ErrOTPLocked    = &Error{Kind: KindOTPLocked, Message: "too many failed code attempts"}
	ErrRateLimited  = &Error{Kind: KindRateLimited, Message: "too many code requests"}
)

// Token and session errors
var (
	ErrTokenInvalid    = &Error{Kind: KindTokenInvalid, Message: "invalid token"}
	ErrTokenExpired    = &Error{Kind: KindTokenExpired, Message: "token has expired"}
	ErrSessionNotFound = &Error{Kind: KindSessionNotFound, Message: "session not found"}
)

// Lifecycle and authorization errors
var (
	ErrForbidden     = &Error{Kind: KindForbidden, Message: "operation not permitted"}
	ErrInvalidState  = &Error{Kind: KindInvalidState, Message: "illegal lifecycle transition"}
	ErrAlreadyLinked = &Error{Kind: KindAlreadyLinked, Message: "identity already linked to another account"}
)

// InvalidCredentialsError reports a wrong password together with the number
// of attempts left before the account locks.
func InvalidCredentialsError(remaining int) *Error {
	return &Error{
		Kind:              KindInvalidCredentials,
		Message:           fmt.Sprintf("invalid credentials, %d attempts remaining", remaining),
		RemainingAttempts: remaining,
	}
}

// AccountLockedError reports a locked account and how long to wait.
func AccountLockedError(retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindAccountLocked,
		Message:    fmt.Sprintf("account is locked, try again in %s", retryAfter.Round(time.Second)),
		RetryAfter: retryAfter,
	}
}

// OTPInvalidError reports a wrong code together with remaining attempts.
func OTPInvalidError(remaining int) *Error {
	return &Error{
		Kind:              KindOTPInvalid,
		Message:           fmt.Sprintf("invalid code, %d attempts remaining", remaining),
		RemainingAttempts: remaining,
	}
}

// RateLimitedError reports that code issuance is throttled.
func RateLimitedError(retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Message:    fmt.Sprintf("too many code requests, try again in %s", retryAfter.Round(time.Second)),
		RetryAfter: retryAfter,
	}
}

// ValidationError reports every violated rule together.
func ValidationError(violations []string) *Error {
	return &Error{
		Kind:       KindValidation,
		Message:    "validation failed",
		Violations: violations,
	}
}

// InvalidStateError reports an illegal lifecycle transition.
func InvalidStateError(from Status, action string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("cannot %s an account in status %q", action, from),
	}
}
