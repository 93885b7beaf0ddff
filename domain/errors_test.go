package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestError_IsMatchesByKind(t *testing.T) {
	// A constructed failure with extra payload still matches its sentinel.
	if !errors.Is(OTPInvalidError(3), ErrOTPInvalid) {
		t.Error("otp_invalid with attempt count must match ErrOTPInvalid")
	}
	if !errors.Is(AccountLockedError(10*time.Minute), ErrAccountLocked) {
		t.Error("account_locked with retry window must match ErrAccountLocked")
	}
	if !errors.Is(InvalidCredentialsError(2), ErrInvalidCredentials) {
		t.Error("invalid_credentials with attempt count must match ErrInvalidCredentials")
	}

	// Different kinds never match.
	if errors.Is(ErrOTPInvalid, ErrOTPExpired) {
		t.Error("distinct kinds must not match")
	}
	if errors.Is(ErrTokenExpired, ErrTokenInvalid) {
		t.Error("token_expired must not match token_invalid")
	}
}

func TestError_IsSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", AccountLockedError(time.Minute))
	if !errors.Is(wrapped, ErrAccountLocked) {
		t.Error("wrapping must not break kind matching")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(ErrRateLimited); got != KindRateLimited {
		t.Errorf("expected rate_limited, got %s", got)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty kind for foreign errors, got %s", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("expected empty kind for nil, got %s", got)
	}
}

func TestValidationError_MessageListsViolations(t *testing.T) {
	err := ValidationError([]string{"too short", "needs a digit"})
	msg := err.Error()
	if msg != "validation failed: too short; needs a digit" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestInvalidStateError(t *testing.T) {
	err := InvalidStateError(StatusActive, "approve")
	if KindOf(err) != KindInvalidState {
		t.Errorf("expected invalid_state, got %s", KindOf(err))
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("constructed invalid_state must match the sentinel")
	}
}
