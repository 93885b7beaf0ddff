package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/accountsvc/domain"
)

// statusFor maps a domain failure kind to a transport status code.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindOTPExpired, domain.KindOTPInvalid:
		return http.StatusBadRequest
	case domain.KindInvalidCredentials, domain.KindTokenInvalid, domain.KindTokenExpired:
		return http.StatusUnauthorized
	case domain.KindAccountPending, domain.KindAccountInactive, domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindAccountNotFound, domain.KindSessionNotFound:
		return http.StatusNotFound
	case domain.KindDuplicateIdentifier, domain.KindAlreadyLinked, domain.KindInvalidState:
		return http.StatusConflict
	case domain.KindAccountLocked:
		return http.StatusLocked
	case domain.KindOTPLocked, domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a domain failure as a stable machine-readable kind
// plus a human-readable message, with lockout and rate-limit waits exposed.
func respondError(c *gin.Context, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	body := gin.H{
		"kind":  string(derr.Kind),
		"error": derr.Message,
	}
	if derr.RemainingAttempts > 0 {
		body["remaining_attempts"] = derr.RemainingAttempts
	}
	if derr.RetryAfter > 0 {
		body["retry_after_seconds"] = int64(derr.RetryAfter.Seconds())
	}
	if len(derr.Violations) > 0 {
		body["violations"] = derr.Violations
	}

	c.JSON(statusFor(derr.Kind), body)
}
