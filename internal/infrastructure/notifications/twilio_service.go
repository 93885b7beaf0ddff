package notifications

import (
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/pkg/log"
)

// TwilioServiceImpl implements domain.NotificationService. Codes for phone
// identifiers go out as SMS; email delivery is handled by a separate system
// and is only logged here.
type TwilioServiceImpl struct {
	client     *twilio.RestClient
	fromNumber string
	logger     log.Logger
}

// NewTwilioService creates a new Twilio notification service
func NewTwilioService(accountSID, authToken, fromNumber string, logger log.Logger) domain.NotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		client:     client,
		fromNumber: fromNumber,
		logger:     logger,
	}
}

// SendCode implements domain.NotificationService
func (t *TwilioServiceImpl) SendCode(identifier, code string, purpose domain.OTPPurpose) error {
	message := messageFor(code, purpose)

	if !strings.HasPrefix(identifier, "+") {
		// Email identifier; no email transport configured here.
		t.logger.Info().Str("identifier", identifier).Str("purpose", string(purpose)).
			Msg("email code dispatch delegated")
		return nil
	}

	// No credentials configured, log instead of sending.
	if t.fromNumber == "" {
		t.logger.Info().Str("identifier", identifier).Str("purpose", string(purpose)).
			Msg("twilio not configured, skipping SMS")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(identifier)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	_, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	return nil
}

func messageFor(code string, purpose domain.OTPPurpose) string {
	switch purpose {
	case domain.PurposePasswordReset:
		return fmt.Sprintf("Your password reset code is: %s", code)
	case domain.PurposeLogin:
		return fmt.Sprintf("Your login code is: %s", code)
	default:
		return fmt.Sprintf("Your verification code is: %s", code)
	}
}
