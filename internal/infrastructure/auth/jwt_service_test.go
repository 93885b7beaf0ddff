package auth

import (
	"testing"
	"time"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/mocks"
)

var tokenTestBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTokenServiceForTest(t *testing.T, clock domain.Clock) domain.TokenService {
	t.Helper()

	if clock == nil {
		clock = mocks.NewMockClock(tokenTestBase)
	}
	return NewJWTService("access-secret", "refresh-secret", "accountsvc", 15*time.Minute, 720*time.Hour, clock)
}

func TestJWTServiceImpl_AccessTokenRoundTrip(t *testing.T) {
	svc := newTokenServiceForTest(t, nil)

	token, err := svc.MintAccessToken(42, domain.RolePartner, "sess-abc")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.AccountID != 42 {
		t.Errorf("expected account 42, got %d", claims.AccountID)
	}
	if claims.Role != domain.RolePartner {
		t.Errorf("expected partner role, got %s", claims.Role)
	}
	if claims.SessionID != "sess-abc" {
		t.Errorf("expected session sess-abc, got %s", claims.SessionID)
	}
	if claims.TokenType != "" {
		t.Errorf("access tokens carry no type claim, got %q", claims.TokenType)
	}
}

func TestJWTServiceImpl_RefreshTokenRoundTrip(t *testing.T) {
	svc := newTokenServiceForTest(t, nil)

	token, err := svc.MintRefreshToken(42, domain.RoleCustomer, "sess-abc")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := svc.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("expected refresh type, got %q", claims.TokenType)
	}

	exp, err := svc.ExpiryOf(token)
	if err != nil {
		t.Fatalf("expiry extraction failed: %v", err)
	}
	if !exp.Equal(tokenTestBase.Add(720 * time.Hour)) {
		t.Errorf("unexpected expiry %v", exp)
	}
}

// The two token kinds are signed with independent secrets and a type
// discriminator, so neither can pass for the other.
func TestJWTServiceImpl_CrossKindRejection(t *testing.T) {
	svc := newTokenServiceForTest(t, nil)

	access, err := svc.MintAccessToken(1, domain.RoleCustomer, "s")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	refresh, err := svc.MintRefreshToken(1, domain.RoleCustomer, "s")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := svc.ValidateAccessToken(refresh); domain.KindOf(err) != domain.KindTokenInvalid {
		t.Errorf("refresh token must not validate as access, got %v", err)
	}
	if _, err := svc.ValidateRefreshToken(access); domain.KindOf(err) != domain.KindTokenInvalid {
		t.Errorf("access token must not validate as refresh, got %v", err)
	}
}

func TestJWTServiceImpl_Expiry(t *testing.T) {
	clock := mocks.NewMockClock(tokenTestBase)
	svc := newTokenServiceForTest(t, clock)

	token, err := svc.MintAccessToken(1, domain.RoleCustomer, "s")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	// Exactly at the expiry instant the token is still valid.
	clock.Current = tokenTestBase.Add(15 * time.Minute)
	if _, err := svc.ValidateAccessToken(token); err != nil {
		t.Errorf("token must be valid at its expiry boundary, got %v", err)
	}

	clock.Advance(time.Second)
	if _, err := svc.ValidateAccessToken(token); domain.KindOf(err) != domain.KindTokenExpired {
		t.Errorf("expected token_expired past the boundary, got %v", err)
	}
}

func TestJWTServiceImpl_WrongSecret(t *testing.T) {
	svc := newTokenServiceForTest(t, nil)
	other := NewJWTService("different-secret", "different-refresh", "accountsvc", 15*time.Minute, 720*time.Hour, mocks.NewMockClock(tokenTestBase))

	token, err := svc.MintAccessToken(1, domain.RoleCustomer, "s")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := other.ValidateAccessToken(token); domain.KindOf(err) != domain.KindTokenInvalid {
		t.Errorf("expected token_invalid under a foreign secret, got %v", err)
	}
}

func TestJWTServiceImpl_Garbage(t *testing.T) {
	svc := newTokenServiceForTest(t, nil)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.ValidateAccessToken(tok); domain.KindOf(err) != domain.KindTokenInvalid {
			t.Errorf("expected token_invalid for %q, got %v", tok, err)
		}
	}
}
