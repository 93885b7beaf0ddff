package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/you/accountsvc/domain"
)

const refreshTokenType = "refresh"

// JWTServiceImpl implements domain.TokenService. Access and refresh tokens
// are signed with independent secrets so one kind can never verify as the
// other, and refresh tokens additionally carry a type discriminator claim.
type JWTServiceImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         domain.Clock
}

// NewJWTService creates a new JWT service.
func NewJWTService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration, clock domain.Clock) domain.TokenService {
	return &JWTServiceImpl{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		clock:         clock,
	}
}

// generateJTI creates a unique JWT ID
func (j *JWTServiceImpl) generateJTI() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// MintAccessToken implements domain.TokenService
func (j *JWTServiceImpl) MintAccessToken(accountID uint, role domain.Role, sessionID string) (string, error) {
	now := j.clock.Now()
	claims := jwt.MapClaims{
		"account_id": accountID,
		"role":       string(role),
		"session_id": sessionID,
		"iss":        j.issuer,
		"iat":        now.Unix(),
		"exp":        now.Add(j.accessTTL).Unix(),
		"jti":        j.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.accessSecret)
}

// MintRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) MintRefreshToken(accountID uint, role domain.Role, sessionID string) (string, error) {
	now := j.clock.Now()
	claims := jwt.MapClaims{
		"account_id": accountID,
		"role":       string(role),
		"session_id": sessionID,
		"type":       refreshTokenType,
		"iss":        j.issuer,
		"iat":        now.Unix(),
		"exp":        now.Add(j.refreshTTL).Unix(),
		"jti":        j.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.refreshSecret)
}

// ValidateAccessToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateAccessToken(tokenString string) (*domain.TokenClaims, error) {
	claims, err := j.validateToken(tokenString, j.accessSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType == refreshTokenType {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// ValidateRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateRefreshToken(tokenString string) (*domain.TokenClaims, error) {
	claims, err := j.validateToken(tokenString, j.refreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != refreshTokenType {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// ExpiryOf implements domain.TokenService. The signature is not checked;
// this exists only for client-side bookkeeping.
func (j *JWTServiceImpl) ExpiryOf(tokenString string) (time.Time, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, domain.ErrTokenInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}, domain.ErrTokenInvalid
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, domain.ErrTokenInvalid
	}
	return time.Unix(int64(exp), 0), nil
}

// AccessTTL implements domain.TokenService
func (j *JWTServiceImpl) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL implements domain.TokenService
func (j *JWTServiceImpl) RefreshTTL() time.Duration { return j.refreshTTL }

// validateToken checks signature and structure, then expiry. Expiry is
// evaluated against the injected clock; a token is expired strictly after
// its exp instant, so the boundary itself is still valid.
func (j *JWTServiceImpl) validateToken(tokenString string, secret []byte) (*domain.TokenClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenInvalid
		}
		return secret, nil
	})

	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	accountID, ok := claims["account_id"].(float64)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	role, ok := claims["role"].(string)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	if time.Unix(int64(exp), 0).Before(j.clock.Now()) {
		return nil, domain.ErrTokenExpired
	}

	tokenClaims := &domain.TokenClaims{
		AccountID: uint(accountID),
		Role:      domain.Role(role),
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}

	if sessionID, ok := claims["session_id"].(string); ok {
		tokenClaims.SessionID = sessionID
	}
	if tokenType, ok := claims["type"].(string); ok {
		tokenClaims.TokenType = tokenType
	}

	return tokenClaims, nil
}
