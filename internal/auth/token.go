package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// ClaimSubject marks a token as an authentication claim.
const ClaimSubject = "auth"

// DefaultTokenValidity is used when a TokenManager is built with a
// non-positive validity.
const DefaultTokenValidity = 24 * time.Hour

// TokenManager issues and verifies HS256 identity tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenManager struct {
	secret   []byte
	issuer   string
	validity time.Duration
	now      func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithTokenClock overrides the clock used for issuing and verifying.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret, issuer string, validity time.Duration, opts ...TokenOption) *TokenManager {
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	tm := &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		validity: validity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes the JWT payload. IssuedAt and ExpiresAt are whole seconds
// and ExpiresAt is always IssuedAt plus the manager's validity.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the principal embedded in the claim.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity(c.Email)
}

// Validity returns the fixed lifetime applied to issued tokens.
func (tm *TokenManager) Validity() time.Duration {
	return tm.validity
}

// Issue builds and signs a token for identity.
func (tm *TokenManager) Issue(identity domain.Identity) (string, *Claims, error) {
	issuedAt := tm.now().Truncate(time.Second)
	claims := &Claims{
		Email: identity.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   ClaimSubject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tm.validity)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", nil, fmt.Errorf("%w: sign token: %v", ErrInternal, err)
	}
	return tokenString, claims, nil
}

// Verify validates signature, issuer, subject and expiry. Every failure is
// reported as ErrUnauthorized so callers cannot tell why a token was refused.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tm.issuer),
		jwt.WithSubject(ClaimSubject),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	if err != nil {
		return nil, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
