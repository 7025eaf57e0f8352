package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is the validity window for issued tokens when the
// configuration does not override it.
const DefaultTokenLifetime = 24 * time.Hour

var (
	// ErrTokenExpired indicates a well-formed, correctly signed token whose
	// validity window has passed. Kept distinct from ErrTokenInvalid so the
	// gate can report expiry accurately.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the signed payload embedded in every identity token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited identity tokens.
// Signing is deterministic for a given claim, secret, and issued-at
// instant; verification has no side effects.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenService creates a token service with the given shared secret.
// A non-positive lifetime falls back to DefaultTokenLifetime.
func NewTokenService(secret string, lifetime time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret cannot be empty")
	}

	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
	}, nil
}

// Issue produces a signed HS256 token embedding the user's id and username.
func (s *TokenService) Issue(userID, username string) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a token, returning the embedded claims.
// Returns ErrTokenExpired for a valid signature past its window and
// ErrTokenInvalid for anything else that fails to verify.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Lifetime returns the configured validity window. The cookie surface uses
// it to align the cookie's Max-Age with token expiry.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}
