package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dyluth/burrow/pkg/taskboard"
)

// CookieName is the cookie carrying the identity token on the browser surface.
const CookieName = "token"

// identityContextKey is the echo context key holding the authenticated identity.
const identityContextKey = "burrow.identity"

var (
	// ErrNoCredential indicates no token was presented at all.
	ErrNoCredential = errors.New("no credential")

	// ErrInvalidCredential indicates a malformed token or bad signature.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrExpiredCredential indicates a token past its validity window.
	ErrExpiredCredential = errors.New("expired credential")

	// ErrUnknownPrincipal indicates a valid token whose user no longer resolves.
	ErrUnknownPrincipal = errors.New("unknown principal")
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID   string
	Username string
}

// UserResolver resolves a user id to a stored user record.
// Satisfied by *taskboard.Client.
type UserResolver interface {
	GetUser(ctx context.Context, userID string) (*taskboard.User, error)
}

// Strategy extracts and verifies a credential from a request, producing an
// authenticated identity or one of the credential errors above. The two
// implementations differ in where the token lives and in how their
// middleware reacts to failure; the verification path is shared.
type Strategy interface {
	Authenticate(c echo.Context) (*Identity, error)
}

// Gate verifies identity tokens and resolves their principals. It provides
// both strategies and the echo middleware wrapping them.
type Gate struct {
	tokens *TokenService
	users  UserResolver
}

// NewGate creates an authentication gate over the given token service and
// user store.
func NewGate(tokens *TokenService, users UserResolver) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// verify checks the raw token and confirms the referenced user still exists.
// The store round trip is deliberate: a deleted account invalidates every
// outstanding token immediately.
func (g *Gate) verify(ctx context.Context, rawToken string) (*Identity, error) {
	claims, err := g.tokens.Verify(rawToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, ErrExpiredCredential
		}
		return nil, ErrInvalidCredential
	}

	user, err := g.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if taskboard.IsNotFound(err) {
			return nil, ErrUnknownPrincipal
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return &Identity{UserID: user.ID, Username: user.Username}, nil
}

// BearerStrategy reads the token from an "Authorization: Bearer" header.
type BearerStrategy struct {
	gate *Gate
}

// Bearer returns the header-based strategy.
func (g *Gate) Bearer() *BearerStrategy {
	return &BearerStrategy{gate: g}
}

// Authenticate implements Strategy.
func (s *BearerStrategy) Authenticate(c echo.Context) (*Identity, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, ErrNoCredential
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, ErrInvalidCredential
	}

	return s.gate.verify(c.Request().Context(), strings.TrimPrefix(header, prefix))
}

// CookieStrategy reads the token from the "token" cookie.
type CookieStrategy struct {
	gate *Gate
}

// Cookie returns the cookie-based strategy.
func (g *Gate) Cookie() *CookieStrategy {
	return &CookieStrategy{gate: g}
}

// Authenticate implements Strategy.
func (s *CookieStrategy) Authenticate(c echo.Context) (*Identity, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoCredential
	}

	return s.gate.verify(c.Request().Context(), cookie.Value)
}

// RequireBearer returns middleware for the API surface. It fails closed:
// any credential failure ends the request with 401 and a reason string.
func (g *Gate) RequireBearer() echo.MiddlewareFunc {
	strategy := g.Bearer()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, err := strategy.Authenticate(c)
			if err != nil {
				reason, ok := credentialReason(err)
				if !ok {
					return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, reason)
			}

			SetIdentity(c, ident)
			return next(c)
		}
	}
}

// WithCookie returns middleware for the browser surface. It fails open: a
// present-but-bad token clears the cookie and the request continues
// anonymous rather than erroring. Handlers that need an identity still
// reject anonymous requests themselves.
func (g *Gate) WithCookie() echo.MiddlewareFunc {
	strategy := g.Cookie()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, err := strategy.Authenticate(c)
			switch {
			case err == nil:
				SetIdentity(c, ident)
			case errors.Is(err, ErrNoCredential):
				// Anonymous request, nothing to clean up
			case errors.Is(err, ErrInvalidCredential),
				errors.Is(err, ErrExpiredCredential),
				errors.Is(err, ErrUnknownPrincipal):
				ClearCookie(c)
			default:
				return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
			}
			return next(c)
		}
	}
}

// SetIdentity attaches an authenticated identity to the request context.
func SetIdentity(c echo.Context, ident *Identity) {
	c.Set(identityContextKey, ident)
}

// IdentityFrom returns the authenticated identity for the request, if any.
func IdentityFrom(c echo.Context) (*Identity, bool) {
	ident, ok := c.Get(identityContextKey).(*Identity)
	if !ok || ident == nil {
		return nil, false
	}
	return ident, true
}

// SetCookie writes the token cookie with a Max-Age matching the token lifetime.
func SetCookie(c echo.Context, token string, lifetime time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the token cookie.
func ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// credentialReason maps a credential error to the reason string returned in
// 401 bodies. The second return is false for non-credential errors.
func credentialReason(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrNoCredential):
		return "missing credentials", true
	case errors.Is(err, ErrInvalidCredential):
		return "invalid token", true
	case errors.Is(err, ErrExpiredCredential):
		return "token expired", true
	case errors.Is(err, ErrUnknownPrincipal):
		return "unknown user", true
	default:
		return "", false
	}
}
