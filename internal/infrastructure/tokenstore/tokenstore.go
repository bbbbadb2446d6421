// Package tokenstore persists the Credential Token of a client context.
//
// Two backends are available: Cookie keeps the token in the browser, Redis
// keeps it server-side keyed by a random client id stored in a signed
// gorilla session cookie. Memory is for tests.
package tokenstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/coursehub/learning-portal/internal/core/ports"
)

// DefaultTTL is how long a token is kept when it carries no earlier expiry.
const DefaultTTL = 30 * 24 * time.Hour

// Factory builds the token store bound to one request's client context.
type Factory interface {
	ForRequest(c echo.Context) (ports.TokenStore, error)
}

// expiresAt returns now+ttl, capped to the token's own "exp" claim when the
// token is a JWT. The signature is not checked; only the backend can do that.
func expiresAt(token string, now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	limit := now.Add(ttl)

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return limit
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(limit) {
		return claims.ExpiresAt.Time
	}
	return limit
}
