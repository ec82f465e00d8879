package middleware

// identity.go covers the endpoints that serve both registered users and
// anonymous sessions. A bearer token is honored when present and valid but
// its absence is not an error; the handler falls back to the session id the
// client supplies. This mirrors the optional-authentication behavior of the
// divination endpoints: quota accounting picks whichever identity resolved.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fatewave/fatewave-api/internal/utils"
)

// OptionalAuth extracts a registered-user identity from a Bearer token when
// one is present and verifiable, and silently continues otherwise. Invalid
// or revoked tokens simply leave the request anonymous rather than failing
// it; the strict JWTAuth middleware is for endpoints that require a user.
func OptionalAuth(secret string, revocations RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			const prefix = "Bearer "
			if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
				claims, err := utils.VerifyAccessToken(secret, auth[len(prefix):])
				if err == nil {
					revoked := false
					if revocations != nil {
						revoked, _ = revocations.IsRevoked(c.Request().Context(), claims.JTI)
					}
					if !revoked {
						c.Set(CtxUserID, claims.UserID)
						c.Set(CtxEmail, claims.Email)
					}
				}
			}
			return next(c)
		}
	}
}

// identityKey returns a stable string for rate-limit keying: the user id
// when authenticated, the session id query/header value for anonymous
// clients, and "guest" when neither is present. The request body is never
// read here, so anonymous POSTs that carry session_id only in the JSON body
// share one per-IP "guest" bucket; clients that want a per-session bucket
// send the id in the X-Session-ID header as well.
func identityKey(c echo.Context) string {
	if v := c.Get(CtxUserID); v != nil {
		if id, ok := v.(uint64); ok {
			return "u" + strconv.FormatUint(id, 10)
		}
	}
	if sid := c.QueryParam("session_id"); sid != "" {
		return "s" + sid
	}
	if sid := c.Request().Header.Get("X-Session-ID"); sid != "" {
		return "s" + sid
	}
	return "guest"
}
