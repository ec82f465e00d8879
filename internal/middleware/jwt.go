package middleware // reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fatewave/fatewave-api/internal/utils"
)

// RevocationChecker is the slice of the revocation store the auth
// middleware needs: has this token id been invalidated before its expiry?
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Context keys set by the auth middleware for downstream handlers.
const (
	CtxUserID   = "user_id"   // uint64
	CtxEmail    = "email"     // string
	CtxTokenJTI = "token_jti" // string
	CtxTokenExp = "token_exp" // time.Time
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject claims into the request context. The
// checks are: HMAC signature, expiry, the fixed `type=access` claim, and
// absence from the revocation list. Handlers behind this middleware read
// the identity via c.Get(middleware.CtxUserID).
func JWTAuth(secret string, revocations RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, utils.ErrorResponse{
					Success: false, Message: "missing bearer token", ErrorCode: "UNAUTHORIZED",
				})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, utils.ErrorResponse{
					Success: false, Message: "invalid token", ErrorCode: "UNAUTHORIZED",
				})
			}

			// A valid signature is not enough: the token may have been
			// revoked at logout before its natural expiry.
			if revocations != nil {
				revoked, err := revocations.IsRevoked(c.Request().Context(), claims.JTI)
				if err != nil {
					return c.JSON(http.StatusInternalServerError, utils.ErrorResponse{
						Success: false, Message: "token check failed", ErrorCode: "INTERNAL_SERVER_ERROR",
					})
				}
				if revoked {
					return c.JSON(http.StatusUnauthorized, utils.ErrorResponse{
						Success: false, Message: "token revoked", ErrorCode: "UNAUTHORIZED",
					})
				}
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxTokenJTI, claims.JTI)
			c.Set(CtxTokenExp, claims.Exp)
			return next(c)
		}
	}
}
