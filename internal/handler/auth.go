package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fatewave/fatewave-api/internal/config"
	"github.com/fatewave/fatewave-api/internal/middleware"
	"github.com/fatewave/fatewave-api/internal/model"
	"github.com/fatewave/fatewave-api/internal/repository"
	"github.com/fatewave/fatewave-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg         config.Config
	Users       *repository.UserRepo
	Tokens      *repository.TokenRepo
	Revocations *repository.RevocationRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, r *repository.RevocationRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Revocations: r}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=100"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID         uint64 `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
	IsPremium  bool   `json:"is_premium"`
}
type authData struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issueTokens creates an access/refresh pair for a user and persists the
// refresh token hash with the caller's device metadata.
func (h *AuthHandler) issueTokens(ctx context.Context, c echo.Context, u model.User) (*authData, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}

	var ip, ua *string
	if v := c.RealIP(); v != "" {
		ip = &v
	}
	if v := c.Request().UserAgent(); v != "" {
		ua = &v
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw),
		uuid.NewString(), nil, ip, ua, refresh.Exp); err != nil {
		return nil, err
	}

	return &authData{
		User:    userPart{ID: u.ID, Email: u.Email, Name: u.Name, UsageCount: u.UsageCount, IsPremium: u.IsPremium},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return utils.FailWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid registration data", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Name, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return utils.Fail(c, http.StatusBadRequest, "EMAIL_EXISTS", "email already registered")
		}
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "create user failed")
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "load user failed")
	}

	data, err := h.issueTokens(ctx, c, u)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "issue tokens failed")
	}
	return utils.Created(c, "registered", data)
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "email and password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return utils.Fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		}
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "query failed")
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return utils.Fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	}

	data, err := h.issueTokens(ctx, c, u)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "issue tokens failed")
	}
	return utils.OK(c, "logged in", data)
}

// Refresh: validate by hash, revoke the old token, issue a new pair
// (rotate-on-use).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return utils.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return utils.Fail(c, http.StatusUnauthorized, "INVALID_REFRESH", "invalid refresh token")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || !u.IsActive {
		return utils.Fail(c, http.StatusUnauthorized, "INVALID_REFRESH", "invalid refresh token")
	}

	data, err := h.issueTokens(ctx, c, u)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "issue tokens failed")
	}
	return utils.OK(c, "token refreshed", data)
}

// RefreshAccess: validate a refresh token and return a new access token
// WITHOUT rotating the refresh token. Clients that keep one long-lived
// session per device use this to renew the short-lived access token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return utils.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return utils.Fail(c, http.StatusUnauthorized, "INVALID_REFRESH", "invalid refresh token")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || !u.IsActive {
		return utils.Fail(c, http.StatusUnauthorized, "INVALID_REFRESH", "invalid refresh token")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "issue access failed")
	}
	return utils.OK(c, "token refreshed", map[string]interface{}{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout supports two modes: revoking a specific refresh token (body) or
// revoking every session for the user (valid bearer, empty body). When a
// bearer accompanies the request, its jti also goes on the revocation list
// so the access token dies immediately instead of at natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// A bearer is optional here; parse it ourselves so the endpoint works
	// without the JWT middleware.
	var claims *utils.AccessClaims
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if cl, err := utils.VerifyAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			claims = &cl
		}
	}

	var req refreshReq
	_ = c.Bind(&req) // invalid JSON simply leaves the token empty
	refreshToken := strings.TrimSpace(req.RefreshToken)

	if claims != nil {
		// Blacklist the presented access token until it would have expired.
		if err := h.Revocations.Revoke(ctx, claims.JTI, claims.UserID, "logout", claims.Exp); err != nil {
			return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "logout failed")
		}
	}

	switch {
	case claims != nil && refreshToken == "":
		// Log the user out of all sessions across devices.
		if err := h.Tokens.RevokeAllForUser(ctx, claims.UserID); err != nil {
			return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "logout failed")
		}
		return utils.OK(c, "logged out", nil)

	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return utils.Fail(c, http.StatusUnauthorized, "INVALID_REFRESH", "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "logout failed")
		}
		return utils.OK(c, "logged out", nil)
	}
	return utils.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "provide Authorization header or refresh_token")
}

// Session creates a fresh anonymous session identifier for unauthenticated
// actors. The id is the quota and ownership basis until the client
// registers.
func (h *AuthHandler) Session(c echo.Context) error {
	return utils.OK(c, "session created", map[string]string{"session_id": uuid.NewString()})
}

// Me returns the authenticated user's profile. Requires the strict JWT
// middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "not logged in")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return utils.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "not logged in")
		}
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "load user failed")
	}

	return utils.OK(c, "ok", map[string]interface{}{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"avatar_url":  u.AvatarURL,
		"is_premium":  u.IsPremium,
		"is_verified": u.IsVerified,
		"usage_count": u.UsageCount,
		"created_at":  u.CreatedAt.UTC().Format(time.RFC3339),
	})
}
