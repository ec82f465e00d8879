package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatewave/fatewave-api/internal/utils"
)

const testSecret = "mw-test-secret"

// revocationSet is an in-memory RevocationChecker.
type revocationSet map[string]bool

func (s revocationSet) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s[jti], nil
}

func echoWith(mw echo.MiddlewareFunc) (*echo.Echo, echo.HandlerFunc) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	return e, mw(ok)
}

func request(authHeader string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return req
}

func TestJWTAuth_ValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "a@b.com", 30)
	require.NoError(t, err)

	e, h := echoWith(JWTAuth(testSecret, revocationSet{}))
	rec := httptest.NewRecorder()
	c := e.NewContext(request("Bearer "+at.Token), rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), c.Get(CtxUserID))
	assert.Equal(t, "a@b.com", c.Get(CtxEmail))
	assert.Equal(t, at.JTI, c.Get(CtxTokenJTI))
}

func TestJWTAuth_MissingAndMalformed(t *testing.T) {
	e, h := echoWith(JWTAuth(testSecret, revocationSet{}))

	for _, header := range []string{"", "Basic abc", "Bearer garbage"} {
		rec := httptest.NewRecorder()
		c := e.NewContext(request(header), rec)
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "a@b.com", 30)
	require.NoError(t, err)

	e, h := echoWith(JWTAuth(testSecret, revocationSet{at.JTI: true}))
	rec := httptest.NewRecorder()
	c := e.NewContext(request("Bearer "+at.Token), rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth_ValidTokenSetsIdentity(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 9, "x@y.com", 30)
	require.NoError(t, err)

	e, h := echoWith(OptionalAuth(testSecret, revocationSet{}))
	rec := httptest.NewRecorder()
	c := e.NewContext(request("Bearer "+at.Token), rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(9), c.Get(CtxUserID))
}

func TestOptionalAuth_InvalidTokenStaysAnonymous(t *testing.T) {
	e, h := echoWith(OptionalAuth(testSecret, revocationSet{}))

	for _, header := range []string{"", "Bearer nonsense"} {
		rec := httptest.NewRecorder()
		c := e.NewContext(request(header), rec)
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusOK, rec.Code, "anonymous requests pass through")
		assert.Nil(t, c.Get(CtxUserID))
	}
}

func TestOptionalAuth_RevokedTokenStaysAnonymous(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 9, "x@y.com", 30)
	require.NoError(t, err)

	e, h := echoWith(OptionalAuth(testSecret, revocationSet{at.JTI: true}))
	rec := httptest.NewRecorder()
	c := e.NewContext(request("Bearer "+at.Token), rec)

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, c.Get(CtxUserID))
}

func TestIdentityKey(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CtxUserID, uint64(7))
	assert.Equal(t, "u7", identityKey(c))

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?session_id=abc", nil), httptest.NewRecorder())
	assert.Equal(t, "sabc", identityKey(c))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-ID", "hdr")
	c = e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "shdr", identityKey(c))

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "guest", identityKey(c))
}
