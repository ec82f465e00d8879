package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken(testSecret, 7, "a@b.com", 30)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	require.NotEmpty(t, at.JTI)

	claims, err := VerifyAccessToken(testSecret, at.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, at.JTI, claims.JTI)
	assert.WithinDuration(t, at.Exp, claims.Exp, time.Second)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	at, err := NewAccessToken(testSecret, 7, "a@b.com", 30)
	require.NoError(t, err)

	_, err = VerifyAccessToken("other-secret", at.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	at, err := NewAccessToken(testSecret, 7, "a@b.com", -1)
	require.NoError(t, err)

	_, err = VerifyAccessToken(testSecret, at.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_RejectsNonAccessType(t *testing.T) {
	// A token signed with the right key but the wrong type claim must not
	// pass where an access token is expected.
	claims := jwt.MapClaims{
		"sub":  float64(7),
		"exp":  time.Now().Add(time.Hour).Unix(),
		"type": "refresh",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = VerifyAccessToken(testSecret, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_RejectsGarbage(t *testing.T) {
	_, err := VerifyAccessToken(testSecret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96) // 48 random bytes hex-encoded
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), rt.Exp, time.Minute)

	rt2, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.NotEqual(t, rt.Raw, rt2.Raw)
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("token-a")
	h2 := HashRefreshRaw("token-a")
	h3 := HashRefreshRaw("token-b")

	assert.Equal(t, h1, h2, "hashing must be deterministic")
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // sha256 hex
	assert.NotContains(t, h1, "token-a")
}
