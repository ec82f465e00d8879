package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding and decoding functions
	"errors"        // sentinel errors for token verification
	"time"          // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // jti generation
)

// AccessToken represents a signed JWT access token along with its expiry and
// unique identifier.  The Token field contains the JWT string.  JTI is the
// token id embedded in the claims; it is what the revocation list stores
// when a token is invalidated before its natural expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
	JTI   string    // unique token id (uuid)
}

// RefreshToken represents a long-lived opaque token used to obtain new
// access tokens.  The Raw field contains the secret returned to the client.
// In the database only a SHA-256 hash of the raw string is stored.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// AccessClaims is the verified content of an access token.
type AccessClaims struct {
	UserID uint64
	Email  string
	JTI    string
	Exp    time.Time
}

// ErrInvalidToken is returned by VerifyAccessToken for any token that fails
// signature, expiry, shape or type-claim checks.  Callers treat all of these
// uniformly as an authentication failure.
var ErrInvalidToken = errors.New("invalid access token")

// NewAccessToken builds and signs an HS256 JWT for a user.  The claims
// follow the session model used across the API: subject (sub) holds the
// user id, email is informational, exp/iat bound the lifetime, jti gives
// the token a unique id for the revocation list, and the fixed
// `type: "access"` claim prevents a refresh-shaped token from being
// accepted where an access token is expected.
func NewAccessToken(secret string, userID uint64, email string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
		"jti":   jti,
		"type":  "access",
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp, JTI: jti}, nil
}

// VerifyAccessToken parses and validates a signed access token string.  It
// checks the HMAC signature, expiry and the `type` claim, and extracts the
// subject and jti.  Revocation-list checks are the caller's responsibility
// since they require a store.
func VerifyAccessToken(secret, raw string) (AccessClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return AccessClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != "access" {
		return AccessClaims{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64) // numeric claims decode as float64
	if !ok || sub <= 0 {
		return AccessClaims{}, ErrInvalidToken
	}
	out := AccessClaims{UserID: uint64(sub)}
	out.Email, _ = claims["email"].(string)
	out.JTI, _ = claims["jti"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		out.Exp = time.Unix(int64(exp), 0).UTC()
	}
	return out, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw) and
// its expiration time.  The ttlDays parameter controls how many days the
// refresh token is valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a hex
// string.  Storing only the hash prevents attackers from using stolen
// database entries to refresh sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
