package repository

import (
	"context"
	"database/sql"
	"time"
)

// maxActiveRefreshTokens bounds the number of simultaneously active refresh
// tokens per user. Creating one past the bound revokes the least recently
// used token instead of rejecting the request.
const maxActiveRefreshTokens = 5

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row together with its device
// metadata. When the user already holds maxActiveRefreshTokens active
// tokens, the one with the oldest last_used_at is revoked first (ties broken
// arbitrarily by the database).
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash, deviceID string, deviceName, ip, userAgent *string, exp time.Time) error {
	now := time.Now().UTC()

	var active int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM refresh_tokens WHERE user_id=? AND revoked_at IS NULL AND expires_at > ?",
		userID, now).Scan(&active)
	if err != nil {
		return err
	}
	if active >= maxActiveRefreshTokens {
		_, err = r.DB.ExecContext(ctx,
			`UPDATE refresh_tokens SET revoked_at=NOW()
			 WHERE user_id=? AND revoked_at IS NULL
			 ORDER BY last_used_at ASC LIMIT 1`,
			userID)
		if err != nil {
			return err
		}
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, device_id, device_name, ip_address, user_agent, expires_at, last_used_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		userID, tokenHash, deviceID, deviceName, ip, userAgent, exp, now)
	return err
}

// ValidateRefresh returns userID if a non-revoked, non-expired token exists.
// A successful validation touches last_used_at, which feeds the LRU
// eviction above.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid {
		return 0, sql.ErrNoRows
	}
	if time.Now().UTC().After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	_, _ = r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET last_used_at=NOW() WHERE token_hash=?", tokenHash)
	return userID, nil
}

// RevokeByHash marks a token as revoked (soft delete; the row stays for audit).
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes all of a user's active tokens, e.g. logout from
// every device.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
