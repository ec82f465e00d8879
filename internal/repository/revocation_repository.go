package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationRepo is the access-token blacklist: jtis of tokens invalidated
// before their natural expiry. MySQL is the durable store; Redis mirrors
// each entry with a TTL so the per-request check on the hot path is a
// single key lookup. A nil Redis client degrades to database-only checks.
type RevocationRepo struct {
	DB  *sql.DB
	RDB *redis.Client
}

func NewRevocationRepo(db *sql.DB, rdb *redis.Client) *RevocationRepo {
	return &RevocationRepo{DB: db, RDB: rdb}
}

func revocationKey(jti string) string { return "revoked:" + jti }

// Revoke records a jti as invalid until its natural expiry. Writing past an
// already-expired expiry is a no-op: the token is dead anyway.
func (r *RevocationRepo) Revoke(ctx context.Context, jti string, userID uint64, reason string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO token_revocations (jti, user_id, reason, expires_at) VALUES (?,?,?,?)",
		jti, userID, reason, expiresAt.UTC())
	if err != nil {
		return err
	}
	if r.RDB != nil {
		// Best effort: a failed mirror write only costs a DB lookup later.
		_ = r.RDB.SetEx(ctx, revocationKey(jti), "1", ttl).Err()
	}
	return nil
}

// IsRevoked reports whether a jti is on the blacklist. A Redis hit is
// authoritative; a miss falls through to the database because the mirror
// may have been unavailable when the revocation was written.
func (r *RevocationRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	if r.RDB != nil {
		if err := r.RDB.Get(ctx, revocationKey(jti)).Err(); err == nil {
			return true, nil
		}
	}
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM token_revocations WHERE jti=? AND expires_at > ? LIMIT 1",
		jti, time.Now().UTC()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
