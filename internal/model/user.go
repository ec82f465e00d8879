package model

import "time"

// User represents a registered account as stored in the `users` table.  The
// json tags are omitted because these structs are used by the repository
// layer; handlers define separate response types with appropriate tags.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	Name         – display name (defaults to the email local part).
//	PasswordHash – bcrypt hashed password.
//	AvatarURL    – optional profile image URL.
//	IsActive     – whether the account may log in.
//	IsVerified   – whether the email address has been confirmed.
//	IsPremium    – premium accounts bypass the free usage quota.
//	UsageCount   – monotonically increasing count of generations consumed.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Name         string    // users.name
	PasswordHash string    // users.password_hash
	AvatarURL    *string   // users.avatar_url (nullable)
	IsActive     bool      // users.is_active
	IsVerified   bool      // users.is_verified
	IsPremium    bool      // users.is_premium
	UsageCount   int       // users.usage_count
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each refresh
// token belongs to a user and contains metadata for expiry, revocation and
// session eviction.  The plain token is not stored; only its SHA-256 hash.
// A user holds at most five active tokens; storing a sixth revokes the one
// with the oldest LastUsedAt.
type RefreshToken struct {
	ID         uint64     // refresh_tokens.id
	UserID     uint64     // refresh_tokens.user_id
	TokenHash  string     // refresh_tokens.token_hash (unique)
	DeviceID   string     // refresh_tokens.device_id
	DeviceName *string    // refresh_tokens.device_name (nullable)
	IPAddress  *string    // refresh_tokens.ip_address (nullable)
	UserAgent  *string    // refresh_tokens.user_agent (nullable)
	ExpiresAt  time.Time  // refresh_tokens.expires_at
	LastUsedAt time.Time  // refresh_tokens.last_used_at
	RevokedAt  *time.Time // refresh_tokens.revoked_at (null while active)
	CreatedAt  time.Time  // refresh_tokens.created_at
}

// TokenRevocation models a row in the `token_revocations` table: an access
// token (identified by its jti claim) invalidated before its natural expiry.
// The row is only useful until ExpiresAt, after which the token would have
// died on its own.
type TokenRevocation struct {
	ID        uint64    // token_revocations.id
	JTI       string    // token_revocations.jti (unique)
	UserID    uint64    // token_revocations.user_id
	Reason    string    // token_revocations.reason (e.g. "logout")
	ExpiresAt time.Time // token_revocations.expires_at
	CreatedAt time.Time // token_revocations.created_at
}
