package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fatewave/fatewave-api/internal/model"
	"github.com/fatewave/fatewave-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,name,password_hash,avatar_url,is_active,is_verified,is_premium,usage_count,created_at,updated_at"

// Create inserts a user and returns its ID. The name defaults to the email
// local part when empty, matching the registration contract.
func (r *UserRepo) Create(ctx context.Context, email, name, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name = strings.TrimSpace(name); name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash, is_active, is_verified) VALUES (?,?,?,1,0)",
		email, name, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	var (
		u      model.User
		avatar sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &avatar,
		&u.IsActive, &u.IsVerified, &u.IsPremium, &u.UsageCount,
		&u.CreatedAt, &u.UpdatedAt)
	if avatar.Valid {
		v := avatar.String
		u.AvatarURL = &v
	}
	return u, err
}

// IncrementUsageTx bumps a user's usage counter inside the caller's
// transaction, but only while the user is premium or still under the free
// limit. Zero affected rows means the quota gate closed between the
// pre-check and the write, and the whole transaction must be rolled back.
func (r *UserRepo) IncrementUsageTx(ctx context.Context, tx *sql.Tx, userID uint64, limit int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE users SET usage_count = usage_count + 1 WHERE id=? AND (is_premium = 1 OR usage_count < ?)",
		userID, limit)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrQuotaExceeded
	}
	return nil
}
