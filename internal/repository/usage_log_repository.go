package repository

import (
	"context"
	"database/sql"

	"github.com/fatewave/fatewave-api/internal/model"
)

// UsageLogRepo appends request audit rows. The serving path only ever
// writes here; reads belong to offline analysis.
type UsageLogRepo struct{ DB *sql.DB }

func NewUsageLogRepo(db *sql.DB) *UsageLogRepo { return &UsageLogRepo{DB: db} }

// InsertTx appends one usage_logs row within the caller's transaction so
// the audit entry commits or rolls back with the record it accounts for.
func (r *UsageLogRepo) InsertTx(ctx context.Context, tx *sql.Tx, l *model.UsageLog) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO usage_logs (user_id, session_id, endpoint, method, status_code, user_ip, user_agent)
		 VALUES (?,?,?,?,?,?,?)`,
		l.UserID, l.SessionID, l.Endpoint, l.Method, l.StatusCode, l.UserIP, l.UserAgent)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}
