package repository

import (
	"context"
	"database/sql"

	"github.com/fatewave/fatewave-api/internal/model"
)

// DivinationRepo provides persistence for divination records. Inserts that
// participate in the orchestrated write unit take an explicit *sql.Tx; the
// caller owns commit/rollback. All timestamps are stored in UTC.
type DivinationRepo struct{ DB *sql.DB }

func NewDivinationRepo(db *sql.DB) *DivinationRepo { return &DivinationRepo{DB: db} }

// CreateTx inserts a new divination record within the scope of an existing
// transaction. It populates the generated ID and created_at on the provided
// record. The owning actor columns are written once here and never updated.
func (r *DivinationRepo) CreateTx(ctx context.Context, tx *sql.Tx, d *model.Divination) error {
	const q = `INSERT INTO divinations
		(user_id, session_id, question, answer, divination_type, model_used, language, user_ip, user_agent)
		VALUES (?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		d.UserID, d.SessionID, d.Question, d.Answer, d.DivinationType,
		d.ModelUsed, d.Language, d.UserIP, d.UserAgent)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	// Query back created_at to return the authoritative timestamp.
	return tx.QueryRowContext(ctx,
		"SELECT created_at FROM divinations WHERE id=?", d.ID).Scan(&d.CreatedAt)
}

// CountBySession counts records owned by an anonymous session. This is the
// quota basis for unauthenticated actors.
func (r *DivinationRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM divinations WHERE session_id=?", sessionID).Scan(&n)
	return n, err
}

// CountBySessionTx is CountBySession inside the write transaction. The
// count-then-insert pair is not serialized across requests; two concurrent
// near-quota generations for the same session can both pass (documented
// weakness, registered users get the atomic gate instead).
func (r *DivinationRepo) CountBySessionTx(ctx context.Context, tx *sql.Tx, sessionID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM divinations WHERE session_id=?", sessionID).Scan(&n)
	return n, err
}

// ListByActor returns one page of an actor's records, newest first, plus the
// total count for pagination. Exactly one of userID/sessionID selects the
// actor; with neither, the result is empty.
func (r *DivinationRepo) ListByActor(ctx context.Context, userID *uint64, sessionID string, page, size int) ([]model.Divination, int, error) {
	var (
		where string
		arg   interface{}
	)
	switch {
	case userID != nil:
		where, arg = "user_id=?", *userID
	case sessionID != "":
		where, arg = "session_id=?", sessionID
	default:
		return nil, 0, nil
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM divinations WHERE "+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}

	const cols = "id,user_id,session_id,question,answer,divination_type,model_used,language,user_ip,user_agent,created_at"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+cols+" FROM divinations WHERE "+where+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		arg, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Divination
	for rows.Next() {
		var (
			d         model.Divination
			uid       sql.NullInt64
			sid, ip   sql.NullString
			userAgent sql.NullString
		)
		if err := rows.Scan(&d.ID, &uid, &sid, &d.Question, &d.Answer, &d.DivinationType,
			&d.ModelUsed, &d.Language, &ip, &userAgent, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		if uid.Valid {
			v := uint64(uid.Int64)
			d.UserID = &v
		}
		if sid.Valid {
			v := sid.String
			d.SessionID = &v
		}
		if ip.Valid {
			v := ip.String
			d.UserIP = &v
		}
		if userAgent.Valid {
			v := userAgent.String
			d.UserAgent = &v
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// DailyStats aggregates per-day record counts over the trailing N days.
func (r *DivinationRepo) DailyStats(ctx context.Context, days int) ([]model.DailyCount, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE_FORMAT(created_at, '%Y-%m-%d') AS d, COUNT(*) FROM divinations
		 WHERE created_at >= DATE_SUB(NOW(), INTERVAL ? DAY)
		 GROUP BY d ORDER BY d`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DailyCount
	for rows.Next() {
		var dc model.DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}
