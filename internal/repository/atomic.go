package repository

import (
	"context"
	"database/sql"

	"github.com/fatewave/fatewave-api/internal/model"
)

// Store bundles the repositories that participate in the orchestrated write
// unit and owns the transaction around them. The divination record, the
// user's counter increment, the request audit row and the template usage
// row commit or roll back together.
type Store struct {
	DB          *sql.DB
	Users       *UserRepo
	Divinations *DivinationRepo
	UsageLogs   *UsageLogRepo
	Templates   *TemplateRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:          db,
		Users:       NewUserRepo(db),
		Divinations: NewDivinationRepo(db),
		UsageLogs:   NewUsageLogRepo(db),
		Templates:   NewTemplateRepo(db),
	}
}

// SaveDivination runs the all-or-nothing write phase of one generation:
//
//  1. re-assert the quota inside the transaction — registered users through
//     the atomic conditional counter update, anonymous sessions through a
//     re-count against the free limit;
//  2. insert the divination record;
//  3. append the request audit row;
//  4. append the template usage row.
//
// ErrQuotaExceeded aborts with no side effects. Any other error rolls the
// whole unit back.
func (s *Store) SaveDivination(ctx context.Context, rec *model.Divination, entry *model.UsageLog, usage *model.TemplateUsage, freeLimit int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }() // no-op after a successful commit

	switch {
	case rec.UserID != nil:
		if err := s.Users.IncrementUsageTx(ctx, tx, *rec.UserID, freeLimit); err != nil {
			return err
		}
	case rec.SessionID != nil:
		n, err := s.Divinations.CountBySessionTx(ctx, tx, *rec.SessionID)
		if err != nil {
			return err
		}
		if n >= freeLimit {
			return ErrQuotaExceeded
		}
	default:
		return ErrQuotaExceeded
	}

	if err := s.Divinations.CreateTx(ctx, tx, rec); err != nil {
		return err
	}
	if entry != nil {
		entry.UserID = rec.UserID
		entry.SessionID = rec.SessionID
		if err := s.UsageLogs.InsertTx(ctx, tx, entry); err != nil {
			return err
		}
	}
	if usage != nil {
		usage.DivinationID = rec.ID
		if err := s.Templates.InsertUsageTx(ctx, tx, usage); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountBySession exposes the anonymous quota basis to the service layer.
func (s *Store) CountBySession(ctx context.Context, sessionID string) (int, error) {
	return s.Divinations.CountBySession(ctx, sessionID)
}

// ListByActor exposes paginated history to the service layer.
func (s *Store) ListByActor(ctx context.Context, userID *uint64, sessionID string, page, size int) ([]model.Divination, int, error) {
	return s.Divinations.ListByActor(ctx, userID, sessionID, page, size)
}

// DailyStats exposes the per-day aggregate to the service layer.
func (s *Store) DailyStats(ctx context.Context, days int) ([]model.DailyCount, error) {
	return s.Divinations.DailyStats(ctx, days)
}
