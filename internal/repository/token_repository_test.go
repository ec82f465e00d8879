package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestStoreRefresh_EvictsOldestAtCapacity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Five active tokens: storing a sixth must revoke the one with the
	// oldest last_used_at before inserting.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM refresh_tokens WHERE user_id=\? AND revoked_at IS NULL AND expires_at > \?`).
		WithArgs(uint64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at=NOW\(\)`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(uint64(7), "hash-6", "device-6", nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(6, 1))

	repo := NewTokenRepo(db)
	err = repo.StoreRefresh(context.Background(), 7, "hash-6", "device-6", nil, nil, nil,
		time.Now().UTC().Add(30*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRefresh_NoEvictionUnderCapacity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Four active tokens: the revoke-oldest statement must not run.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM refresh_tokens`).
		WithArgs(uint64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(uint64(7), "hash-5", "device-5", nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	repo := NewTokenRepo(db)
	err = repo.StoreRefresh(context.Background(), 7, "hash-5", "device-5", nil, nil, nil,
		time.Now().UTC().Add(30*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRefresh_EvictionOrdersByLastUsed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The eviction target is chosen by last_used_at, not creation order.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM refresh_tokens`).
		WithArgs(uint64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec(`ORDER BY last_used_at ASC LIMIT 1`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(uint64(7), "h", "d", nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(6, 1))

	repo := NewTokenRepo(db)
	require.NoError(t, repo.StoreRefresh(context.Background(), 7, "h", "d", nil, nil, nil,
		time.Now().UTC().Add(time.Hour)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRefresh_RevokedAndExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Revoked token.
	mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens`).
		WithArgs("revoked-hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().Add(time.Hour), time.Now().Add(-time.Minute)))

	repo := NewTokenRepo(db)
	_, err = repo.ValidateRefresh(context.Background(), "revoked-hash")
	require.Error(t, err)

	// Expired token.
	mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens`).
		WithArgs("expired-hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().Add(-time.Hour), nil))

	_, err = repo.ValidateRefresh(context.Background(), "expired-hash")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
