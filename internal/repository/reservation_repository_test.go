package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReservationRepositoryGetStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM session_reservations WHERE id = $1")).
		WithArgs("res-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("submitted"))

	status, err := repo.GetStatus(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, models.StatusSubmitted, status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryUpdateStatusIf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE session_reservations SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2")).
		WithArgs("res-1", models.StatusSubmitted, models.StatusUnderReview, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.UpdateStatusIf(context.Background(), "res-1", models.StatusSubmitted, models.StatusUnderReview)
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryUpdateStatusIfStale(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE session_reservations SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2")).
		WithArgs("res-1", models.StatusSubmitted, models.StatusUnderReview, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.UpdateStatusIf(context.Background(), "res-1", models.StatusSubmitted, models.StatusUnderReview)
	require.NoError(t, err)
	require.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryFindDetailByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "session_id", "status", "notes", "submitted_at", "updated_at",
		"client_first_name", "client_last_name", "client_email", "client_phone",
		"formation_title", "session_start_date", "session_location", "session_price",
	}).AddRow("res-1", "u1", "s1", "submitted", nil, now, now,
		"Marie", "Dupont", "marie@example.com", nil,
		"Formation Initiale Taxi", now, "Rennes", "1800")

	mock.ExpectQuery("SELECT r.id, r.user_id, r.session_id").
		WithArgs("res-1").
		WillReturnRows(rows)

	detail, err := repo.FindDetailByID(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, "Marie", detail.ClientFirstName)
	require.Equal(t, "Formation Initiale Taxi", detail.FormationTitle)
	require.NoError(t, mock.ExpectationsWereMet())
}
