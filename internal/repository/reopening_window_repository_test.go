package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/academic-core-api/internal/models"
)

func pendingWindow() *models.ReopeningWindow {
	now := time.Now().UTC()
	return &models.ReopeningWindow{
		TenantID:     "t1",
		YearID:       "year-1",
		Reason:       "board-approved grade corrections",
		Scopes:       pq.StringArray{"GRADES"},
		ValidFrom:    now.Add(-time.Hour),
		ValidUntil:   now.Add(48 * time.Hour),
		AuthorizedBy: "admin-1",
	}
}

func TestReopeningWindowCreateGuard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReopeningWindowRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reopening_windows")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), pendingWindow())
	require.NoError(t, err)
	require.True(t, created)

	// The NOT EXISTS guard filters the insert when an active window already
	// exists: zero rows affected, no error.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reopening_windows")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err = repo.Create(context.Background(), pendingWindow())
	require.NoError(t, err)
	require.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReopeningWindowFindActiveByYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReopeningWindowRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "year_id", "reason", "scopes", "valid_from", "valid_until", "authorized_by", "created_at"}).
		AddRow("w-1", "t1", "year-1", "corrections", "{GRADES}", now.Add(-time.Hour), now.Add(time.Hour), "admin-1", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tenant_id, year_id")).
		WithArgs("t1", "year-1", now).
		WillReturnRows(rows)

	window, err := repo.FindActiveByYear(context.Background(), "t1", "year-1", now)
	require.NoError(t, err)
	require.NotNil(t, window)
	require.Equal(t, "w-1", window.ID)
	require.Equal(t, pq.StringArray{"GRADES"}, window.Scopes)
}

func TestReopeningWindowFindActiveByYearNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReopeningWindowRepository(db)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tenant_id, year_id")).
		WithArgs("t1", "year-1", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	window, err := repo.FindActiveByYear(context.Background(), "t1", "year-1", now)
	require.NoError(t, err)
	require.Nil(t, window)
}

func TestReopeningWindowTerminateIdempotence(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReopeningWindowRepository(db)
	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reopening_windows SET terminated_at = $1")).
		WithArgs(at, "admin-1", "done", "t1", "w-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	terminated, err := repo.Terminate(context.Background(), "t1", "w-1", "admin-1", "done", at)
	require.NoError(t, err)
	require.True(t, terminated)

	// The terminated_at IS NULL predicate makes a second attempt a no-op.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reopening_windows SET terminated_at = $1")).
		WithArgs(at, "admin-1", "done", "t1", "w-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	terminated, err = repo.Terminate(context.Background(), "t1", "w-1", "admin-1", "done", at)
	require.NoError(t, err)
	require.False(t, terminated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReopeningWindowListDueSpansTenants(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReopeningWindowRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "year_id", "valid_until"}).
		AddRow("w-1", "t1", "year-1", now.Add(-time.Hour)).
		AddRow("w-2", "t2", "year-9", now.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tenant_id, year_id")).
		WithArgs(now).
		WillReturnRows(rows)

	due, err := repo.ListDue(context.Background(), "", now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, "t2", due[1].TenantID)
}
