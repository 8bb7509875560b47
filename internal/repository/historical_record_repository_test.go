package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/academic-core-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func snapshotFor(student string) *models.HistoricalRecord {
	return &models.HistoricalRecord{
		TenantID:      "t1",
		StudentID:     student,
		YearID:        "year-1",
		UnitID:        "unit-1",
		SubjectName:   "Mathematics",
		PlannedHours:  80,
		GivenHours:    76,
		Presences:     70,
		Justified:     4,
		Unjustified:   2,
		AttendancePct: 97.4,
		FinalAverage:  7.5,
		Situation:     models.SituationApproved,
		GeneratedBy:   "admin-1",
	}
}

func TestHistoricalRecordInsertReportsCreation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoricalRecordRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO historical_records")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Insert(context.Background(), snapshotFor("s1"))
	require.NoError(t, err)
	require.True(t, created)

	// The conflict target swallows a duplicate: zero rows affected, no error.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO historical_records")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err = repo.Insert(context.Background(), snapshotFor("s1"))
	require.NoError(t, err)
	require.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoricalRecordInsertAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoricalRecordRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO historical_records")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := snapshotFor("s1")
	_, err := repo.Insert(context.Background(), record)
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)
	require.False(t, record.GeneratedAt.IsZero())
}

func TestHistoricalRecordCountByYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoricalRecordRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM historical_records WHERE tenant_id = $1 AND year_id = $2")).
		WithArgs("t1", "year-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(420))

	count, err := repo.CountByYear(context.Background(), "t1", "year-1")
	require.NoError(t, err)
	require.Equal(t, 420, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoricalRecordCountFailedByStudentYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoricalRecordRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM historical_records")).
		WithArgs("t1", "s1", "year-1", string(models.SituationFailed), string(models.SituationFailedAttendance)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountFailedByStudentYear(context.Background(), "t1", "s1", "year-1")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestHistoricalRecordListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoricalRecordRepository(db)
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "student_id", "year_id", "unit_id", "subject_name", "situation", "final_average"}).
		AddRow("rec-1", "t1", "s1", "year-1", "unit-1", "Mathematics", "APPROVED", 7.5)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tenant_id, student_id")).
		WithArgs("t1", "s1", "year-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM historical_records")).
		WithArgs("t1", "s1", "year-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), "t1", models.HistoricalRecordFilter{
		StudentID: "s1",
		YearID:    "year-1",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "rec-1", records[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
