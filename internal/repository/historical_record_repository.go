package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dsicola/academic-core-api/internal/models"
)

// HistoricalRecordRepository persists consolidated snapshots. It deliberately
// exposes no update or delete: records are written once during consolidation
// and frozen afterwards.
type HistoricalRecordRepository struct {
	db *sqlx.DB
}

// NewHistoricalRecordRepository constructs the repository.
func NewHistoricalRecordRepository(db *sqlx.DB) *HistoricalRecordRepository {
	return &HistoricalRecordRepository{db: db}
}

const historicalRecordColumns = `id, tenant_id, student_id, year_id, unit_id, subject_name, planned_hours, given_hours, presences, justified, unjustified, attendance_pct, final_average, partial_average, situation, note, generated_by, generated_at`

// CountByYear returns how many snapshots already exist for the year. Any
// non-zero count makes a consolidation run a strict no-op.
func (r *HistoricalRecordRepository) CountByYear(ctx context.Context, tenantID, yearID string) (int, error) {
	const query = `SELECT COUNT(*) FROM historical_records WHERE tenant_id = $1 AND year_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tenantID, yearID); err != nil {
		return 0, fmt.Errorf("count historical records: %w", err)
	}
	return count, nil
}

// Insert writes one snapshot. The conflict target makes a crashed-and-rerun
// batch resume cleanly: rows already written are skipped, never rewritten.
// Returns whether a row was actually created.
func (r *HistoricalRecordRepository) Insert(ctx context.Context, record *models.HistoricalRecord) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.GeneratedAt.IsZero() {
		record.GeneratedAt = time.Now().UTC()
	}
	const query = `INSERT INTO historical_records
        (id, tenant_id, student_id, year_id, unit_id, subject_name, planned_hours, given_hours, presences, justified, unjustified, attendance_pct, final_average, partial_average, situation, note, generated_by, generated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        ON CONFLICT (tenant_id, student_id, year_id, unit_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		record.ID, record.TenantID, record.StudentID, record.YearID, record.UnitID,
		record.SubjectName, record.PlannedHours, record.GivenHours,
		record.Presences, record.Justified, record.Unjustified, record.AttendancePct,
		record.FinalAverage, record.PartialAverage, record.Situation, record.Note,
		record.GeneratedBy, record.GeneratedAt)
	if err != nil {
		return false, fmt.Errorf("insert historical record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert historical record: %w", err)
	}
	return affected == 1, nil
}

// List returns snapshots matching the filter.
func (r *HistoricalRecordRepository) List(ctx context.Context, tenantID string, filter models.HistoricalRecordFilter) ([]models.HistoricalRecord, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.YearID != "" {
		conditions = append(conditions, fmt.Sprintf("year_id = $%d", len(args)+1))
		args = append(args, filter.YearID)
	}
	if filter.UnitID != "" {
		conditions = append(conditions, fmt.Sprintf("unit_id = $%d", len(args)+1))
		args = append(args, filter.UnitID)
	}

	clause := " WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM historical_records%s ORDER BY subject_name LIMIT %d OFFSET %d`,
		historicalRecordColumns, clause, size, offset)

	var records []models.HistoricalRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list historical records: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM historical_records"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count historical records: %w", err)
	}
	return records, total, nil
}

// CountFailedByStudentYear counts the failed subject snapshots of one
// student in one year. Consulted by the progression validator against the
// tenant's tolerated failed-subject count.
func (r *HistoricalRecordRepository) CountFailedByStudentYear(ctx context.Context, tenantID, studentID, yearID string) (int, error) {
	const query = `SELECT COUNT(*) FROM historical_records
        WHERE tenant_id = $1 AND student_id = $2 AND year_id = $3 AND situation IN ($4, $5)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tenantID, studentID, yearID, models.SituationFailed, models.SituationFailedAttendance); err != nil {
		return 0, fmt.Errorf("count failed snapshots: %w", err)
	}
	return count, nil
}
