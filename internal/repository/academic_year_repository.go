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

// AcademicYearRepository handles persistence of academic years.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository constructs the repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

const academicYearColumns = `id, tenant_id, year, status, start_date, end_date, closed_at, closed_by, created_at`

// List returns years for the tenant filtered by the provided criteria.
func (r *AcademicYearRepository) List(ctx context.Context, tenantID string, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}

	clause := " WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM academic_years%s ORDER BY year DESC LIMIT %d OFFSET %d`,
		academicYearColumns, clause, size, offset)

	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list academic years: %w", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM academic_years" + clause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count academic years: %w", err)
	}
	return years, total, nil
}

// FindByID returns a year scoped to the tenant.
func (r *AcademicYearRepository) FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	query := fmt.Sprintf(`SELECT %s FROM academic_years WHERE tenant_id = $1 AND id = $2`, academicYearColumns)
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, tenantID, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// Create inserts a new academic year.
func (r *AcademicYearRepository) Create(ctx context.Context, year *models.AcademicYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	year.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO academic_years (id, tenant_id, year, status, start_date, end_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, year.ID, year.TenantID, year.Year, year.Status, year.StartDate, year.EndDate, year.CreatedAt); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// Close marks an ACTIVE year as CLOSED. The status guard makes the
// transition idempotent at the row level: a second close affects zero rows.
func (r *AcademicYearRepository) Close(ctx context.Context, tenantID, id, actorID string, closedAt time.Time) (bool, error) {
	const query = `UPDATE academic_years SET status = $1, closed_at = $2, closed_by = $3
        WHERE tenant_id = $4 AND id = $5 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, models.YearStatusClosed, closedAt, actorID, tenantID, id, models.YearStatusActive)
	if err != nil {
		return false, fmt.Errorf("close academic year: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close academic year: %w", err)
	}
	return affected == 1, nil
}
