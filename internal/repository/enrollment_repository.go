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

// EnrollmentRepository handles persistence of annual enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, tenant_id, student_id, year_id, class_group_id, final_status, enrolled_at`

// Create inserts a new annual enrollment with a PENDING final status.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.AnnualEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.FinalStatus == "" {
		enrollment.FinalStatus = models.FinalStatusPending
	}
	enrollment.EnrolledAt = time.Now().UTC()
	const query = `INSERT INTO annual_enrollments (id, tenant_id, student_id, year_id, class_group_id, final_status, enrolled_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, enrollment.ID, enrollment.TenantID, enrollment.StudentID, enrollment.YearID, enrollment.ClassGroupID, enrollment.FinalStatus, enrollment.EnrolledAt); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment scoped to the tenant.
func (r *EnrollmentRepository) FindByID(ctx context.Context, tenantID, id string) (*models.AnnualEnrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM annual_enrollments WHERE tenant_id = $1 AND id = $2`, enrollmentColumns)
	var enrollment models.AnnualEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, tenantID, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindLatestByStudent returns the student's most recent enrollment strictly
// before the given year number, with group ordinal context attached.
func (r *EnrollmentRepository) FindLatestByStudent(ctx context.Context, tenantID, studentID string, beforeYear int) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.tenant_id, e.student_id, e.year_id, e.class_group_id, e.final_status, e.enrolled_at,
        y.year AS year_number, g.name AS group_name, g.grade_ordinal
        FROM annual_enrollments e
        JOIN academic_years y ON y.id = e.year_id
        JOIN class_groups g ON g.id = e.class_group_id
        WHERE e.tenant_id = $1 AND e.student_id = $2 AND y.year < $3
        ORDER BY y.year DESC LIMIT 1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, tenantID, studentID, beforeYear); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByYear returns all enrollments of an academic year.
func (r *EnrollmentRepository) ListByYear(ctx context.Context, tenantID, yearID string) ([]models.AnnualEnrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM annual_enrollments WHERE tenant_id = $1 AND year_id = $2`, enrollmentColumns)
	var enrollments []models.AnnualEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, tenantID, yearID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// List returns enrollments matching the filter.
func (r *EnrollmentRepository) List(ctx context.Context, tenantID string, filter models.EnrollmentFilter) ([]models.AnnualEnrollment, int, error) {
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
	if filter.ClassGroupID != "" {
		conditions = append(conditions, fmt.Sprintf("class_group_id = $%d", len(args)+1))
		args = append(args, filter.ClassGroupID)
	}
	if filter.FinalStatus != "" {
		conditions = append(conditions, fmt.Sprintf("final_status = $%d", len(args)+1))
		args = append(args, filter.FinalStatus)
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

	query := fmt.Sprintf(`SELECT %s FROM annual_enrollments%s ORDER BY enrolled_at DESC LIMIT %d OFFSET %d`,
		enrollmentColumns, clause, size, offset)

	var enrollments []models.AnnualEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM annual_enrollments"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// SetFinalStatus records the aggregate outcome computed at consolidation.
func (r *EnrollmentRepository) SetFinalStatus(ctx context.Context, tenantID, id string, status models.FinalStatus) error {
	const query = `UPDATE annual_enrollments SET final_status = $1 WHERE tenant_id = $2 AND id = $3`
	if _, err := r.db.ExecContext(ctx, query, status, tenantID, id); err != nil {
		return fmt.Errorf("set enrollment final status: %w", err)
	}
	return nil
}
