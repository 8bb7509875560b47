package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dsicola/academic-core-api/internal/models"
)

// TeachingUnitRepository handles persistence of teaching units.
type TeachingUnitRepository struct {
	db *sqlx.DB
}

// NewTeachingUnitRepository constructs the repository.
func NewTeachingUnitRepository(db *sqlx.DB) *TeachingUnitRepository {
	return &TeachingUnitRepository{db: db}
}

const teachingUnitColumns = `id, tenant_id, year_id, subject_id, subject_name, teacher_id, class_group_id, planned_hours, created_at, updated_at`

// FindByID returns a teaching unit scoped to the tenant.
func (r *TeachingUnitRepository) FindByID(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error) {
	query := fmt.Sprintf(`SELECT %s FROM teaching_units WHERE tenant_id = $1 AND id = $2`, teachingUnitColumns)
	var unit models.TeachingUnit
	if err := r.db.GetContext(ctx, &unit, query, tenantID, id); err != nil {
		return nil, err
	}
	return &unit, nil
}

// ListByYear returns all teaching units belonging to an academic year.
func (r *TeachingUnitRepository) ListByYear(ctx context.Context, tenantID, yearID string) ([]models.TeachingUnit, error) {
	query := fmt.Sprintf(`SELECT %s FROM teaching_units WHERE tenant_id = $1 AND year_id = $2 ORDER BY subject_name`, teachingUnitColumns)
	var units []models.TeachingUnit
	if err := r.db.SelectContext(ctx, &units, query, tenantID, yearID); err != nil {
		return nil, fmt.Errorf("list teaching units: %w", err)
	}
	return units, nil
}

// Update rewrites the mutable fields of a unit.
func (r *TeachingUnitRepository) Update(ctx context.Context, unit *models.TeachingUnit) error {
	unit.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teaching_units
        SET subject_id = $1, subject_name = $2, teacher_id = $3, class_group_id = $4, planned_hours = $5, updated_at = $6
        WHERE tenant_id = $7 AND id = $8`
	res, err := r.db.ExecContext(ctx, query, unit.SubjectID, unit.SubjectName, unit.TeacherID, unit.ClassGroupID, unit.PlannedHours, unit.UpdatedAt, unit.TenantID, unit.ID)
	if err != nil {
		return fmt.Errorf("update teaching unit: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update teaching unit: no rows affected")
	}
	return nil
}
