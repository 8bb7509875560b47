package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dsicola/academic-core-api/internal/models"
)

// EvaluationRepository handles persistence of evaluation facts.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs the repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

const evaluationColumns = `id, tenant_id, unit_id, student_id, teacher_id, type, period, held_on, score, created_at, updated_at`

// Create inserts a new evaluation fact.
func (r *EvaluationRepository) Create(ctx context.Context, eval *models.Evaluation) error {
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	eval.CreatedAt = now
	eval.UpdatedAt = now
	const query = `INSERT INTO evaluations (id, tenant_id, unit_id, student_id, teacher_id, type, period, held_on, score, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`
	if _, err := r.db.ExecContext(ctx, query, eval.ID, eval.TenantID, eval.UnitID, eval.StudentID, eval.TeacherID, eval.Type, eval.Period, eval.HeldOn, eval.Score, now); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// UpdateScore rewrites the score of an existing evaluation.
func (r *EvaluationRepository) UpdateScore(ctx context.Context, tenantID, id string, score float64) error {
	const query = `UPDATE evaluations SET score = $1, updated_at = $2 WHERE tenant_id = $3 AND id = $4`
	res, err := r.db.ExecContext(ctx, query, score, time.Now().UTC(), tenantID, id)
	if err != nil {
		return fmt.Errorf("update evaluation score: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update evaluation score: no rows affected")
	}
	return nil
}

// FindByID returns an evaluation scoped to the tenant.
func (r *EvaluationRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Evaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluations WHERE tenant_id = $1 AND id = $2`, evaluationColumns)
	var eval models.Evaluation
	if err := r.db.GetContext(ctx, &eval, query, tenantID, id); err != nil {
		return nil, err
	}
	return &eval, nil
}

// ListByUnitAndStudent returns the evaluation facts of one student in one
// unit, ordered by date.
func (r *EvaluationRepository) ListByUnitAndStudent(ctx context.Context, tenantID, unitID, studentID string) ([]models.Evaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluations WHERE tenant_id = $1 AND unit_id = $2 AND student_id = $3 ORDER BY held_on`, evaluationColumns)
	var evals []models.Evaluation
	if err := r.db.SelectContext(ctx, &evals, query, tenantID, unitID, studentID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evals, nil
}
