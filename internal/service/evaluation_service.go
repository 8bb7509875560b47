package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type evaluationRepository interface {
	Create(ctx context.Context, eval *models.Evaluation) error
	UpdateScore(ctx context.Context, tenantID, id string, score float64) error
	FindByID(ctx context.Context, tenantID, id string) (*models.Evaluation, error)
	ListByUnitAndStudent(ctx context.Context, tenantID, unitID, studentID string) ([]models.Evaluation, error)
}

type evaluationUnitReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error)
}

// EvaluationService records evaluation facts. Closed-year blocking happens
// in the gate before these methods run.
type EvaluationService struct {
	repo  evaluationRepository
	units evaluationUnitReader
}

// NewEvaluationService constructs the service.
func NewEvaluationService(repo evaluationRepository, units evaluationUnitReader) *EvaluationService {
	return &EvaluationService{repo: repo, units: units}
}

type CreateEvaluationInput struct {
	UnitID    string                `json:"unit_id" binding:"required,uuid"`
	StudentID string                `json:"student_id" binding:"required,uuid"`
	Type      models.EvaluationType `json:"type" binding:"required"`
	Period    int                   `json:"period" binding:"min=0,max=3"`
	HeldOn    time.Time             `json:"held_on" binding:"required"`
	Score     float64               `json:"score" binding:"min=0,max=10"`
}

// Create records an evaluation score. The acting teacher is stamped on the
// fact; the grade calculator only counts facts authored by the unit's
// assigned teacher.
func (s *EvaluationService) Create(ctx context.Context, tenantID, teacherID string, input CreateEvaluationInput) (*models.Evaluation, error) {
	if !input.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown evaluation type")
	}
	if input.Type == models.EvaluationTrimester && (input.Period < 1 || input.Period > 3) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "trimester evaluations require a period between 1 and 3")
	}
	if _, err := s.units.FindByID(ctx, tenantID, input.UnitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teaching unit")
	}
	eval := &models.Evaluation{
		TenantID:  tenantID,
		UnitID:    input.UnitID,
		StudentID: input.StudentID,
		TeacherID: teacherID,
		Type:      input.Type,
		Period:    input.Period,
		HeldOn:    input.HeldOn,
		Score:     input.Score,
	}
	if err := s.repo.Create(ctx, eval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluation")
	}
	return eval, nil
}

type RecoveryScoreInput struct {
	UnitID    string    `json:"unit_id" binding:"required,uuid"`
	StudentID string    `json:"student_id" binding:"required,uuid"`
	HeldOn    time.Time `json:"held_on" binding:"required"`
	Score     float64   `json:"score" binding:"min=0,max=10"`
}

// RecordRecovery records a recovery score for a student in a unit. The
// grade calculator substitutes it for the lowest pooled score when it
// improves the base average.
func (s *EvaluationService) RecordRecovery(ctx context.Context, tenantID, teacherID string, input RecoveryScoreInput) (*models.Evaluation, error) {
	if _, err := s.units.FindByID(ctx, tenantID, input.UnitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teaching unit")
	}
	eval := &models.Evaluation{
		TenantID:  tenantID,
		UnitID:    input.UnitID,
		StudentID: input.StudentID,
		TeacherID: teacherID,
		Type:      models.EvaluationRecovery,
		HeldOn:    input.HeldOn,
		Score:     input.Score,
	}
	if err := s.repo.Create(ctx, eval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record recovery score")
	}
	return eval, nil
}

type UpdateScoreInput struct {
	Score float64 `json:"score" binding:"min=0,max=10"`
}

// UpdateScore corrects an existing evaluation's score.
func (s *EvaluationService) UpdateScore(ctx context.Context, tenantID, id string, input UpdateScoreInput) (*models.Evaluation, error) {
	eval, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch evaluation")
	}
	if err := s.repo.UpdateScore(ctx, tenantID, id, input.Score); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evaluation score")
	}
	eval.Score = input.Score
	return eval, nil
}

// ListByStudent returns all evaluation facts for one student in one unit.
func (s *EvaluationService) ListByStudent(ctx context.Context, tenantID, unitID, studentID string) ([]models.Evaluation, error) {
	evals, err := s.repo.ListByUnitAndStudent(ctx, tenantID, unitID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	return evals, nil
}
