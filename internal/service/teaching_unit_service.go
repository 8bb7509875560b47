package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type teachingUnitRepository interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error)
	ListByYear(ctx context.Context, tenantID, yearID string) ([]models.TeachingUnit, error)
	Update(ctx context.Context, unit *models.TeachingUnit) error
}

// TeachingUnitService manages teaching unit reads and edits. Unit edits are
// academic writes and pass through the gate like any other.
type TeachingUnitService struct {
	repo teachingUnitRepository
}

// NewTeachingUnitService constructs the service.
func NewTeachingUnitService(repo teachingUnitRepository) *TeachingUnitService {
	return &TeachingUnitService{repo: repo}
}

// Get returns one unit by ID.
func (s *TeachingUnitService) Get(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error) {
	unit, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teaching unit")
	}
	return unit, nil
}

// ListByYear returns all units of a year.
func (s *TeachingUnitService) ListByYear(ctx context.Context, tenantID, yearID string) ([]models.TeachingUnit, error) {
	units, err := s.repo.ListByYear(ctx, tenantID, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching units")
	}
	return units, nil
}

type UpdateUnitInput struct {
	TeacherID    *string `json:"teacher_id" binding:"omitempty,uuid"`
	PlannedHours *int    `json:"planned_hours" binding:"omitempty,min=1"`
}

// Update applies partial edits to a unit.
func (s *TeachingUnitService) Update(ctx context.Context, tenantID, id string, input UpdateUnitInput) (*models.TeachingUnit, error) {
	unit, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if input.TeacherID != nil {
		unit.TeacherID = *input.TeacherID
	}
	if input.PlannedHours != nil {
		unit.PlannedHours = *input.PlannedHours
	}
	if err := s.repo.Update(ctx, unit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teaching unit")
	}
	return unit, nil
}
