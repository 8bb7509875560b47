package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type yearRepository interface {
	List(ctx context.Context, tenantID string, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error)
	FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
	Create(ctx context.Context, year *models.AcademicYear) error
	Close(ctx context.Context, tenantID, id, actorID string, closedAt time.Time) (bool, error)
}

type yearConsolidator interface {
	Run(ctx context.Context, tenantID, yearID, actorID string) (*models.ConsolidationReport, error)
}

// YearService owns the academic year lifecycle. A year is either ACTIVE or
// CLOSED, and CLOSED is terminal: there is no reopen transition, only scoped
// reopening windows managed elsewhere.
type YearService struct {
	repo          yearRepository
	consolidation yearConsolidator
	audit         *AuditService
	notifications *NotificationService
	logger        *zap.Logger
}

// NewYearService constructs the service.
func NewYearService(repo yearRepository, consolidation yearConsolidator, audit *AuditService, notifications *NotificationService, logger *zap.Logger) *YearService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YearService{
		repo:          repo,
		consolidation: consolidation,
		audit:         audit,
		notifications: notifications,
		logger:        logger,
	}
}

// List returns academic years for the tenant.
func (s *YearService) List(ctx context.Context, tenantID string, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	years, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	return years, total, nil
}

// Get returns a single year by ID.
func (s *YearService) Get(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	year, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch academic year")
	}
	return year, nil
}

type CreateYearInput struct {
	Year      int       `json:"year" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// Create opens a new academic year in the ACTIVE state.
func (s *YearService) Create(ctx context.Context, tenantID string, input CreateYearInput) (*models.AcademicYear, error) {
	if !input.EndDate.After(input.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}
	year := &models.AcademicYear{
		TenantID:  tenantID,
		Year:      input.Year,
		Status:    models.YearStatusActive,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.repo.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}
	return year, nil
}

// Close transitions a year from ACTIVE to CLOSED and triggers consolidation.
// The transition commits first; a consolidation failure leaves the year
// CLOSED and is reported for a later manual run.
func (s *YearService) Close(ctx context.Context, tenantID, id, actorID string) (*models.AcademicYear, *models.ConsolidationReport, error) {
	year, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	if year.Status == models.YearStatusClosed {
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "academic year is already closed")
	}

	closedAt := time.Now().UTC()
	closed, err := s.repo.Close(ctx, tenantID, id, actorID, closedAt)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close academic year")
	}
	if !closed {
		// Lost the race against a concurrent close.
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "academic year is already closed")
	}

	year.Status = models.YearStatusClosed
	year.ClosedAt = &closedAt
	year.ClosedBy = &actorID

	s.audit.RecordChange(ctx, &models.AuditLog{
		TenantID:   tenantID,
		UserID:     &actorID,
		Action:     models.AuditActionYearClose,
		Resource:   "academic_year",
		ResourceID: &id,
	}, map[string]string{"status": string(models.YearStatusActive)}, map[string]string{"status": string(models.YearStatusClosed)})
	s.notifications.Notify(tenantID, NotifyYearClosed, map[string]interface{}{
		"year_id":   id,
		"closed_by": actorID,
	})

	report, err := s.consolidation.Run(ctx, tenantID, id, actorID)
	if err != nil {
		// The year stays closed; consolidation can be re-run on its own.
		s.logger.Sugar().Errorw("consolidation failed after year close",
			"tenant_id", tenantID, "year_id", id, "error", err)
		return year, nil, nil
	}
	return year, report, nil
}
