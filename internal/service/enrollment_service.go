package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.AnnualEnrollment) error
	FindByID(ctx context.Context, tenantID, id string) (*models.AnnualEnrollment, error)
	List(ctx context.Context, tenantID string, filter models.EnrollmentFilter) ([]models.AnnualEnrollment, int, error)
}

type enrollmentYearReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
}

type enrollmentGroupReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.ClassGroup, error)
}

type progressionValidator interface {
	Validate(ctx context.Context, tenantID string, req ProgressionRequest) error
}

// EnrollmentService registers students into class groups, consulting the
// progression validator before every creation.
type EnrollmentService struct {
	repo        enrollmentRepository
	years       enrollmentYearReader
	groups      enrollmentGroupReader
	progression progressionValidator
	audit       *AuditService
	logger      *zap.Logger
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(
	repo enrollmentRepository,
	years enrollmentYearReader,
	groups enrollmentGroupReader,
	progression progressionValidator,
	audit *AuditService,
	logger *zap.Logger,
) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:        repo,
		years:       years,
		groups:      groups,
		progression: progression,
		audit:       audit,
		logger:      logger,
	}
}

type CreateEnrollmentInput struct {
	StudentID    string `json:"student_id" binding:"required,uuid"`
	YearID       string `json:"year_id" binding:"required,uuid"`
	ClassGroupID string `json:"class_group_id" binding:"required,uuid"`
	Override     bool   `json:"override"`
}

// Create enrolls a student. The progression rules run against the frozen
// outcome of the student's most recent prior year; the closed-year gate has
// already vetted the target year by the time this is called.
func (s *EnrollmentService) Create(ctx context.Context, tenantID, actorID string, caps models.CapabilitySet, input CreateEnrollmentInput) (*models.AnnualEnrollment, error) {
	year, err := s.years.FindByID(ctx, tenantID, input.YearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch academic year")
	}
	group, err := s.groups.FindByID(ctx, tenantID, input.ClassGroupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch class group")
	}
	if group.YearID != year.ID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class group does not belong to the target year")
	}

	if err := s.progression.Validate(ctx, tenantID, ProgressionRequest{
		StudentID:    input.StudentID,
		TargetYear:   year.Year,
		TargetGroup:  group,
		Capabilities: caps,
		Override:     input.Override,
		ActorID:      actorID,
	}); err != nil {
		return nil, err
	}

	enrollment := &models.AnnualEnrollment{
		TenantID:     tenantID,
		StudentID:    input.StudentID,
		YearID:       input.YearID,
		ClassGroupID: input.ClassGroupID,
		FinalStatus:  models.FinalStatusPending,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.audit.Record(ctx, &models.AuditLog{
		TenantID:   tenantID,
		UserID:     &actorID,
		Action:     models.AuditActionEnrollmentCreate,
		Resource:   "annual_enrollment",
		ResourceID: &enrollment.ID,
	})
	return enrollment, nil
}

// Get returns one enrollment by ID.
func (s *EnrollmentService) Get(ctx context.Context, tenantID, id string) (*models.AnnualEnrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch enrollment")
	}
	return enrollment, nil
}

// List returns enrollments matching the filter.
func (s *EnrollmentService) List(ctx context.Context, tenantID string, filter models.EnrollmentFilter) ([]models.AnnualEnrollment, int, error) {
	enrollments, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, total, nil
}
