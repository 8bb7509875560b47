package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type progressionEnrollmentReader interface {
	FindLatestByStudent(ctx context.Context, tenantID, studentID string, beforeYear int) (*models.EnrollmentDetail, error)
}

type progressionRecordReader interface {
	CountFailedByStudentYear(ctx context.Context, tenantID, studentID, yearID string) (int, error)
}

type progressionGroupReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.ClassGroup, error)
}

type progressionConfigReader interface {
	FindByTenant(ctx context.Context, tenantID string) (*models.InstitutionConfig, error)
}

// ProgressionService decides whether a student may enroll into a target
// class for a new year, based on the frozen outcome of their most recent
// prior enrollment.
type ProgressionService struct {
	enrollments progressionEnrollmentReader
	records     progressionRecordReader
	groups      progressionGroupReader
	configs     progressionConfigReader
	audit       *AuditService
	logger      *zap.Logger
}

// NewProgressionService constructs the service.
func NewProgressionService(
	enrollments progressionEnrollmentReader,
	records progressionRecordReader,
	groups progressionGroupReader,
	configs progressionConfigReader,
	audit *AuditService,
	logger *zap.Logger,
) *ProgressionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressionService{
		enrollments: enrollments,
		records:     records,
		groups:      groups,
		configs:     configs,
		audit:       audit,
		logger:      logger,
	}
}

// ProgressionRequest describes one enrollment attempt to validate.
type ProgressionRequest struct {
	StudentID    string
	TargetYear   int
	TargetGroup  *models.ClassGroup
	Capabilities models.CapabilitySet
	Override     bool
	ActorID      string
}

// Validate applies the progression rules:
//
//   - no prior enrollment: allow, it is the student's first.
//   - prior APPROVED: allow only the next ordinal in sequence.
//   - prior FAILED: allow re-enrollment at the same ordinal. A forward move
//     is still allowed when the failed-subject count is within the tenant's
//     tolerance, and that tolerance is consulted before any hard block.
//   - otherwise: reject, unless the caller overrides with the elevated
//     capability and the tenant permits overrides; overrides are audited.
func (s *ProgressionService) Validate(ctx context.Context, tenantID string, req ProgressionRequest) error {
	prior, err := s.enrollments.FindLatestByStudent(ctx, tenantID, req.StudentID, req.TargetYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up prior enrollment")
	}
	if prior == nil {
		return nil
	}

	targetOrdinal := req.TargetGroup.GradeOrdinal

	switch prior.FinalStatus {
	case models.FinalStatusApproved:
		if targetOrdinal == prior.GradeOrdinal+1 {
			return nil
		}
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(
			"student passed grade %d and may only enroll at grade %d, not %d",
			prior.GradeOrdinal, prior.GradeOrdinal+1, targetOrdinal))

	case models.FinalStatusFailed:
		if targetOrdinal == prior.GradeOrdinal {
			return nil
		}
		if targetOrdinal != prior.GradeOrdinal+1 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(
				"student failed grade %d and may only repeat it, not enroll at grade %d",
				prior.GradeOrdinal, targetOrdinal))
		}
		return s.validateFailedForward(ctx, tenantID, req, prior)

	default:
		// PENDING: the prior year has not been consolidated yet.
		return appErrors.Clone(appErrors.ErrConflict,
			"prior year outcome is still pending; consolidate the prior year before enrolling")
	}
}

// validateFailedForward handles a forward enrollment attempt after an
// aggregate FAILED outcome. The failed-subject tolerance is checked first;
// the override path is the last resort.
func (s *ProgressionService) validateFailedForward(ctx context.Context, tenantID string, req ProgressionRequest, prior *models.EnrollmentDetail) error {
	cfg, err := s.configs.FindByTenant(ctx, tenantID)
	if err != nil {
		cfg = models.DefaultInstitutionConfig(tenantID)
	}

	if cfg.ToleratedFailedSubjects > 0 {
		failed, err := s.records.CountFailedByStudentYear(ctx, tenantID, req.StudentID, prior.YearID)
		if err == nil && failed <= cfg.ToleratedFailedSubjects {
			return nil
		}
		if err != nil {
			s.logger.Sugar().Warnw("failed-subject count unavailable, falling back to aggregate status",
				"student_id", req.StudentID, "year_id", prior.YearID, "error", err)
		}
	}

	if req.Override {
		if !req.Capabilities.Has(models.CapabilityProgressionOverride) {
			return appErrors.Clone(appErrors.ErrForbidden, "progression override requires an elevated capability")
		}
		if !cfg.AllowProgressionOverride {
			return appErrors.Clone(appErrors.ErrForbidden, "this institution does not permit progression overrides")
		}
		s.audit.Record(ctx, &models.AuditLog{
			TenantID:   tenantID,
			UserID:     &req.ActorID,
			Action:     models.AuditActionProgressionOverride,
			Resource:   "annual_enrollment",
			ResourceID: &req.StudentID,
			Note: fmt.Sprintf("override: failed grade %d, enrolled at grade %d for year %d",
				prior.GradeOrdinal, req.TargetGroup.GradeOrdinal, req.TargetYear),
		})
		return nil
	}

	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(
		"student failed grade %d and may only repeat it; an override is required to advance",
		prior.GradeOrdinal))
}
