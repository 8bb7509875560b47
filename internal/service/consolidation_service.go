package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type consolidationYearReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
}

type consolidationUnitLister interface {
	ListByYear(ctx context.Context, tenantID, yearID string) ([]models.TeachingUnit, error)
}

type consolidationRecordStore interface {
	CountByYear(ctx context.Context, tenantID, yearID string) (int, error)
	Insert(ctx context.Context, record *models.HistoricalRecord) (bool, error)
}

type consolidationRosterSource interface {
	ListMemberIDs(ctx context.Context, tenantID, groupID string) ([]string, error)
}

type consolidationEnrollmentStore interface {
	ListByYear(ctx context.Context, tenantID, yearID string) ([]models.AnnualEnrollment, error)
	SetFinalStatus(ctx context.Context, tenantID, id string, status models.FinalStatus) error
}

type frequencyCalculator interface {
	Calculate(ctx context.Context, tenantID, unitID, studentID string) (*models.FrequencySummary, error)
}

type gradeCalculator interface {
	CalculateWithConfig(ctx context.Context, tenantID, unitID, studentID string, cfg *models.InstitutionConfig) (*models.GradeSummary, error)
}

type consolidationConfigReader interface {
	FindByTenant(ctx context.Context, tenantID string) (*models.InstitutionConfig, error)
}

type consolidationMetrics interface {
	ObserveConsolidation(created, rowErrors int, duration time.Duration)
}

// ConsolidationService freezes student outcomes into immutable historical
// records at year close. The run is a strict single shot: once any record
// exists for the year, re-running creates nothing and touches nothing.
type ConsolidationService struct {
	years       consolidationYearReader
	units       consolidationUnitLister
	records     consolidationRecordStore
	groups      consolidationRosterSource
	enrollments consolidationEnrollmentStore
	frequency   frequencyCalculator
	grades      gradeCalculator
	configs     consolidationConfigReader
	audit       *AuditService
	metrics     consolidationMetrics
	logger      *zap.Logger
}

// NewConsolidationService constructs the service.
func NewConsolidationService(
	years consolidationYearReader,
	units consolidationUnitLister,
	records consolidationRecordStore,
	groups consolidationRosterSource,
	enrollments consolidationEnrollmentStore,
	frequency frequencyCalculator,
	grades gradeCalculator,
	configs consolidationConfigReader,
	audit *AuditService,
	metrics consolidationMetrics,
	logger *zap.Logger,
) *ConsolidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsolidationService{
		years:       years,
		units:       units,
		records:     records,
		groups:      groups,
		enrollments: enrollments,
		frequency:   frequency,
		grades:      grades,
		configs:     configs,
		audit:       audit,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run consolidates every (student, unit) pair of a CLOSED year. Per-row
// failures are collected into the report, never aborting the batch; partial
// success is expected and the per-key insert guard makes a re-run after a
// crash resume instead of duplicating.
func (s *ConsolidationService) Run(ctx context.Context, tenantID, yearID, actorID string) (*models.ConsolidationReport, error) {
	start := time.Now()

	year, err := s.years.FindByID(ctx, tenantID, yearID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
	}
	if year.Status != models.YearStatusClosed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "consolidation requires a closed year; close the year first")
	}

	existing, err := s.records.CountByYear(ctx, tenantID, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing records")
	}
	if existing > 0 {
		return &models.ConsolidationReport{YearID: yearID, AlreadyGenerated: true}, nil
	}

	cfg, err := s.configs.FindByTenant(ctx, tenantID)
	if err != nil {
		cfg = models.DefaultInstitutionConfig(tenantID)
	}

	unitList, err := s.units.ListByYear(ctx, tenantID, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching units")
	}

	enrollments, err := s.enrollments.ListByYear(ctx, tenantID, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	yearRoster := make([]string, 0, len(enrollments))
	enrollmentByStudent := make(map[string]models.AnnualEnrollment, len(enrollments))
	for _, e := range enrollments {
		yearRoster = append(yearRoster, e.StudentID)
		enrollmentByStudent[e.StudentID] = e
	}

	report := &models.ConsolidationReport{YearID: yearID}
	failedSubjects := make(map[string]int)

	for _, unit := range unitList {
		roster, err := s.resolveRoster(ctx, tenantID, unit, yearRoster)
		if err != nil {
			report.Errors = append(report.Errors, models.ConsolidationRowError{UnitID: unit.ID, Reason: err.Error()})
			continue
		}
		for _, studentID := range roster {
			record, err := s.buildRecord(ctx, tenantID, actorID, unit, studentID, cfg)
			if err != nil {
				report.Errors = append(report.Errors, models.ConsolidationRowError{UnitID: unit.ID, StudentID: studentID, Reason: err.Error()})
				continue
			}
			created, err := s.records.Insert(ctx, record)
			if err != nil {
				report.Errors = append(report.Errors, models.ConsolidationRowError{UnitID: unit.ID, StudentID: studentID, Reason: err.Error()})
				continue
			}
			if created {
				report.TotalCreated++
			}
			if record.Situation.Failed() {
				failedSubjects[studentID]++
			}
		}
	}

	s.settleFinalStatuses(ctx, tenantID, enrollmentByStudent, failedSubjects, cfg, report)

	s.metrics.ObserveConsolidation(report.TotalCreated, len(report.Errors), time.Since(start))
	s.audit.RecordChange(ctx, &models.AuditLog{
		TenantID:   tenantID,
		UserID:     &actorID,
		Action:     models.AuditActionConsolidationRun,
		Resource:   "academic_year",
		ResourceID: &yearID,
		Note:       fmt.Sprintf("created %d records, %d row errors", report.TotalCreated, len(report.Errors)),
	}, nil, report)

	s.logger.Sugar().Infow("consolidation finished",
		"tenant_id", tenantID, "year_id", yearID,
		"created", report.TotalCreated, "errors", len(report.Errors),
		"duration", time.Since(start))
	return report, nil
}

// resolveRoster prefers explicit group membership; units without a group
// fall back to the year's annual enrollments.
func (s *ConsolidationService) resolveRoster(ctx context.Context, tenantID string, unit models.TeachingUnit, yearRoster []string) ([]string, error) {
	if unit.ClassGroupID != nil && *unit.ClassGroupID != "" {
		members, err := s.groups.ListMemberIDs(ctx, tenantID, *unit.ClassGroupID)
		if err != nil {
			return nil, fmt.Errorf("resolve group roster: %w", err)
		}
		if len(members) > 0 {
			return members, nil
		}
	}
	return yearRoster, nil
}

func (s *ConsolidationService) buildRecord(ctx context.Context, tenantID, actorID string, unit models.TeachingUnit, studentID string, cfg *models.InstitutionConfig) (*models.HistoricalRecord, error) {
	freq, err := s.frequency.Calculate(ctx, tenantID, unit.ID, studentID)
	if err != nil {
		return nil, fmt.Errorf("frequency: %w", err)
	}
	grade, err := s.grades.CalculateWithConfig(ctx, tenantID, unit.ID, studentID, cfg)
	if err != nil {
		return nil, fmt.Errorf("grade: %w", err)
	}

	// Irregular attendance overrides whatever the grade calculator decided.
	situation := models.SituationFailed
	switch {
	case freq.Situation == models.FrequencyIrregular:
		situation = models.SituationFailedAttendance
	case grade.Status == models.GradeApproved:
		situation = models.SituationApproved
	}

	return &models.HistoricalRecord{
		TenantID:       tenantID,
		StudentID:      studentID,
		YearID:         unit.YearID,
		UnitID:         unit.ID,
		SubjectName:    unit.SubjectName,
		PlannedHours:   freq.PlannedHours,
		GivenHours:     freq.GivenHours,
		Presences:      freq.Presences,
		Justified:      freq.Justified,
		Unjustified:    freq.Unjustified,
		AttendancePct:  freq.Percentage,
		FinalAverage:   grade.FinalAverage,
		PartialAverage: grade.PartialAverage,
		Situation:      situation,
		Note:           grade.Note,
		GeneratedBy:    actorID,
	}, nil
}

// settleFinalStatuses writes the aggregate outcome onto each enrollment:
// FAILED when the failed-subject count exceeds the tenant's tolerance,
// APPROVED otherwise.
func (s *ConsolidationService) settleFinalStatuses(ctx context.Context, tenantID string, enrollments map[string]models.AnnualEnrollment, failedSubjects map[string]int, cfg *models.InstitutionConfig, report *models.ConsolidationReport) {
	for studentID, enrollment := range enrollments {
		status := models.FinalStatusApproved
		if failedSubjects[studentID] > cfg.ToleratedFailedSubjects {
			status = models.FinalStatusFailed
		}
		if err := s.enrollments.SetFinalStatus(ctx, tenantID, enrollment.ID, status); err != nil {
			report.Errors = append(report.Errors, models.ConsolidationRowError{
				StudentID: studentID,
				Reason:    fmt.Sprintf("set final status: %v", err),
			})
		}
	}
}
