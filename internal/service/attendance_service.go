package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type attendanceRepository interface {
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	FindLessonByID(ctx context.Context, tenantID, id string) (*models.Lesson, error)
	ListLessonsByUnit(ctx context.Context, tenantID, unitID string) ([]models.Lesson, error)
	UpsertMark(ctx context.Context, mark *models.AttendanceMark) error
}

type attendanceUnitReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error)
}

// AttendanceService records lessons and attendance marks. Closed-year
// blocking happens in the gate before these methods run.
type AttendanceService struct {
	repo  attendanceRepository
	units attendanceUnitReader
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, units attendanceUnitReader) *AttendanceService {
	return &AttendanceService{repo: repo, units: units}
}

type CreateLessonInput struct {
	UnitID string    `json:"unit_id" binding:"required,uuid"`
	HeldOn time.Time `json:"held_on" binding:"required"`
	Hours  int       `json:"hours" binding:"required,min=1,max=12"`
}

// CreateLesson registers a lesson occurrence for a teaching unit.
func (s *AttendanceService) CreateLesson(ctx context.Context, tenantID string, input CreateLessonInput) (*models.Lesson, error) {
	if _, err := s.units.FindByID(ctx, tenantID, input.UnitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching unit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teaching unit")
	}
	lesson := &models.Lesson{
		TenantID: tenantID,
		UnitID:   input.UnitID,
		HeldOn:   input.HeldOn,
		Hours:    input.Hours,
	}
	if err := s.repo.CreateLesson(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	return lesson, nil
}

// ListLessons returns all lessons of a unit.
func (s *AttendanceService) ListLessons(ctx context.Context, tenantID, unitID string) ([]models.Lesson, error) {
	lessons, err := s.repo.ListLessonsByUnit(ctx, tenantID, unitID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, nil
}

type RecordMarkInput struct {
	LessonID  string                  `json:"lesson_id" binding:"required,uuid"`
	StudentID string                  `json:"student_id" binding:"required,uuid"`
	Status    models.AttendanceStatus `json:"status" binding:"required"`
}

// RecordMark writes or reclassifies a student's mark for a lesson. Upsert
// semantics: reclassifying an absence is a plain overwrite of the same key.
func (s *AttendanceService) RecordMark(ctx context.Context, tenantID string, input RecordMarkInput) (*models.AttendanceMark, error) {
	if !input.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be PRESENT, JUSTIFIED or UNJUSTIFIED")
	}
	if _, err := s.repo.FindLessonByID(ctx, tenantID, input.LessonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch lesson")
	}
	mark := &models.AttendanceMark{
		TenantID:  tenantID,
		LessonID:  input.LessonID,
		StudentID: input.StudentID,
		Status:    input.Status,
	}
	if err := s.repo.UpsertMark(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance mark")
	}
	return mark, nil
}
