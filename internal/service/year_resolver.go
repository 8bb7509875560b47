package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dsicola/academic-core-api/internal/models"
)

// WriteRefs carries every entity reference a write request may name. The
// resolver walks them in a fixed order until one leads to an academic year.
type WriteRefs struct {
	YearID       string
	UnitID       string
	GroupID      string
	LessonID     string
	MarkID       string
	EvaluationID string
	EnrollmentID string
}

type resolverYearReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error)
}

type resolverUnitReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error)
}

type resolverGroupReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.ClassGroup, error)
}

type resolverAttendanceReader interface {
	FindLessonByID(ctx context.Context, tenantID, id string) (*models.Lesson, error)
	FindMarkByID(ctx context.Context, tenantID, id string) (*models.AttendanceMark, error)
}

type resolverEvaluationReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.Evaluation, error)
}

type resolverEnrollmentReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.AnnualEnrollment, error)
}

// YearResolver maps a write request to the academic year it touches. Every
// lookup is tenant-scoped, so a reference into another tenant resolves the
// same as a missing one.
type YearResolver struct {
	years       resolverYearReader
	units       resolverUnitReader
	groups      resolverGroupReader
	attendance  resolverAttendanceReader
	evaluations resolverEvaluationReader
	enrollments resolverEnrollmentReader
}

// NewYearResolver constructs the resolver.
func NewYearResolver(
	years resolverYearReader,
	units resolverUnitReader,
	groups resolverGroupReader,
	attendance resolverAttendanceReader,
	evaluations resolverEvaluationReader,
	enrollments resolverEnrollmentReader,
) *YearResolver {
	return &YearResolver{
		years:       years,
		units:       units,
		groups:      groups,
		attendance:  attendance,
		evaluations: evaluations,
		enrollments: enrollments,
	}
}

// Resolve follows the first populated reference to its academic year. It
// returns (nil, nil) when no reference is set or the referenced entity does
// not exist in the tenant; existence errors belong to the handler, not the
// gate.
func (r *YearResolver) Resolve(ctx context.Context, tenantID string, refs WriteRefs) (*models.AcademicYear, error) {
	yearID := refs.YearID

	if yearID == "" && refs.UnitID != "" {
		unit, err := r.units.FindByID(ctx, tenantID, refs.UnitID)
		if err != nil {
			return nil, ignoreNoRows(err)
		}
		yearID = unit.YearID
	}
	if yearID == "" && refs.GroupID != "" {
		group, err := r.groups.FindByID(ctx, tenantID, refs.GroupID)
		if err != nil {
			return nil, ignoreNoRows(err)
		}
		yearID = group.YearID
	}
	if yearID == "" && refs.LessonID != "" {
		// A dangling lesson stops the walk the same way a dangling unit does.
		return r.yearFromLesson(ctx, tenantID, refs.LessonID)
	}
	if yearID == "" && refs.MarkID != "" {
		mark, err := r.attendance.FindMarkByID(ctx, tenantID, refs.MarkID)
		if err != nil {
			return nil, ignoreNoRows(err)
		}
		return r.yearFromLesson(ctx, tenantID, mark.LessonID)
	}
	if yearID == "" && refs.EvaluationID != "" {
		eval, err := r.evaluations.FindByID(ctx, tenantID, refs.EvaluationID)
		if err != nil {
			return nil, ignoreNoRows(err)
		}
		unit, err := r.units.FindByID(ctx, tenantID, eval.UnitID)
		if err != nil {
			return nil, ignoreNoRows(err)
		}
		yearID = unit.YearID
	}
	if yearID == "" && refs.EnrollmentID != "" {
		enrollment, err := r.enrollments.FindByID(ctx, tenantID, refs.EnrollmentID)
		if err != nil {
			return nil, ignoreNoRows(err)
		}
		yearID = enrollment.YearID
	}
	if yearID == "" {
		return nil, nil
	}

	year, err := r.years.FindByID(ctx, tenantID, yearID)
	if err != nil {
		return nil, ignoreNoRows(err)
	}
	return year, nil
}

func (r *YearResolver) yearFromLesson(ctx context.Context, tenantID, lessonID string) (*models.AcademicYear, error) {
	lesson, err := r.attendance.FindLessonByID(ctx, tenantID, lessonID)
	if err != nil {
		return nil, ignoreNoRows(err)
	}
	unit, err := r.units.FindByID(ctx, tenantID, lesson.UnitID)
	if err != nil {
		return nil, ignoreNoRows(err)
	}
	year, err := r.years.FindByID(ctx, tenantID, unit.YearID)
	if err != nil {
		return nil, ignoreNoRows(err)
	}
	return year, nil
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
