package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

// RegularityThreshold is the minimum attendance percentage for a REGULAR
// situation. Fixed for now; a per-tenant override is tracked as future work.
const RegularityThreshold = 75.0

type frequencyUnitReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error)
}

type frequencyAttendanceSource interface {
	ListLessonsByUnit(ctx context.Context, tenantID, unitID string) ([]models.Lesson, error)
	MarksByLessonForStudent(ctx context.Context, tenantID, unitID, studentID string) (map[string]models.AttendanceStatus, error)
}

// FrequencyService computes attendance regularity for a student in a
// teaching unit.
type FrequencyService struct {
	units      frequencyUnitReader
	attendance frequencyAttendanceSource
	logger     *zap.Logger
}

// NewFrequencyService constructs the service.
func NewFrequencyService(units frequencyUnitReader, attendance frequencyAttendanceSource, logger *zap.Logger) *FrequencyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrequencyService{units: units, attendance: attendance, logger: logger}
}

// Calculate enumerates every lesson of the unit and classifies the student's
// mark for each. A lesson with no mark counts as an unjustified absence; this
// is deliberate, not an omission.
func (s *FrequencyService) Calculate(ctx context.Context, tenantID, unitID, studentID string) (*models.FrequencySummary, error) {
	if tenantID == "" || unitID == "" || studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant, unit and student are required")
	}

	unit, err := s.units.FindByID(ctx, tenantID, unitID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "teaching unit not found")
	}

	lessons, err := s.attendance.ListLessonsByUnit(ctx, tenantID, unitID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	marks, err := s.attendance.MarksByLessonForStudent(ctx, tenantID, unitID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance marks")
	}

	summary := &models.FrequencySummary{
		UnitID:       unitID,
		StudentID:    studentID,
		TotalLessons: len(lessons),
		PlannedHours: unit.PlannedHours,
		Situation:    models.FrequencyIrregular,
	}

	for _, lesson := range lessons {
		summary.GivenHours += lesson.Hours
		switch marks[lesson.ID] {
		case models.AttendancePresent:
			summary.Presences++
		case models.AttendanceJustified:
			summary.Justified++
		default:
			summary.Unjustified++
		}
	}

	if summary.TotalLessons == 0 {
		return summary, nil
	}

	attended := float64(summary.Presences + summary.Justified)
	summary.Percentage = round2(attended / float64(summary.TotalLessons) * 100)
	if summary.Percentage >= RegularityThreshold {
		summary.Situation = models.FrequencyRegular
	}
	return summary, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
