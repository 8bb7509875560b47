package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/academic-core-api/internal/models"
)

type mockUnitRepo struct {
	units map[string]models.TeachingUnit
}

func (m *mockUnitRepo) FindByID(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error) {
	if u, ok := m.units[id]; ok && u.TenantID == tenantID {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

type mockAttendanceSource struct {
	lessons map[string][]models.Lesson
	marks   map[string]map[string]models.AttendanceStatus
}

func (m *mockAttendanceSource) ListLessonsByUnit(ctx context.Context, tenantID, unitID string) ([]models.Lesson, error) {
	return m.lessons[unitID], nil
}

func (m *mockAttendanceSource) MarksByLessonForStudent(ctx context.Context, tenantID, unitID, studentID string) (map[string]models.AttendanceStatus, error) {
	return m.marks[studentID], nil
}

func lessonOn(id, unitID string, day int) models.Lesson {
	return models.Lesson{
		ID:     id,
		UnitID: unitID,
		HeldOn: time.Date(2025, 3, day, 8, 0, 0, 0, time.UTC),
		Hours:  2,
	}
}

func TestFrequencyJustifiedCountsAsAttended(t *testing.T) {
	units := &mockUnitRepo{units: map[string]models.TeachingUnit{
		"unit-1": {ID: "unit-1", TenantID: "t1", PlannedHours: 80},
	}}
	attendance := &mockAttendanceSource{
		lessons: map[string][]models.Lesson{
			"unit-1": {lessonOn("l1", "unit-1", 3), lessonOn("l2", "unit-1", 4)},
		},
		marks: map[string]map[string]models.AttendanceStatus{
			"s1": {"l1": models.AttendancePresent, "l2": models.AttendanceJustified},
		},
	}
	svc := NewFrequencyService(units, attendance, nil)

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalLessons)
	assert.Equal(t, 1, summary.Presences)
	assert.Equal(t, 1, summary.Justified)
	assert.Equal(t, 0, summary.Unjustified)
	assert.Equal(t, 100.0, summary.Percentage)
	assert.Equal(t, models.FrequencyRegular, summary.Situation)
	assert.Equal(t, 80, summary.PlannedHours)
	assert.Equal(t, 4, summary.GivenHours)
}

func TestFrequencyMissingMarkCountsAsUnjustified(t *testing.T) {
	units := &mockUnitRepo{units: map[string]models.TeachingUnit{
		"unit-1": {ID: "unit-1", TenantID: "t1"},
	}}
	attendance := &mockAttendanceSource{
		lessons: map[string][]models.Lesson{
			"unit-1": {
				lessonOn("l1", "unit-1", 3), lessonOn("l2", "unit-1", 4),
				lessonOn("l3", "unit-1", 5), lessonOn("l4", "unit-1", 6),
			},
		},
		marks: map[string]map[string]models.AttendanceStatus{
			"s1": {"l1": models.AttendancePresent, "l2": models.AttendancePresent},
		},
	}
	svc := NewFrequencyService(units, attendance, nil)

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Unjustified)
	assert.Equal(t, 50.0, summary.Percentage)
	assert.Equal(t, models.FrequencyIrregular, summary.Situation)
}

func TestFrequencyThresholdBoundaryIsRegular(t *testing.T) {
	lessons := make([]models.Lesson, 0, 4)
	for i := 0; i < 4; i++ {
		lessons = append(lessons, lessonOn(string(rune('a'+i)), "unit-1", i+1))
	}
	units := &mockUnitRepo{units: map[string]models.TeachingUnit{
		"unit-1": {ID: "unit-1", TenantID: "t1"},
	}}
	attendance := &mockAttendanceSource{
		lessons: map[string][]models.Lesson{"unit-1": lessons},
		marks: map[string]map[string]models.AttendanceStatus{
			"s1": {"a": models.AttendancePresent, "b": models.AttendancePresent, "c": models.AttendancePresent},
		},
	}
	svc := NewFrequencyService(units, attendance, nil)

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 75.0, summary.Percentage)
	assert.Equal(t, models.FrequencyRegular, summary.Situation)
}

// Reclassifying an unjustified absence as justified must never lower the
// percentage.
func TestFrequencyReclassificationIsMonotonic(t *testing.T) {
	units := &mockUnitRepo{units: map[string]models.TeachingUnit{
		"unit-1": {ID: "unit-1", TenantID: "t1"},
	}}
	attendance := &mockAttendanceSource{
		lessons: map[string][]models.Lesson{
			"unit-1": {lessonOn("l1", "unit-1", 3), lessonOn("l2", "unit-1", 4), lessonOn("l3", "unit-1", 5)},
		},
		marks: map[string]map[string]models.AttendanceStatus{
			"s1": {"l1": models.AttendancePresent, "l2": models.AttendanceUnjustified, "l3": models.AttendancePresent},
		},
	}
	svc := NewFrequencyService(units, attendance, nil)

	before, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)

	attendance.marks["s1"]["l2"] = models.AttendanceJustified
	after, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, after.Percentage, before.Percentage)
	assert.Equal(t, 100.0, after.Percentage)
}

func TestFrequencyNoLessons(t *testing.T) {
	units := &mockUnitRepo{units: map[string]models.TeachingUnit{
		"unit-1": {ID: "unit-1", TenantID: "t1"},
	}}
	attendance := &mockAttendanceSource{}
	svc := NewFrequencyService(units, attendance, nil)

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.Percentage)
	assert.Equal(t, models.FrequencyIrregular, summary.Situation)
}

func TestFrequencyUnknownUnit(t *testing.T) {
	svc := NewFrequencyService(&mockUnitRepo{}, &mockAttendanceSource{}, nil)
	_, err := svc.Calculate(context.Background(), "t1", "missing", "s1")
	require.Error(t, err)
}

func TestFrequencyCrossTenantUnitIsNotFound(t *testing.T) {
	units := &mockUnitRepo{units: map[string]models.TeachingUnit{
		"unit-1": {ID: "unit-1", TenantID: "other-tenant"},
	}}
	svc := NewFrequencyService(units, &mockAttendanceSource{}, nil)
	_, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.Error(t, err)
}
