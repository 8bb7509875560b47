package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type mockYearRepo struct {
	years map[string]models.AcademicYear
}

func (m *mockYearRepo) FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	if y, ok := m.years[id]; ok && y.TenantID == tenantID {
		return &y, nil
	}
	return nil, sql.ErrNoRows
}

type mockUnitLister struct {
	units []models.TeachingUnit
}

func (m *mockUnitLister) ListByYear(ctx context.Context, tenantID, yearID string) ([]models.TeachingUnit, error) {
	return m.units, nil
}

type mockRecordStore struct {
	records map[string]models.HistoricalRecord
	failFor map[string]error
}

func recordKey(r *models.HistoricalRecord) string {
	return r.TenantID + "/" + r.StudentID + "/" + r.YearID + "/" + r.UnitID
}

func (m *mockRecordStore) CountByYear(ctx context.Context, tenantID, yearID string) (int, error) {
	count := 0
	for _, r := range m.records {
		if r.TenantID == tenantID && r.YearID == yearID {
			count++
		}
	}
	return count, nil
}

func (m *mockRecordStore) Insert(ctx context.Context, record *models.HistoricalRecord) (bool, error) {
	if err, ok := m.failFor[record.StudentID]; ok {
		return false, err
	}
	if m.records == nil {
		m.records = make(map[string]models.HistoricalRecord)
	}
	key := recordKey(record)
	if _, exists := m.records[key]; exists {
		return false, nil
	}
	m.records[key] = *record
	return true, nil
}

type mockRosterSource struct {
	members map[string][]string
}

func (m *mockRosterSource) ListMemberIDs(ctx context.Context, tenantID, groupID string) ([]string, error) {
	return m.members[groupID], nil
}

type mockEnrollmentStore struct {
	enrollments []models.AnnualEnrollment
	statuses    map[string]models.FinalStatus
}

func (m *mockEnrollmentStore) ListByYear(ctx context.Context, tenantID, yearID string) ([]models.AnnualEnrollment, error) {
	return m.enrollments, nil
}

func (m *mockEnrollmentStore) SetFinalStatus(ctx context.Context, tenantID, id string, status models.FinalStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[string]models.FinalStatus)
	}
	m.statuses[id] = status
	return nil
}

type stubFrequency struct {
	irregularFor map[string]bool
	errFor       map[string]error
}

func (s *stubFrequency) Calculate(ctx context.Context, tenantID, unitID, studentID string) (*models.FrequencySummary, error) {
	if err, ok := s.errFor[studentID]; ok {
		return nil, err
	}
	summary := &models.FrequencySummary{
		UnitID: unitID, StudentID: studentID,
		TotalLessons: 10, Presences: 9, Unjustified: 1,
		Percentage: 90, Situation: models.FrequencyRegular,
	}
	if s.irregularFor[studentID] {
		summary.Presences, summary.Unjustified = 5, 5
		summary.Percentage = 50
		summary.Situation = models.FrequencyIrregular
	}
	return summary, nil
}

type stubGrades struct {
	failedFor map[string]bool
}

func (s *stubGrades) CalculateWithConfig(ctx context.Context, tenantID, unitID, studentID string, cfg *models.InstitutionConfig) (*models.GradeSummary, error) {
	summary := &models.GradeSummary{UnitID: unitID, StudentID: studentID, FinalAverage: 8, Status: models.GradeApproved}
	if s.failedFor[studentID] {
		summary.FinalAverage = 3
		summary.Status = models.GradeFailed
	}
	return summary, nil
}

type noopMetrics struct {
	consolidations int
}

func (n *noopMetrics) ObserveConsolidation(created, rowErrors int, duration time.Duration) {
	n.consolidations++
}

func (n *noopMetrics) ObserveWindowExpiry(count int) {}

type captureAuditSink struct {
	logs []models.AuditLog
}

func (c *captureAuditSink) Create(ctx context.Context, log *models.AuditLog) error {
	c.logs = append(c.logs, *log)
	return nil
}

func closedYear(id string) models.AcademicYear {
	closedAt := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	return models.AcademicYear{
		ID: id, TenantID: "t1", Year: 2025,
		Status: models.YearStatusClosed, ClosedAt: &closedAt,
	}
}

func newConsolidationFixture(units []models.TeachingUnit, enrollments []models.AnnualEnrollment, freq *stubFrequency, grades *stubGrades) (*ConsolidationService, *mockRecordStore, *mockEnrollmentStore, *noopMetrics) {
	years := &mockYearRepo{years: map[string]models.AcademicYear{
		"year-1": closedYear("year-1"),
		"year-active": {ID: "year-active", TenantID: "t1", Year: 2026, Status: models.YearStatusActive},
	}}
	records := &mockRecordStore{}
	enrollmentStore := &mockEnrollmentStore{enrollments: enrollments}
	metrics := &noopMetrics{}
	svc := NewConsolidationService(
		years,
		&mockUnitLister{units: units},
		records,
		&mockRosterSource{members: map[string][]string{"group-1": {"s1", "s2"}}},
		enrollmentStore,
		freq,
		grades,
		&mockConfigRepo{},
		NewAuditService(&captureAuditSink{}, nil),
		metrics,
		nil,
	)
	return svc, records, enrollmentStore, metrics
}

func yearUnit(id string) models.TeachingUnit {
	return models.TeachingUnit{ID: id, TenantID: "t1", YearID: "year-1", SubjectName: "Math", TeacherID: "teacher-1"}
}

func enrollmentFor(student string) models.AnnualEnrollment {
	return models.AnnualEnrollment{ID: "enr-" + student, TenantID: "t1", StudentID: student, YearID: "year-1", FinalStatus: models.FinalStatusPending}
}

func TestConsolidationRequiresClosedYear(t *testing.T) {
	svc, _, _, _ := newConsolidationFixture(nil, nil, &stubFrequency{}, &stubGrades{})
	_, err := svc.Run(context.Background(), "t1", "year-active", "admin")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestConsolidationCreatesOneRecordPerStudentUnit(t *testing.T) {
	units := []models.TeachingUnit{yearUnit("u1"), yearUnit("u2")}
	enrollments := []models.AnnualEnrollment{enrollmentFor("s1"), enrollmentFor("s2")}
	svc, records, enrollmentStore, metrics := newConsolidationFixture(units, enrollments, &stubFrequency{}, &stubGrades{})

	report, err := svc.Run(context.Background(), "t1", "year-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalCreated)
	assert.False(t, report.AlreadyGenerated)
	assert.Empty(t, report.Errors)
	assert.Len(t, records.records, 4)
	assert.Equal(t, models.FinalStatusApproved, enrollmentStore.statuses["enr-s1"])
	assert.Equal(t, models.FinalStatusApproved, enrollmentStore.statuses["enr-s2"])
	assert.Equal(t, 1, metrics.consolidations)
}

func TestConsolidationSecondRunIsNoOp(t *testing.T) {
	units := []models.TeachingUnit{yearUnit("u1")}
	enrollments := []models.AnnualEnrollment{enrollmentFor("s1")}
	svc, records, _, _ := newConsolidationFixture(units, enrollments, &stubFrequency{}, &stubGrades{})

	first, err := svc.Run(context.Background(), "t1", "year-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalCreated)

	second, err := svc.Run(context.Background(), "t1", "year-1", "admin")
	require.NoError(t, err)
	assert.True(t, second.AlreadyGenerated)
	assert.Equal(t, 0, second.TotalCreated)
	assert.Len(t, records.records, 1)
}

func TestConsolidationAttendancePrecedesGradeOutcome(t *testing.T) {
	units := []models.TeachingUnit{yearUnit("u1")}
	enrollments := []models.AnnualEnrollment{enrollmentFor("s1")}
	// Good grades, irregular attendance: the snapshot must say
	// FAILED_ATTENDANCE, not APPROVED.
	freq := &stubFrequency{irregularFor: map[string]bool{"s1": true}}
	svc, records, enrollmentStore, _ := newConsolidationFixture(units, enrollments, freq, &stubGrades{})

	report, err := svc.Run(context.Background(), "t1", "year-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalCreated)

	for _, r := range records.records {
		assert.Equal(t, models.SituationFailedAttendance, r.Situation)
	}
	assert.Equal(t, models.FinalStatusFailed, enrollmentStore.statuses["enr-s1"])
}

func TestConsolidationCollectsRowErrorsWithoutAborting(t *testing.T) {
	units := []models.TeachingUnit{yearUnit("u1")}
	enrollments := []models.AnnualEnrollment{enrollmentFor("s1"), enrollmentFor("s2"), enrollmentFor("s3")}
	freq := &stubFrequency{errFor: map[string]error{"s2": errors.New("marks unavailable")}}
	svc, records, _, _ := newConsolidationFixture(units, enrollments, freq, &stubGrades{})

	report, err := svc.Run(context.Background(), "t1", "year-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalCreated)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "s2", report.Errors[0].StudentID)
	assert.Contains(t, report.Errors[0].Reason, "marks unavailable")
	assert.Len(t, records.records, 2)
}

func TestConsolidationGroupRosterPreferred(t *testing.T) {
	groupID := "group-1"
	unit := yearUnit("u1")
	unit.ClassGroupID = &groupID
	// Year enrollment list has three students but the group has two.
	enrollments := []models.AnnualEnrollment{enrollmentFor("s1"), enrollmentFor("s2"), enrollmentFor("s3")}
	svc, records, _, _ := newConsolidationFixture([]models.TeachingUnit{unit}, enrollments, &stubFrequency{}, &stubGrades{})

	report, err := svc.Run(context.Background(), "t1", "year-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalCreated)
	assert.Len(t, records.records, 2)
}

func TestConsolidationScaleProducesRosterTimesUnits(t *testing.T) {
	unitCount, studentCount := 50, 10
	units := make([]models.TeachingUnit, 0, unitCount)
	for i := 0; i < unitCount; i++ {
		units = append(units, yearUnit(fmt.Sprintf("u%d", i)))
	}
	enrollments := make([]models.AnnualEnrollment, 0, studentCount)
	for i := 0; i < studentCount; i++ {
		enrollments = append(enrollments, enrollmentFor(fmt.Sprintf("s%d", i)))
	}
	svc, records, _, _ := newConsolidationFixture(units, enrollments, &stubFrequency{}, &stubGrades{})

	report, err := svc.Run(context.Background(), "t1", "year-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, unitCount*studentCount, report.TotalCreated)
	assert.Len(t, records.records, unitCount*studentCount)

	second, err := svc.Run(context.Background(), "t1", "year-1", "admin")
	require.NoError(t, err)
	assert.True(t, second.AlreadyGenerated)
	assert.Equal(t, 0, second.TotalCreated)
}
