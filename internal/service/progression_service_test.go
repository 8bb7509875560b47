package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type mockLatestEnrollmentReader struct {
	prior *models.EnrollmentDetail
}

func (m *mockLatestEnrollmentReader) FindLatestByStudent(ctx context.Context, tenantID, studentID string, beforeYear int) (*models.EnrollmentDetail, error) {
	if m.prior == nil {
		return nil, sql.ErrNoRows
	}
	return m.prior, nil
}

type mockGroupRepo struct {
	groups map[string]models.ClassGroup
}

func (m *mockGroupRepo) FindByID(ctx context.Context, tenantID, id string) (*models.ClassGroup, error) {
	if g, ok := m.groups[id]; ok && g.TenantID == tenantID {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

type mockFailedCountReader struct {
	counts map[string]int
	err    error
}

func (m *mockFailedCountReader) CountFailedByStudentYear(ctx context.Context, tenantID, studentID, yearID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[studentID], nil
}

func priorEnrollment(ordinal int, status models.FinalStatus) *models.EnrollmentDetail {
	return &models.EnrollmentDetail{
		AnnualEnrollment: models.AnnualEnrollment{
			ID:        "enr-prior",
			TenantID:  "t1",
			StudentID: "s1",
			YearID:    "year-prev",

			FinalStatus: status,
		},
		YearNumber:   2024,
		GradeOrdinal: ordinal,
	}
}

func targetGroup(ordinal int) *models.ClassGroup {
	return &models.ClassGroup{ID: "g-target", TenantID: "t1", YearID: "year-next", GradeOrdinal: ordinal}
}

func newProgressionFixture(prior *models.EnrollmentDetail, failed *mockFailedCountReader, cfg *models.InstitutionConfig) (*ProgressionService, *captureAuditSink) {
	if failed == nil {
		failed = &mockFailedCountReader{}
	}
	sink := &captureAuditSink{}
	svc := NewProgressionService(
		&mockLatestEnrollmentReader{prior: prior},
		failed,
		&mockGroupRepo{},
		&mockConfigRepo{cfg: cfg},
		NewAuditService(sink, nil),
		nil,
	)
	return svc, sink
}

func progressTo(targetOrdinal int) ProgressionRequest {
	return ProgressionRequest{
		StudentID:   "s1",
		TargetYear:  2025,
		TargetGroup: targetGroup(targetOrdinal),
		ActorID:     "admin",
	}
}

func TestProgressionFirstEnrollmentAllowed(t *testing.T) {
	svc, _ := newProgressionFixture(nil, nil, nil)
	err := svc.Validate(context.Background(), "t1", progressTo(1))
	assert.NoError(t, err)
}

func TestProgressionApprovedAdvancesOneGrade(t *testing.T) {
	svc, _ := newProgressionFixture(priorEnrollment(10, models.FinalStatusApproved), nil, nil)

	assert.NoError(t, svc.Validate(context.Background(), "t1", progressTo(11)))

	for _, target := range []int{10, 12} {
		err := svc.Validate(context.Background(), "t1", progressTo(target))
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	}
}

func TestProgressionFailedRepeatsSameGrade(t *testing.T) {
	svc, _ := newProgressionFixture(priorEnrollment(10, models.FinalStatusFailed), nil, nil)
	assert.NoError(t, svc.Validate(context.Background(), "t1", progressTo(10)))
}

func TestProgressionFailedForwardBlockedWithoutOverride(t *testing.T) {
	svc, sink := newProgressionFixture(priorEnrollment(10, models.FinalStatusFailed), nil, nil)

	err := svc.Validate(context.Background(), "t1", progressTo(11))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, sink.logs)
}

func TestProgressionFailedNonAdjacentAlwaysBlocked(t *testing.T) {
	svc, _ := newProgressionFixture(priorEnrollment(10, models.FinalStatusFailed), nil, nil)

	err := svc.Validate(context.Background(), "t1", progressTo(12))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestProgressionToleranceAdmitsForwardWithoutOverride(t *testing.T) {
	cfg := models.DefaultInstitutionConfig("t1")
	cfg.ToleratedFailedSubjects = 2
	failed := &mockFailedCountReader{counts: map[string]int{"s1": 2}}
	svc, sink := newProgressionFixture(priorEnrollment(10, models.FinalStatusFailed), failed, cfg)

	assert.NoError(t, svc.Validate(context.Background(), "t1", progressTo(11)))
	assert.Empty(t, sink.logs, "the tolerance path is a rule, not an override, and is not audited")
}

func TestProgressionToleranceExceededStillBlocks(t *testing.T) {
	cfg := models.DefaultInstitutionConfig("t1")
	cfg.ToleratedFailedSubjects = 2
	failed := &mockFailedCountReader{counts: map[string]int{"s1": 3}}
	svc, _ := newProgressionFixture(priorEnrollment(10, models.FinalStatusFailed), failed, cfg)

	err := svc.Validate(context.Background(), "t1", progressTo(11))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestProgressionOverrideRequiresCapability(t *testing.T) {
	cfg := models.DefaultInstitutionConfig("t1")
	cfg.AllowProgressionOverride = true
	svc, _ := newProgressionFixture(priorEnrollment(10, models.FinalStatusFailed), nil, cfg)

	req := progressTo(11)
	req.Override = true
	err := svc.Validate(context.Background(), "t1", req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestProgressionOverrideRequiresTenantPermission(t *testing.T) {
	svc, _ := newProgressionFixture(priorEnrollment(10, models.FinalStatusFailed), nil, nil)

	req := progressTo(11)
	req.Override = true
	req.Capabilities = models.CapabilitySet{models.CapabilityProgressionOverride: {}}
	err := svc.Validate(context.Background(), "t1", req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestProgressionOverrideAdmitsAndAudits(t *testing.T) {
	cfg := models.DefaultInstitutionConfig("t1")
	cfg.AllowProgressionOverride = true
	svc, sink := newProgressionFixture(priorEnrollment(10, models.FinalStatusFailed), nil, cfg)

	req := progressTo(11)
	req.Override = true
	req.Capabilities = models.CapabilitySet{models.CapabilityProgressionOverride: {}}
	require.NoError(t, svc.Validate(context.Background(), "t1", req))

	require.Len(t, sink.logs, 1)
	assert.Equal(t, models.AuditActionProgressionOverride, sink.logs[0].Action)
	assert.Equal(t, "admin", *sink.logs[0].UserID)
}

func TestProgressionPendingPriorConflicts(t *testing.T) {
	svc, _ := newProgressionFixture(priorEnrollment(10, models.FinalStatusPending), nil, nil)

	err := svc.Validate(context.Background(), "t1", progressTo(11))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}
