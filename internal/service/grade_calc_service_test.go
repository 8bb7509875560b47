package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/academic-core-api/internal/models"
)

type mockEvaluationLister struct {
	evals []models.Evaluation
}

func (m *mockEvaluationLister) ListByUnitAndStudent(ctx context.Context, tenantID, unitID, studentID string) ([]models.Evaluation, error) {
	return m.evals, nil
}

type mockConfigRepo struct {
	cfg *models.InstitutionConfig
}

func (m *mockConfigRepo) FindByTenant(ctx context.Context, tenantID string) (*models.InstitutionConfig, error) {
	if m.cfg != nil {
		return m.cfg, nil
	}
	return models.DefaultInstitutionConfig(tenantID), nil
}

func evalOn(id string, typ models.EvaluationType, period, day int, score float64) models.Evaluation {
	return models.Evaluation{
		ID:        id,
		UnitID:    "unit-1",
		StudentID: "s1",
		TeacherID: "teacher-1",
		Type:      typ,
		Period:    period,
		HeldOn:    time.Date(2025, 3, day, 10, 0, 0, 0, time.UTC),
		Score:     score,
	}
}

func newGradeService(evals []models.Evaluation, cfg *models.InstitutionConfig) *GradeCalcService {
	units := &mockUnitRepo{units: map[string]models.TeachingUnit{
		"unit-1": {ID: "unit-1", TenantID: "t1", TeacherID: "teacher-1"},
	}}
	return NewGradeCalcService(units, &mockEvaluationLister{evals: evals}, &mockConfigRepo{cfg: cfg}, nil)
}

func TestGradeTrimesterWeightedAverage(t *testing.T) {
	svc := newGradeService([]models.Evaluation{
		evalOn("e1", models.EvaluationTrimester, 1, 1, 6),
		evalOn("e2", models.EvaluationTrimester, 2, 2, 6),
		evalOn("e3", models.EvaluationTrimester, 3, 3, 9),
	}, nil)

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	// (6*1 + 6*2 + 9*3) / 6 = 7.5
	assert.Equal(t, 7.5, summary.FinalAverage)
	assert.Equal(t, models.GradeApproved, summary.Status)
	require.NotNil(t, summary.PartialAverage)
	assert.Equal(t, 7.0, *summary.PartialAverage)
}

func TestGradeTrimesterRecoveryReplacesLowerPeriod(t *testing.T) {
	svc := newGradeService([]models.Evaluation{
		evalOn("e1", models.EvaluationTrimester, 1, 1, 3),
		evalOn("e2", models.EvaluationTrimester, 2, 2, 6),
		evalOn("e3", models.EvaluationTrimester, 3, 3, 6),
		evalOn("r1", models.EvaluationRecovery, 1, 20, 7),
	}, nil)

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	// Period 1 average 3 replaced by recovery 7: (7 + 12 + 18) / 6 ≈ 6.17
	assert.InDelta(t, 6.17, summary.FinalAverage, 0.001)
	assert.Equal(t, models.GradeApproved, summary.Status)
}

func TestGradeTrimesterRecoveryNeverLowers(t *testing.T) {
	svc := newGradeService([]models.Evaluation{
		evalOn("e1", models.EvaluationTrimester, 1, 1, 8),
		evalOn("r1", models.EvaluationRecovery, 1, 20, 4),
	}, nil)

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	// Recovery 4 must not replace the period-1 average of 8.
	assert.InDelta(t, 8.0/6.0, summary.FinalAverage, 0.01)
}

func TestGradeMissingPeriodsCountAsZero(t *testing.T) {
	svc := newGradeService([]models.Evaluation{
		evalOn("e1", models.EvaluationTrimester, 1, 1, 10),
	}, nil)

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	// Only period 1 scored: 10/6 ≈ 1.67.
	assert.InDelta(t, 1.67, summary.FinalAverage, 0.001)
	assert.Equal(t, models.GradeFailed, summary.Status)
}

func TestGradeIgnoresOtherTeachersScores(t *testing.T) {
	foreign := evalOn("e9", models.EvaluationTrimester, 1, 5, 10)
	foreign.TeacherID = "someone-else"
	svc := newGradeService([]models.Evaluation{
		evalOn("e1", models.EvaluationTrimester, 1, 1, 6),
		foreign,
	}, nil)

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	// Only the assigned teacher's score of 6 counts in period 1.
	assert.InDelta(t, 1.0, summary.FinalAverage, 0.001)
}

func TestGradeNoEvaluations(t *testing.T) {
	svc := newGradeService(nil, nil)
	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.GradeFailed, summary.Status)
	assert.Equal(t, "no evaluations recorded", summary.Note)
}

func examConfig() *models.InstitutionConfig {
	return &models.InstitutionConfig{
		TenantID:        "t1",
		InstitutionType: models.InstitutionExam,
		PassingAverage:  6.0,
	}
}

func TestGradeExamSchemeAverages(t *testing.T) {
	svc := newGradeService([]models.Evaluation{
		evalOn("e1", models.EvaluationExam, 0, 1, 7),
		evalOn("e2", models.EvaluationExam, 0, 10, 5),
		evalOn("e3", models.EvaluationExam, 0, 20, 9),
	}, examConfig())

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 7.0, summary.FinalAverage)
	assert.Equal(t, models.GradeApproved, summary.Status)
}

func TestGradeExamRecoveryReplacesLowestScore(t *testing.T) {
	svc := newGradeService([]models.Evaluation{
		evalOn("e1", models.EvaluationExam, 0, 1, 8),
		evalOn("e2", models.EvaluationExam, 0, 10, 2),
		evalOn("r1", models.EvaluationRecovery, 0, 25, 6),
	}, examConfig())

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	// Lowest score 2 replaced by recovery 6: (8+6)/2 = 7.
	assert.Equal(t, 7.0, summary.FinalAverage)
	assert.Equal(t, models.GradeApproved, summary.Status)
}

func TestGradeExamFinalExamAveragedWhenBelowPassing(t *testing.T) {
	svc := newGradeService([]models.Evaluation{
		evalOn("e1", models.EvaluationExam, 0, 1, 4),
		evalOn("e2", models.EvaluationExam, 0, 10, 4),
		evalOn("f1", models.EvaluationFinalExam, 0, 30, 8),
	}, examConfig())

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	// Base 4 < passing, averaged with final exam 8: (4+8)/2 = 6.
	assert.Equal(t, 6.0, summary.FinalAverage)
	assert.Equal(t, models.GradeApproved, summary.Status)
	require.NotNil(t, summary.PartialAverage)
	assert.Equal(t, 4.0, *summary.PartialAverage)
}

func TestGradeExamFinalExamIgnoredWhenPassing(t *testing.T) {
	svc := newGradeService([]models.Evaluation{
		evalOn("e1", models.EvaluationExam, 0, 1, 9),
		evalOn("f1", models.EvaluationFinalExam, 0, 30, 2),
	}, examConfig())

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 9.0, summary.FinalAverage)
	assert.Equal(t, models.GradeApproved, summary.Status)
}

func TestGradeExamDisplayOrderLabels(t *testing.T) {
	svc := newGradeService([]models.Evaluation{
		evalOn("e2", models.EvaluationExam, 0, 10, 5),
		evalOn("e1", models.EvaluationExam, 0, 1, 7),
		evalOn("f1", models.EvaluationFinalExam, 0, 30, 6),
	}, examConfig())

	summary, err := svc.Calculate(context.Background(), "t1", "unit-1", "s1")
	require.NoError(t, err)
	require.Len(t, summary.DisplayOrder, 3)
	assert.Equal(t, "1st exam", summary.DisplayOrder[0].Label)
	assert.Equal(t, "e1", summary.DisplayOrder[0].EvaluationID)
	assert.Equal(t, "2nd exam", summary.DisplayOrder[1].Label)
	assert.Equal(t, "final exam", summary.DisplayOrder[2].Label)
}
