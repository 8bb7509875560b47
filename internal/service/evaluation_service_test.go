package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/academic-core-api/internal/models"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
)

type mockEvalRepo struct {
	evals []*models.Evaluation
	seq   int
}

func (m *mockEvalRepo) Create(ctx context.Context, eval *models.Evaluation) error {
	m.seq++
	eval.ID = fmt.Sprintf("eval-%d", m.seq)
	m.evals = append(m.evals, eval)
	return nil
}

func (m *mockEvalRepo) UpdateScore(ctx context.Context, tenantID, id string, score float64) error {
	for _, e := range m.evals {
		if e.TenantID == tenantID && e.ID == id {
			e.Score = score
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockEvalRepo) FindByID(ctx context.Context, tenantID, id string) (*models.Evaluation, error) {
	for _, e := range m.evals {
		if e.TenantID == tenantID && e.ID == id {
			return e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEvalRepo) ListByUnitAndStudent(ctx context.Context, tenantID, unitID, studentID string) ([]models.Evaluation, error) {
	var out []models.Evaluation
	for _, e := range m.evals {
		if e.TenantID == tenantID && e.UnitID == unitID && e.StudentID == studentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type mockUnitReader struct {
	units map[string]*models.TeachingUnit
}

func (m *mockUnitReader) FindByID(ctx context.Context, tenantID, id string) (*models.TeachingUnit, error) {
	unit, ok := m.units[id]
	if !ok || unit.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	return unit, nil
}

func newEvaluationFixture() (*EvaluationService, *mockEvalRepo) {
	repo := &mockEvalRepo{}
	units := &mockUnitReader{units: map[string]*models.TeachingUnit{
		"unit-1": {ID: "unit-1", TenantID: "t1", YearID: "year-1", TeacherID: "teacher-1"},
	}}
	return NewEvaluationService(repo, units), repo
}

func TestRecordRecoveryStampsTypeAndActor(t *testing.T) {
	svc, repo := newEvaluationFixture()

	eval, err := svc.RecordRecovery(context.Background(), "t1", "teacher-1", RecoveryScoreInput{
		UnitID:    "unit-1",
		StudentID: "s1",
		HeldOn:    time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC),
		Score:     7.5,
	})

	require.NoError(t, err)
	assert.Equal(t, models.EvaluationRecovery, eval.Type)
	assert.Equal(t, "teacher-1", eval.TeacherID)
	assert.Equal(t, 0, eval.Period)
	assert.Equal(t, 7.5, eval.Score)
	require.Len(t, repo.evals, 1)
}

func TestRecordRecoveryUnknownUnitIsNotFound(t *testing.T) {
	svc, repo := newEvaluationFixture()

	_, err := svc.RecordRecovery(context.Background(), "t1", "teacher-1", RecoveryScoreInput{
		UnitID:    "unit-missing",
		StudentID: "s1",
		HeldOn:    time.Now().UTC(),
		Score:     6,
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.evals)
}

func TestRecordRecoveryIsTenantScoped(t *testing.T) {
	svc, _ := newEvaluationFixture()

	_, err := svc.RecordRecovery(context.Background(), "t2", "teacher-1", RecoveryScoreInput{
		UnitID:    "unit-1",
		StudentID: "s1",
		HeldOn:    time.Now().UTC(),
		Score:     6,
	})

	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _ := newEvaluationFixture()

	_, err := svc.Create(context.Background(), "t1", "teacher-1", CreateEvaluationInput{
		UnitID:    "unit-1",
		StudentID: "s1",
		Type:      models.EvaluationType("QUIZ"),
		HeldOn:    time.Now().UTC(),
	})

	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCreateTrimesterRequiresPeriod(t *testing.T) {
	svc, _ := newEvaluationFixture()

	_, err := svc.Create(context.Background(), "t1", "teacher-1", CreateEvaluationInput{
		UnitID:    "unit-1",
		StudentID: "s1",
		Type:      models.EvaluationTrimester,
		Period:    0,
		HeldOn:    time.Now().UTC(),
	})

	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
