package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsicola/academic-core-api/internal/middleware"
	"github.com/dsicola/academic-core-api/internal/models"
	"github.com/dsicola/academic-core-api/internal/service"
	"github.com/dsicola/academic-core-api/pkg/jobs"
)

type yearRepoMock struct {
	years map[string]*models.AcademicYear
}

func (m *yearRepoMock) List(ctx context.Context, tenantID string, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	var out []models.AcademicYear
	for _, y := range m.years {
		if y.TenantID == tenantID {
			out = append(out, *y)
		}
	}
	return out, len(out), nil
}

func (m *yearRepoMock) FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	if y, ok := m.years[id]; ok && y.TenantID == tenantID {
		copied := *y
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *yearRepoMock) Create(ctx context.Context, year *models.AcademicYear) error {
	year.ID = "year-new"
	if m.years == nil {
		m.years = make(map[string]*models.AcademicYear)
	}
	m.years[year.ID] = year
	return nil
}

func (m *yearRepoMock) Close(ctx context.Context, tenantID, id, actorID string, closedAt time.Time) (bool, error) {
	y, ok := m.years[id]
	if !ok || y.TenantID != tenantID || y.Status != models.YearStatusActive {
		return false, nil
	}
	y.Status = models.YearStatusClosed
	y.ClosedAt = &closedAt
	y.ClosedBy = &actorID
	return true, nil
}

type consolidatorMock struct {
	report *models.ConsolidationReport
}

func (m *consolidatorMock) Run(ctx context.Context, tenantID, yearID, actorID string) (*models.ConsolidationReport, error) {
	return m.report, nil
}

type auditSinkMock struct{}

func (auditSinkMock) Create(ctx context.Context, log *models.AuditLog) error { return nil }

func newYearHandler(repo *yearRepoMock, report *models.ConsolidationReport) *YearHandler {
	svc := service.NewYearService(
		repo,
		&consolidatorMock{report: report},
		service.NewAuditService(auditSinkMock{}, nil),
		service.NewNotificationService(nil, jobs.QueueConfig{}, nil),
		nil,
	)
	return NewYearHandler(svc)
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", TenantID: "t1", Role: models.RoleAdmin})
	return c, w
}

func TestYearHandlerCreateRejectsInvalidPayload(t *testing.T) {
	handler := newYearHandler(&yearRepoMock{}, nil)
	c, w := testContext(t, http.MethodPost, "/academic-years", []byte(`{"year": 2026}`))

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestYearHandlerCreate(t *testing.T) {
	repo := &yearRepoMock{}
	handler := newYearHandler(repo, nil)
	body, _ := json.Marshal(service.CreateYearInput{
		Year:      2026,
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
	})
	c, w := testContext(t, http.MethodPost, "/academic-years", body)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.years, 1)
	assert.Equal(t, models.YearStatusActive, repo.years["year-new"].Status)
}

func TestYearHandlerCloseReturnsConsolidation(t *testing.T) {
	repo := &yearRepoMock{years: map[string]*models.AcademicYear{
		"year-1": {ID: "year-1", TenantID: "t1", Year: 2025, Status: models.YearStatusActive},
	}}
	handler := newYearHandler(repo, &models.ConsolidationReport{YearID: "year-1", TotalCreated: 320})
	c, w := testContext(t, http.MethodPost, "/academic-years/year-1/close", nil)
	c.Params = gin.Params{{Key: "id", Value: "year-1"}}

	handler.Close(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Year          models.AcademicYear        `json:"year"`
			Consolidation models.ConsolidationReport `json:"consolidation"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.YearStatusClosed, envelope.Data.Year.Status)
	assert.Equal(t, 320, envelope.Data.Consolidation.TotalCreated)
}

func TestYearHandlerCloseTwiceConflicts(t *testing.T) {
	repo := &yearRepoMock{years: map[string]*models.AcademicYear{
		"year-1": {ID: "year-1", TenantID: "t1", Year: 2025, Status: models.YearStatusClosed},
	}}
	handler := newYearHandler(repo, nil)
	c, w := testContext(t, http.MethodPost, "/academic-years/year-1/close", nil)
	c.Params = gin.Params{{Key: "id", Value: "year-1"}}

	handler.Close(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestYearHandlerGetUnknownIsNotFound(t *testing.T) {
	handler := newYearHandler(&yearRepoMock{}, nil)
	c, w := testContext(t, http.MethodGet, "/academic-years/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
