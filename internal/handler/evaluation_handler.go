package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsicola/academic-core-api/internal/service"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
	"github.com/dsicola/academic-core-api/pkg/response"
)

// EvaluationHandler exposes evaluation fact and grade summary endpoints.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
	grades      *service.GradeCalcService
}

// NewEvaluationHandler constructs handler.
func NewEvaluationHandler(evaluations *service.EvaluationService, grades *service.GradeCalcService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations, grades: grades}
}

// Create godoc
// @Summary Record an evaluation score
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.CreateEvaluationInput true "Evaluation payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var input service.CreateEvaluationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	eval, err := h.evaluations.Create(c.Request.Context(), claims.TenantID, claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, eval)
}

// RecordRecovery godoc
// @Summary Record a recovery score for a student in a unit
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.RecoveryScoreInput true "Recovery score payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /grades/recovery [post]
func (h *EvaluationHandler) RecordRecovery(c *gin.Context) {
	claims := claimsFromContext(c)
	var input service.RecoveryScoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	eval, err := h.evaluations.RecordRecovery(c.Request.Context(), claims.TenantID, claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, eval)
}

// UpdateScore godoc
// @Summary Correct an evaluation score
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param evaluationId path string true "Evaluation ID"
// @Param payload body service.UpdateScoreInput true "Score payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /evaluations/{evaluationId} [patch]
func (h *EvaluationHandler) UpdateScore(c *gin.Context) {
	claims := claimsFromContext(c)
	var input service.UpdateScoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	eval, err := h.evaluations.UpdateScore(c.Request.Context(), claims.TenantID, c.Param("evaluationId"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eval, nil)
}

// ListByStudent godoc
// @Summary List evaluation facts for a student in a unit
// @Tags Evaluations
// @Produce json
// @Param unitId query string true "Teaching unit ID"
// @Param studentId query string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /evaluations [get]
func (h *EvaluationHandler) ListByStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	unitID, studentID := c.Query("unitId"), c.Query("studentId")
	if unitID == "" || studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unitId and studentId are required"))
		return
	}
	evals, err := h.evaluations.ListByStudent(c.Request.Context(), claims.TenantID, unitID, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evals, nil)
}

// GradeSummary godoc
// @Summary Compute a student's grade summary for a unit
// @Tags Evaluations
// @Produce json
// @Param unitId path string true "Teaching unit ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /teaching-units/{unitId}/students/{studentId}/grade [get]
func (h *EvaluationHandler) GradeSummary(c *gin.Context) {
	claims := claimsFromContext(c)
	summary, err := h.grades.Calculate(c.Request.Context(), claims.TenantID, c.Param("unitId"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
