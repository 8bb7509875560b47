package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsicola/academic-core-api/internal/middleware"
	"github.com/dsicola/academic-core-api/internal/models"
	"github.com/dsicola/academic-core-api/internal/service"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
	"github.com/dsicola/academic-core-api/pkg/response"
)

// EnrollmentHandler exposes annual enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Create godoc
// @Summary Enroll a student into a class group
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.CreateEnrollmentInput true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var input service.CreateEnrollmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), claims.TenantID, claims.UserID, middleware.Capabilities(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Get godoc
// @Summary Get a single enrollment
// @Tags Enrollments
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{enrollmentId} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	enrollment, err := h.enrollments.Get(c.Request.Context(), claims.TenantID, c.Param("enrollmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param yearId query string false "Filter by academic year"
// @Param status query string false "Filter by final status"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	page, size := pageParams(c)
	filter := models.EnrollmentFilter{
		StudentID:   c.Query("studentId"),
		YearID:      c.Query("yearId"),
		FinalStatus: models.FinalStatus(c.Query("status")),
		Page:        page,
		PageSize:    size,
	}
	enrollments, total, err := h.enrollments.List(c.Request.Context(), claims.TenantID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, paginationMeta(page, size, total))
}
