package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsicola/academic-core-api/internal/service"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
	"github.com/dsicola/academic-core-api/pkg/response"
)

// AttendanceHandler exposes lesson and attendance mark endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	frequency  *service.FrequencyService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService, frequency *service.FrequencyService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, frequency: frequency}
}

// CreateLesson godoc
// @Summary Register a lesson occurrence
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.CreateLessonInput true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /lessons [post]
func (h *AttendanceHandler) CreateLesson(c *gin.Context) {
	claims := claimsFromContext(c)
	var input service.CreateLessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.attendance.CreateLesson(c.Request.Context(), claims.TenantID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// ListLessons godoc
// @Summary List lessons of a teaching unit
// @Tags Attendance
// @Produce json
// @Param unitId query string true "Teaching unit ID"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *AttendanceHandler) ListLessons(c *gin.Context) {
	claims := claimsFromContext(c)
	unitID := c.Query("unitId")
	if unitID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unitId is required"))
		return
	}
	lessons, err := h.attendance.ListLessons(c.Request.Context(), claims.TenantID, unitID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// RecordMark godoc
// @Summary Record or reclassify an attendance mark
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordMarkInput true "Mark payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) RecordMark(c *gin.Context) {
	claims := claimsFromContext(c)
	var input service.RecordMarkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mark, err := h.attendance.RecordMark(c.Request.Context(), claims.TenantID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark, nil)
}

// Frequency godoc
// @Summary Compute a student's frequency summary for a unit
// @Tags Attendance
// @Produce json
// @Param unitId path string true "Teaching unit ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /teaching-units/{unitId}/students/{studentId}/frequency [get]
func (h *AttendanceHandler) Frequency(c *gin.Context) {
	claims := claimsFromContext(c)
	summary, err := h.frequency.Calculate(c.Request.Context(), claims.TenantID, c.Param("unitId"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
