package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsicola/academic-core-api/internal/models"
	"github.com/dsicola/academic-core-api/internal/service"
	"github.com/dsicola/academic-core-api/pkg/response"
)

// HistoryHandler exposes read-only access to consolidated snapshots.
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler constructs handler.
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List godoc
// @Summary List historical records
// @Tags History
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param yearId query string false "Filter by academic year"
// @Param unitId query string false "Filter by teaching unit"
// @Success 200 {object} response.Envelope
// @Router /historical-records [get]
func (h *HistoryHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	page, size := pageParams(c)
	filter := models.HistoricalRecordFilter{
		StudentID: c.Query("studentId"),
		YearID:    c.Query("yearId"),
		UnitID:    c.Query("unitId"),
		Page:      page,
		PageSize:  size,
	}
	records, total, err := h.history.List(c.Request.Context(), claims.TenantID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, paginationMeta(page, size, total))
}
