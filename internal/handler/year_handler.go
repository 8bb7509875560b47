package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dsicola/academic-core-api/internal/models"
	"github.com/dsicola/academic-core-api/internal/service"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
	"github.com/dsicola/academic-core-api/pkg/response"
)

// YearHandler exposes academic year lifecycle endpoints.
type YearHandler struct {
	years *service.YearService
}

// NewYearHandler constructs handler.
func NewYearHandler(years *service.YearService) *YearHandler {
	return &YearHandler{years: years}
}

// List godoc
// @Summary List academic years
// @Tags AcademicYears
// @Produce json
// @Param status query string false "Filter by status (ACTIVE or CLOSED)"
// @Param year query int false "Filter by year number"
// @Success 200 {object} response.Envelope
// @Router /academic-years [get]
func (h *YearHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	page, size := pageParams(c)
	year, _ := strconv.Atoi(c.Query("year"))
	filter := models.AcademicYearFilter{
		Status:   models.YearStatus(c.Query("status")),
		Year:     year,
		Page:     page,
		PageSize: size,
	}
	years, total, err := h.years.List(c.Request.Context(), claims.TenantID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, paginationMeta(page, size, total))
}

// Get godoc
// @Summary Get a single academic year
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Year ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /academic-years/{id} [get]
func (h *YearHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	year, err := h.years.Get(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Create godoc
// @Summary Open a new academic year
// @Tags AcademicYears
// @Accept json
// @Produce json
// @Param payload body service.CreateYearInput true "Year payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /academic-years [post]
func (h *YearHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var input service.CreateYearInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.years.Create(c.Request.Context(), claims.TenantID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Close godoc
// @Summary Close an academic year and consolidate it
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Year ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /academic-years/{id}/close [post]
func (h *YearHandler) Close(c *gin.Context) {
	claims := claimsFromContext(c)
	year, report, err := h.years.Close(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"year": year, "consolidation": report}, nil)
}
