package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsicola/academic-core-api/internal/service"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
	"github.com/dsicola/academic-core-api/pkg/response"
)

// TeachingUnitHandler exposes teaching unit endpoints.
type TeachingUnitHandler struct {
	units *service.TeachingUnitService
}

// NewTeachingUnitHandler constructs handler.
func NewTeachingUnitHandler(units *service.TeachingUnitService) *TeachingUnitHandler {
	return &TeachingUnitHandler{units: units}
}

// Get godoc
// @Summary Get a teaching unit
// @Tags TeachingUnits
// @Produce json
// @Param unitId path string true "Teaching unit ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teaching-units/{unitId} [get]
func (h *TeachingUnitHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	unit, err := h.units.Get(c.Request.Context(), claims.TenantID, c.Param("unitId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, unit, nil)
}

// ListByYear godoc
// @Summary List teaching units of a year
// @Tags TeachingUnits
// @Produce json
// @Param yearId query string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /teaching-units [get]
func (h *TeachingUnitHandler) ListByYear(c *gin.Context) {
	claims := claimsFromContext(c)
	yearID := c.Query("yearId")
	if yearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "yearId is required"))
		return
	}
	units, err := h.units.ListByYear(c.Request.Context(), claims.TenantID, yearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, units, nil)
}

// Update godoc
// @Summary Edit a teaching unit
// @Tags TeachingUnits
// @Accept json
// @Produce json
// @Param unitId path string true "Teaching unit ID"
// @Param payload body service.UpdateUnitInput true "Unit payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teaching-units/{unitId} [patch]
func (h *TeachingUnitHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var input service.UpdateUnitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	unit, err := h.units.Update(c.Request.Context(), claims.TenantID, c.Param("unitId"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, unit, nil)
}
