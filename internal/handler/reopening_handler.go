package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsicola/academic-core-api/internal/models"
	"github.com/dsicola/academic-core-api/internal/service"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
	"github.com/dsicola/academic-core-api/pkg/response"
)

// ReopeningHandler exposes reopening window endpoints.
type ReopeningHandler struct {
	windows *service.ReopeningService
}

// NewReopeningHandler constructs handler.
func NewReopeningHandler(windows *service.ReopeningService) *ReopeningHandler {
	return &ReopeningHandler{windows: windows}
}

// List godoc
// @Summary List reopening windows
// @Tags ReopeningWindows
// @Produce json
// @Param yearId query string false "Filter by academic year"
// @Param active query bool false "Only currently active windows"
// @Success 200 {object} response.Envelope
// @Router /reopening-windows [get]
func (h *ReopeningHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	page, size := pageParams(c)
	filter := models.ReopeningWindowFilter{
		YearID:     c.Query("yearId"),
		ActiveOnly: c.Query("active") == "true",
		Page:       page,
		PageSize:   size,
	}
	windows, total, err := h.windows.List(c.Request.Context(), claims.TenantID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, paginationMeta(page, size, total))
}

// Get godoc
// @Summary Get a single reopening window
// @Tags ReopeningWindows
// @Produce json
// @Param id path string true "Window ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reopening-windows/{id} [get]
func (h *ReopeningHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	window, err := h.windows.Get(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Create godoc
// @Summary Open a reopening window on a closed year
// @Tags ReopeningWindows
// @Accept json
// @Produce json
// @Param payload body service.CreateWindowInput true "Window payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reopening-windows [post]
func (h *ReopeningHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var input service.CreateWindowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	window, err := h.windows.Create(c.Request.Context(), claims.TenantID, claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, window)
}

type terminateWindowRequest struct {
	Notes string `json:"notes"`
}

// Terminate godoc
// @Summary Terminate a reopening window before its natural expiry
// @Tags ReopeningWindows
// @Accept json
// @Produce json
// @Param id path string true "Window ID"
// @Param payload body terminateWindowRequest false "Termination notes"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reopening-windows/{id}/terminate [post]
func (h *ReopeningHandler) Terminate(c *gin.Context) {
	claims := claimsFromContext(c)
	var req terminateWindowRequest
	_ = c.ShouldBindJSON(&req)
	window, err := h.windows.TerminateEarly(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}
