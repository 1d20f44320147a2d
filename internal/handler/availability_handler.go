package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edutec/disponibilidad-api/internal/models"
	"github.com/edutec/disponibilidad-api/internal/service"
	appErrors "github.com/edutec/disponibilidad-api/pkg/errors"
	"github.com/edutec/disponibilidad-api/pkg/response"
)

// AvailabilityHandler wires the disponibilidades service to HTTP routes.
type AvailabilityHandler struct {
	availabilities *service.AvailabilityService
}

// NewAvailabilityHandler constructs a new AvailabilityHandler.
func NewAvailabilityHandler(availabilities *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilities: availabilities}
}

// Save godoc
// @Summary Register or update a docente's availability
// @Tags Disponibilidades
// @Accept json
// @Produce json
// @Param payload body service.SaveAvailabilityRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /disponibilidades [post]
func (h *AvailabilityHandler) Save(c *gin.Context) {
	var req service.SaveAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	record, action, err := h.availabilities.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if action == service.ReconcileCreate {
		meta := map[string]interface{}{"accion": string(models.ChangeCreated)}
		response.JSON(c, http.StatusCreated, record, nil, meta)
		return
	}
	meta := map[string]interface{}{"accion": string(models.ChangeUpdated)}
	response.JSON(c, http.StatusOK, record, nil, meta)
}

// List godoc
// @Summary List registered availabilities (admin)
// @Tags Disponibilidades
// @Produce json
// @Security BearerAuth
// @Param curso query string false "Filter by course"
// @Param dia query string false "Filter by day name"
// @Param hora query string false "Filter by time block"
// @Param desde query string false "Created from (2006-01-02)"
// @Param hasta query string false "Created until (2006-01-02)"
// @Param search query string false "Search by docente name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /disponibilidades [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	filter := models.AvailabilityFilter{
		Curso:  strings.TrimSpace(c.Query("curso")),
		Dia:    strings.TrimSpace(c.Query("dia")),
		Hora:   strings.TrimSpace(c.Query("hora")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if desde := c.Query("desde"); desde != "" {
		t, err := time.Parse("2006-01-02", desde)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "desde must be formatted as 2006-01-02"))
			return
		}
		filter.Desde = &t
	}
	if hasta := c.Query("hasta"); hasta != "" {
		t, err := time.Parse("2006-01-02", hasta)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "hasta must be formatted as 2006-01-02"))
			return
		}
		filter.Hasta = &t
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	records, pagination, err := h.availabilities.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get one availability record (admin)
// @Tags Disponibilidades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Availability ID"
// @Success 200 {object} response.Envelope
// @Router /disponibilidades/{id} [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	record, err := h.availabilities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete an availability record (admin)
// @Tags Disponibilidades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Availability ID"
// @Param confirmar query bool true "Must be true to confirm deletion"
// @Success 204 "No Content"
// @Router /disponibilidades/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	confirmed := strings.EqualFold(c.Query("confirmar"), "true")
	if err := h.availabilities.Delete(c.Request.Context(), c.Param("id"), confirmed); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
