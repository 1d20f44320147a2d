package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edutec/disponibilidad-api/internal/service"
	appErrors "github.com/edutec/disponibilidad-api/pkg/errors"
	"github.com/edutec/disponibilidad-api/pkg/response"
)

// AdminHandler exposes the admin verification gate.
type AdminHandler struct {
	admins *service.AdminService
}

// NewAdminHandler constructs a new AdminHandler.
func NewAdminHandler(admins *service.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// Verify godoc
// @Summary Verify an admin by nombre and dni
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.VerifyAdminRequest true "Admin credentials"
// @Success 200 {object} response.Envelope
// @Router /admin/verificar [post]
func (h *AdminHandler) Verify(c *gin.Context) {
	var req service.VerifyAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.admins.Verify(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
