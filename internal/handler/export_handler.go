package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/edutec/disponibilidad-api/internal/models"
	"github.com/edutec/disponibilidad-api/internal/service"
	appErrors "github.com/edutec/disponibilidad-api/pkg/errors"
	"github.com/edutec/disponibilidad-api/pkg/response"
)

// ExportHandler exposes the asynchronous roster export endpoints.
type ExportHandler struct {
	exports *service.ExportService
	opener  fileOpener
}

type fileOpener interface {
	Open(filename string) (*os.File, error)
}

// NewExportHandler constructs a new ExportHandler.
func NewExportHandler(exports *service.ExportService, opener fileOpener) *ExportHandler {
	return &ExportHandler{exports: exports, opener: opener}
}

type createExportRequest struct {
	Format models.ExportFormat    `json:"formato" binding:"required"`
	Params models.ExportJobParams `json:"filtros"`
}

// Create godoc
// @Summary Queue a roster export (admin)
// @Tags Exportaciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body createExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /exportaciones [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req createExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	createdBy := ""
	if claims := adminFromContext(c); claims != nil {
		createdBy = claims.Nombre
	}

	job, err := h.exports.Enqueue(c.Request.Context(), req.Format, req.Params, createdBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Get export job status (admin)
// @Tags Exportaciones
// @Produce json
// @Security BearerAuth
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /exportaciones/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.exports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exportaciones
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	relPath, downloadName, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.opener.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", downloadName),
	}
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, extraHeaders)
}
