package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, workspaceID string, req dto.ExportRequest) (*dto.ExportResponse, error)
	Download(ctx context.Context, token string) (*dto.ExportFile, error)
}

// ExportHandler renders workspaces to files and serves signed downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Export workspace
// @Description Renders the grid to PDF, XLSX or CSV and returns a signed download URL.
// @Tags Export
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.ExportRequest true "Format, title and class filter"
// @Success 201 {object} response.Envelope
// @Router /workspaces/{id}/export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if !bindJSON(c, &req, "invalid export payload") {
		return
	}
	res, err := h.service.Export(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Download godoc
// @Summary Download an exported file
// @Tags Export
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
