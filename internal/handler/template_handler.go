package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type templateService interface {
	List(ctx context.Context) ([]dto.TemplateSummary, error)
	Save(ctx context.Context, workspaceID string, req dto.SaveTemplateRequest) (*dto.TemplateSummary, error)
	Apply(ctx context.Context, workspaceID, templateID string) (*dto.WorkspaceResponse, error)
	Delete(ctx context.Context, id string) error
}

// TemplateHandler stores and applies reusable grid layouts.
type TemplateHandler struct {
	service templateService
}

// NewTemplateHandler constructs a TemplateHandler.
func NewTemplateHandler(service templateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// List godoc
// @Summary List templates
// @Tags Templates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Save godoc
// @Summary Save workspace grid as template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.SaveTemplateRequest true "Template name"
// @Success 201 {object} response.Envelope
// @Router /workspaces/{id}/templates [post]
func (h *TemplateHandler) Save(c *gin.Context) {
	var req dto.SaveTemplateRequest
	if !bindJSON(c, &req, "invalid template payload") {
		return
	}
	summary, err := h.service.Save(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, summary)
}

// Apply godoc
// @Summary Replace workspace grid with a template
// @Tags Templates
// @Produce json
// @Param id path string true "Workspace ID"
// @Param templateId path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/templates/{templateId}/apply [post]
func (h *TemplateHandler) Apply(c *gin.Context) {
	res, err := h.service.Apply(c.Request.Context(), c.Param("id"), c.Param("templateId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Delete godoc
// @Summary Delete template
// @Tags Templates
// @Param id path string true "Template ID"
// @Success 204
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
