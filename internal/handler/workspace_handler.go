package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type workspaceService interface {
	Create(ctx context.Context, req dto.CreateWorkspaceRequest) (*dto.WorkspaceView, error)
	Get(ctx context.Context, id string) (*dto.WorkspaceView, error)
	List(ctx context.Context, filter models.RosterFilter) ([]dto.WorkspaceSummary, *models.Pagination, error)
	Delete(ctx context.Context, id string) error
	ToggleSelect(ctx context.Context, id string, req dto.CellRequest) (*dto.WorkspaceResponse, error)
	ClearSelection(ctx context.Context, id string) (*dto.WorkspaceResponse, error)
	Merge(ctx context.Context, id string, req dto.MergeRequest) (*dto.WorkspaceResponse, error)
	Unmerge(ctx context.Context, id string, req dto.CellRequest) (*dto.WorkspaceResponse, error)
	AddColumn(ctx context.Context, id string, req dto.AddColumnRequest) (*dto.WorkspaceResponse, error)
	DeleteColumn(ctx context.Context, id string, index int) (*dto.WorkspaceResponse, error)
	SetDuration(ctx context.Context, id string, req dto.DurationRequest) (*dto.WorkspaceResponse, error)
	SetTiming(ctx context.Context, id string, req dto.TimingRequest) (*dto.WorkspaceResponse, error)
	BeginEdit(ctx context.Context, id string, req dto.CellRequest) (*dto.WorkspaceResponse, error)
	UpdateBuffer(ctx context.Context, id string, req dto.EditBufferRequest) (*dto.WorkspaceResponse, error)
	SaveEdit(ctx context.Context, id string) (*dto.WorkspaceResponse, error)
	CancelEdit(ctx context.Context, id string) (*dto.WorkspaceResponse, error)
	SetCell(ctx context.Context, id string, req dto.SetCellRequest) (*dto.WorkspaceResponse, error)
	Format(ctx context.Context, id string, req dto.FormatRequest) (*dto.WorkspaceResponse, error)
	Generate(ctx context.Context, id string, req dto.GenerateRequest) (*dto.GenerateResponse, error)
	Loaded() int
}

// WorkspaceHandler exposes the timetable editor. Operations whose
// preconditions do not hold answer 200 with applied=false.
type WorkspaceHandler struct {
	service workspaceService
}

// NewWorkspaceHandler constructs a WorkspaceHandler.
func NewWorkspaceHandler(service workspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{service: service}
}

// Create godoc
// @Summary Open a new workspace
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param payload body dto.CreateWorkspaceRequest true "Workspace payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /workspaces [post]
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req dto.CreateWorkspaceRequest
	if !bindJSON(c, &req, "invalid workspace payload") {
		return
	}
	view, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// List godoc
// @Summary List persisted workspaces
// @Tags Workspaces
// @Produce json
// @Param search query string false "Search by name"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /workspaces [get]
func (h *WorkspaceHandler) List(c *gin.Context) {
	items, pagination, err := h.service.List(c.Request.Context(), rosterFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "loaded", h.service.Loaded())
	response.JSON(c, http.StatusOK, items, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get workspace state
// @Tags Workspaces
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workspaces/{id} [get]
func (h *WorkspaceHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Delete godoc
// @Summary Delete workspace
// @Tags Workspaces
// @Param id path string true "Workspace ID"
// @Success 204
// @Router /workspaces/{id} [delete]
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Select godoc
// @Summary Toggle a cell in the selection
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.CellRequest true "Cell"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/select [post]
func (h *WorkspaceHandler) Select(c *gin.Context) {
	var req dto.CellRequest
	if !bindJSON(c, &req, "invalid cell payload") {
		return
	}
	h.respond(c)(h.service.ToggleSelect(c.Request.Context(), c.Param("id"), req))
}

// ClearSelection godoc
// @Summary Clear the selection
// @Tags Workspaces
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/clear-selection [post]
func (h *WorkspaceHandler) ClearSelection(c *gin.Context) {
	h.respond(c)(h.service.ClearSelection(c.Request.Context(), c.Param("id")))
}

// Merge godoc
// @Summary Merge cells
// @Description Merges the listed cells, or the current selection when the list is empty.
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.MergeRequest false "Cells"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/merge [post]
func (h *WorkspaceHandler) Merge(c *gin.Context) {
	var req dto.MergeRequest
	if !bindOptionalJSON(c, &req, "invalid merge payload") {
		return
	}
	h.respond(c)(h.service.Merge(c.Request.Context(), c.Param("id"), req))
}

// Unmerge godoc
// @Summary Split a merged region
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.CellRequest true "Region anchor"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/unmerge [post]
func (h *WorkspaceHandler) Unmerge(c *gin.Context) {
	var req dto.CellRequest
	if !bindJSON(c, &req, "invalid cell payload") {
		return
	}
	h.respond(c)(h.service.Unmerge(c.Request.Context(), c.Param("id"), req))
}

// AddColumn godoc
// @Summary Insert a column
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.AddColumnRequest true "Insert after index (-1 prepends)"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/columns [post]
func (h *WorkspaceHandler) AddColumn(c *gin.Context) {
	var req dto.AddColumnRequest
	if !bindJSON(c, &req, "invalid column payload") {
		return
	}
	h.respond(c)(h.service.AddColumn(c.Request.Context(), c.Param("id"), req))
}

// DeleteColumn godoc
// @Summary Delete a column
// @Tags Workspaces
// @Produce json
// @Param id path string true "Workspace ID"
// @Param index path int true "Column index"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/columns/{index} [delete]
func (h *WorkspaceHandler) DeleteColumn(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	h.respond(c)(h.service.DeleteColumn(c.Request.Context(), c.Param("id"), index))
}

// SetDuration godoc
// @Summary Override a column duration
// @Description Minutes of 0 restores the default duration.
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.DurationRequest true "Column duration"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/durations [post]
func (h *WorkspaceHandler) SetDuration(c *gin.Context) {
	var req dto.DurationRequest
	if !bindJSON(c, &req, "invalid duration payload") {
		return
	}
	h.respond(c)(h.service.SetDuration(c.Request.Context(), c.Param("id"), req))
}

// SetTiming godoc
// @Summary Change default slot duration and start time
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.TimingRequest true "Timing"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/timing [put]
func (h *WorkspaceHandler) SetTiming(c *gin.Context) {
	var req dto.TimingRequest
	if !bindJSON(c, &req, "invalid timing payload") {
		return
	}
	h.respond(c)(h.service.SetTiming(c.Request.Context(), c.Param("id"), req))
}

// BeginEdit godoc
// @Summary Start editing a cell
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.CellRequest true "Cell"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/edit/begin [post]
func (h *WorkspaceHandler) BeginEdit(c *gin.Context) {
	var req dto.CellRequest
	if !bindJSON(c, &req, "invalid cell payload") {
		return
	}
	h.respond(c)(h.service.BeginEdit(c.Request.Context(), c.Param("id"), req))
}

// UpdateBuffer godoc
// @Summary Replace the edit buffer
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.EditBufferRequest true "Text"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/edit/buffer [post]
func (h *WorkspaceHandler) UpdateBuffer(c *gin.Context) {
	var req dto.EditBufferRequest
	if !bindJSON(c, &req, "invalid edit payload") {
		return
	}
	h.respond(c)(h.service.UpdateBuffer(c.Request.Context(), c.Param("id"), req))
}

// SaveEdit godoc
// @Summary Commit the edit buffer
// @Tags Workspaces
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/edit/save [post]
func (h *WorkspaceHandler) SaveEdit(c *gin.Context) {
	h.respond(c)(h.service.SaveEdit(c.Request.Context(), c.Param("id")))
}

// CancelEdit godoc
// @Summary Discard the edit buffer
// @Tags Workspaces
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/edit/cancel [post]
func (h *WorkspaceHandler) CancelEdit(c *gin.Context) {
	h.respond(c)(h.service.CancelEdit(c.Request.Context(), c.Param("id")))
}

// SetCell godoc
// @Summary Write cell content
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.SetCellRequest true "Cell content"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/cells [post]
func (h *WorkspaceHandler) SetCell(c *gin.Context) {
	var req dto.SetCellRequest
	if !bindJSON(c, &req, "invalid cell payload") {
		return
	}
	h.respond(c)(h.service.SetCell(c.Request.Context(), c.Param("id"), req))
}

// Format godoc
// @Summary Format the selected cells
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.FormatRequest true "Formatting"
// @Success 200 {object} response.Envelope
// @Router /workspaces/{id}/format [post]
func (h *WorkspaceHandler) Format(c *gin.Context) {
	var req dto.FormatRequest
	if !bindJSON(c, &req, "invalid format payload") {
		return
	}
	h.respond(c)(h.service.Format(c.Request.Context(), c.Param("id"), req))
}

// Generate godoc
// @Summary Auto-fill the workspace from the roster
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param payload body dto.GenerateRequest false "Session scope and seed"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /workspaces/{id}/generate [post]
func (h *WorkspaceHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if !bindOptionalJSON(c, &req, "invalid generate payload") {
		return
	}
	result, err := h.service.Generate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func (h *WorkspaceHandler) respond(c *gin.Context) func(*dto.WorkspaceResponse, error) {
	return func(res *dto.WorkspaceResponse, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, res)
	}
}
