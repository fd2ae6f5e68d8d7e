package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type workspaceServiceMock struct {
	calls       []string
	lastCell    string
	lastMerge   dto.MergeRequest
	lastIndex   int
	lastGen     dto.GenerateRequest
	applied     bool
	generateErr error
}

func (m *workspaceServiceMock) record(name string) (*dto.WorkspaceResponse, error) {
	m.calls = append(m.calls, name)
	return &dto.WorkspaceResponse{Workspace: dto.WorkspaceView{ID: "w1"}, Applied: m.applied}, nil
}

func (m *workspaceServiceMock) Create(ctx context.Context, req dto.CreateWorkspaceRequest) (*dto.WorkspaceView, error) {
	m.calls = append(m.calls, "create")
	return &dto.WorkspaceView{ID: "w1", Name: req.Name, ColumnCount: req.ColumnCount}, nil
}

func (m *workspaceServiceMock) Get(ctx context.Context, id string) (*dto.WorkspaceView, error) {
	if id != "w1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "workspace not found")
	}
	return &dto.WorkspaceView{ID: id}, nil
}

func (m *workspaceServiceMock) List(ctx context.Context, filter models.RosterFilter) ([]dto.WorkspaceSummary, *models.Pagination, error) {
	return []dto.WorkspaceSummary{{ID: "w1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *workspaceServiceMock) Delete(ctx context.Context, id string) error {
	m.calls = append(m.calls, "delete")
	return nil
}

func (m *workspaceServiceMock) ToggleSelect(ctx context.Context, id string, req dto.CellRequest) (*dto.WorkspaceResponse, error) {
	m.lastCell = req.Cell
	return m.record("select")
}

func (m *workspaceServiceMock) ClearSelection(ctx context.Context, id string) (*dto.WorkspaceResponse, error) {
	return m.record("clear")
}

func (m *workspaceServiceMock) Merge(ctx context.Context, id string, req dto.MergeRequest) (*dto.WorkspaceResponse, error) {
	m.lastMerge = req
	return m.record("merge")
}

func (m *workspaceServiceMock) Unmerge(ctx context.Context, id string, req dto.CellRequest) (*dto.WorkspaceResponse, error) {
	m.lastCell = req.Cell
	return m.record("unmerge")
}

func (m *workspaceServiceMock) AddColumn(ctx context.Context, id string, req dto.AddColumnRequest) (*dto.WorkspaceResponse, error) {
	return m.record("add-column")
}

func (m *workspaceServiceMock) DeleteColumn(ctx context.Context, id string, index int) (*dto.WorkspaceResponse, error) {
	m.lastIndex = index
	return m.record("delete-column")
}

func (m *workspaceServiceMock) SetDuration(ctx context.Context, id string, req dto.DurationRequest) (*dto.WorkspaceResponse, error) {
	return m.record("duration")
}

func (m *workspaceServiceMock) SetTiming(ctx context.Context, id string, req dto.TimingRequest) (*dto.WorkspaceResponse, error) {
	return m.record("timing")
}

func (m *workspaceServiceMock) BeginEdit(ctx context.Context, id string, req dto.CellRequest) (*dto.WorkspaceResponse, error) {
	return m.record("edit-begin")
}

func (m *workspaceServiceMock) UpdateBuffer(ctx context.Context, id string, req dto.EditBufferRequest) (*dto.WorkspaceResponse, error) {
	return m.record("edit-buffer")
}

func (m *workspaceServiceMock) SaveEdit(ctx context.Context, id string) (*dto.WorkspaceResponse, error) {
	return m.record("edit-save")
}

func (m *workspaceServiceMock) CancelEdit(ctx context.Context, id string) (*dto.WorkspaceResponse, error) {
	return m.record("edit-cancel")
}

func (m *workspaceServiceMock) SetCell(ctx context.Context, id string, req dto.SetCellRequest) (*dto.WorkspaceResponse, error) {
	return m.record("cell")
}

func (m *workspaceServiceMock) Format(ctx context.Context, id string, req dto.FormatRequest) (*dto.WorkspaceResponse, error) {
	return m.record("format")
}

func (m *workspaceServiceMock) Generate(ctx context.Context, id string, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	m.lastGen = req
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateResponse{Workspace: dto.WorkspaceView{ID: id}, Assigned: 4}, nil
}

func (m *workspaceServiceMock) Loaded() int { return 7 }

func newWorkspaceRouter(svc workspaceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWorkspaceHandler(svc)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.GET("/workspaces", h.List)
	router.POST("/workspaces", h.Create)
	router.GET("/workspaces/:id", h.Get)
	router.DELETE("/workspaces/:id", h.Delete)
	router.POST("/workspaces/:id/select", h.Select)
	router.POST("/workspaces/:id/clear-selection", h.ClearSelection)
	router.POST("/workspaces/:id/merge", h.Merge)
	router.POST("/workspaces/:id/unmerge", h.Unmerge)
	router.POST("/workspaces/:id/columns", h.AddColumn)
	router.DELETE("/workspaces/:id/columns/:index", h.DeleteColumn)
	router.POST("/workspaces/:id/durations", h.SetDuration)
	router.PUT("/workspaces/:id/timing", h.SetTiming)
	router.POST("/workspaces/:id/edit/begin", h.BeginEdit)
	router.POST("/workspaces/:id/edit/buffer", h.UpdateBuffer)
	router.POST("/workspaces/:id/edit/save", h.SaveEdit)
	router.POST("/workspaces/:id/edit/cancel", h.CancelEdit)
	router.POST("/workspaces/:id/cells", h.SetCell)
	router.POST("/workspaces/:id/format", h.Format)
	router.POST("/workspaces/:id/generate", h.Generate)
	return router
}

func TestWorkspaceHandlerCreateAndGet(t *testing.T) {
	svc := &workspaceServiceMock{}
	router := newWorkspaceRouter(svc)

	w := doJSON(router, http.MethodPost, "/workspaces", `{"name":"Grade 7","columnCount":8}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"columnCount":8`)

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/workspaces/w1", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/workspaces/w2", "").Code)
	assert.Equal(t, http.StatusNoContent, doJSON(router, http.MethodDelete, "/workspaces/w1", "").Code)
}

func TestWorkspaceHandlerListCarriesMeta(t *testing.T) {
	router := newWorkspaceRouter(&workspaceServiceMock{})

	w := doJSON(router, http.MethodGet, "/workspaces", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 7, body.Meta["loaded"])
	assert.Contains(t, body.Meta, "processing_time_ms")
}

func TestWorkspaceHandlerGridOperations(t *testing.T) {
	svc := &workspaceServiceMock{applied: true}
	router := newWorkspaceRouter(svc)

	steps := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/workspaces/w1/select", `{"cell":"0-1"}`},
		{http.MethodPost, "/workspaces/w1/clear-selection", ""},
		{http.MethodPost, "/workspaces/w1/merge", ""},
		{http.MethodPost, "/workspaces/w1/unmerge", `{"cell":"0-1"}`},
		{http.MethodPost, "/workspaces/w1/columns", `{"after":2}`},
		{http.MethodDelete, "/workspaces/w1/columns/3", ""},
		{http.MethodPost, "/workspaces/w1/durations", `{"column":1,"minutes":60}`},
		{http.MethodPut, "/workspaces/w1/timing", `{"startTime":"07:30"}`},
		{http.MethodPost, "/workspaces/w1/edit/begin", `{"cell":"1-1"}`},
		{http.MethodPost, "/workspaces/w1/edit/buffer", `{"text":"Math"}`},
		{http.MethodPost, "/workspaces/w1/edit/save", ""},
		{http.MethodPost, "/workspaces/w1/edit/cancel", ""},
		{http.MethodPost, "/workspaces/w1/cells", `{"cell":"1-2","text":"Art"}`},
		{http.MethodPost, "/workspaces/w1/format", `{"alignment":"left"}`},
	}
	for _, step := range steps {
		w := doJSON(router, step.method, step.path, step.body)
		require.Equal(t, http.StatusOK, w.Code, step.path)
		assert.Contains(t, w.Body.String(), `"applied":true`, step.path)
	}

	assert.Equal(t, []string{
		"select", "clear", "merge", "unmerge", "add-column", "delete-column", "duration",
		"timing", "edit-begin", "edit-buffer", "edit-save", "edit-cancel", "cell", "format",
	}, svc.calls)
	assert.Equal(t, 3, svc.lastIndex)
	assert.Empty(t, svc.lastMerge.Cells)
}

func TestWorkspaceHandlerMergeWithCells(t *testing.T) {
	svc := &workspaceServiceMock{}
	router := newWorkspaceRouter(svc)

	w := doJSON(router, http.MethodPost, "/workspaces/w1/merge", `{"cells":["0-0","0-1"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"applied":false`)
	assert.Equal(t, []string{"0-0", "0-1"}, svc.lastMerge.Cells)
}

func TestWorkspaceHandlerRejectsBadInput(t *testing.T) {
	svc := &workspaceServiceMock{}
	router := newWorkspaceRouter(svc)

	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodDelete, "/workspaces/w1/columns/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodPost, "/workspaces/w1/select", `{"cell":`).Code)
	assert.Empty(t, svc.calls)
}

func TestWorkspaceHandlerGenerate(t *testing.T) {
	svc := &workspaceServiceMock{}
	router := newWorkspaceRouter(svc)

	w := doJSON(router, http.MethodPost, "/workspaces/w1/generate", `{"sessionId":"s1","seed":42}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"assigned":4`)
	require.NotNil(t, svc.lastGen.Seed)
	assert.EqualValues(t, 42, *svc.lastGen.Seed)

	w = doJSON(router, http.MethodPost, "/workspaces/w1/generate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.lastGen.Seed)

	svc.generateErr = appErrors.Clone(appErrors.ErrPreconditionFailed, "automatic scheduling is disabled")
	w = doJSON(router, http.MethodPost, "/workspaces/w1/generate", "")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}
