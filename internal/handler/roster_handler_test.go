package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type tutorServiceMock struct {
	items      []models.Tutor
	lastFilter models.RosterFilter
	created    *dto.TutorRequest
	getErr     error
	deleteErr  error
}

func (m *tutorServiceMock) List(ctx context.Context, filter models.RosterFilter) ([]models.Tutor, *models.Pagination, error) {
	m.lastFilter = filter
	return m.items, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.items)}, nil
}

func (m *tutorServiceMock) Get(ctx context.Context, id string) (*models.Tutor, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.Tutor{ID: id, Name: "Ana"}, nil
}

func (m *tutorServiceMock) Create(ctx context.Context, req dto.TutorRequest) (*models.Tutor, error) {
	m.created = &req
	return &models.Tutor{ID: "t1", Name: req.Name}, nil
}

func (m *tutorServiceMock) Update(ctx context.Context, id string, req dto.TutorRequest) (*models.Tutor, error) {
	return &models.Tutor{ID: id, Name: req.Name}, nil
}

func (m *tutorServiceMock) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

func newTutorRouter(svc tutorService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTutorHandler(svc)
	router := gin.New()
	router.GET("/tutors", h.List)
	router.POST("/tutors", h.Create)
	router.GET("/tutors/:id", h.Get)
	router.PUT("/tutors/:id", h.Update)
	router.DELETE("/tutors/:id", h.Delete)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTutorHandlerList(t *testing.T) {
	svc := &tutorServiceMock{items: []models.Tutor{{ID: "t1", Name: "Ana"}}}
	router := newTutorRouter(svc)

	w := doJSON(router, http.MethodGet, "/tutors?search=%20ana%20&page=2&pageSize=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RosterFilter{Search: "ana", Page: 2, PageSize: 5}, svc.lastFilter)

	var body struct {
		Data       []models.Tutor     `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 1, body.Pagination.TotalCount)
}

func TestTutorHandlerCreate(t *testing.T) {
	svc := &tutorServiceMock{}
	router := newTutorRouter(svc)

	w := doJSON(router, http.MethodPost, "/tutors", `{"name":"Ana","subjects":["math"],"maxPeriodsPerDay":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "Ana", svc.created.Name)
	require.NotNil(t, svc.created.MaxPeriodsPerDay)
	assert.Equal(t, 2, *svc.created.MaxPeriodsPerDay)

	w = doJSON(router, http.MethodPost, "/tutors", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTutorHandlerErrors(t *testing.T) {
	svc := &tutorServiceMock{
		getErr:    appErrors.Clone(appErrors.ErrNotFound, "tutor not found"),
		deleteErr: appErrors.Clone(appErrors.ErrNotFound, "tutor not found"),
	}
	router := newTutorRouter(svc)

	w := doJSON(router, http.MethodGet, "/tutors/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "tutor not found")

	w = doJSON(router, http.MethodDelete, "/tutors/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTutorHandlerUpdateAndDelete(t *testing.T) {
	router := newTutorRouter(&tutorServiceMock{})

	w := doJSON(router, http.MethodPut, "/tutors/t9", `{"name":"Budi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"t9"`)

	w = doJSON(router, http.MethodDelete, "/tutors/t9", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type blockedServiceMock struct {
	blocked []dto.BlockedSlotRequest
	texts   []string
}

func (m *blockedServiceMock) ListSlots(ctx context.Context) ([]models.BlockedSlot, error) {
	return []models.BlockedSlot{{ID: "b1", CellKey: "0-0"}}, nil
}

func (m *blockedServiceMock) GetSlot(ctx context.Context, id string) (*models.BlockedSlot, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "blocked slot not found")
}

func (m *blockedServiceMock) BlockSlot(ctx context.Context, req dto.BlockedSlotRequest) (*models.BlockedSlot, error) {
	m.blocked = append(m.blocked, req)
	return &models.BlockedSlot{ID: "b2", CellKey: req.CellKey, Label: req.Label}, nil
}

func (m *blockedServiceMock) UnblockSlot(ctx context.Context, id string) error {
	return nil
}

func (m *blockedServiceMock) ListTexts(ctx context.Context) ([]models.BlockedText, error) {
	return nil, nil
}

func (m *blockedServiceMock) AddText(ctx context.Context, req dto.BlockedTextRequest) (*models.BlockedText, error) {
	m.texts = append(m.texts, req.Text)
	return &models.BlockedText{ID: "x1", Text: req.Text}, nil
}

func (m *blockedServiceMock) RemoveText(ctx context.Context, id string) error {
	return nil
}

func TestBlockedHandlerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &blockedServiceMock{}
	h := NewBlockedHandler(svc)
	router := gin.New()
	router.GET("/blocked-slots", h.ListSlots)
	router.GET("/blocked-slots/:id", h.GetSlot)
	router.POST("/blocked-slots", h.BlockSlot)
	router.DELETE("/blocked-slots/:id", h.UnblockSlot)
	router.POST("/blocked-texts", h.AddText)
	router.DELETE("/blocked-texts/:id", h.RemoveText)

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/blocked-slots", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/blocked-slots/b9", "").Code)
	assert.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/blocked-slots", `{"cellKey":"2-3","label":"Assembly"}`).Code)
	assert.Equal(t, http.StatusNoContent, doJSON(router, http.MethodDelete, "/blocked-slots/b1", "").Code)
	assert.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, "/blocked-texts", `{"text":"LUNCH"}`).Code)
	assert.Equal(t, http.StatusNoContent, doJSON(router, http.MethodDelete, "/blocked-texts/x1", "").Code)

	require.Len(t, svc.blocked, 1)
	assert.Equal(t, "2-3", svc.blocked[0].CellKey)
	assert.Equal(t, []string{"LUNCH"}, svc.texts)
}
