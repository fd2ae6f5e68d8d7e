package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type tutorService interface {
	List(ctx context.Context, filter models.RosterFilter) ([]models.Tutor, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Tutor, error)
	Create(ctx context.Context, req dto.TutorRequest) (*models.Tutor, error)
	Update(ctx context.Context, id string, req dto.TutorRequest) (*models.Tutor, error)
	Delete(ctx context.Context, id string) error
}

// TutorHandler exposes tutor roster endpoints.
type TutorHandler struct {
	service tutorService
}

// NewTutorHandler constructs a TutorHandler.
func NewTutorHandler(service tutorService) *TutorHandler {
	return &TutorHandler{service: service}
}

// List godoc
// @Summary List tutors
// @Tags Tutors
// @Produce json
// @Param search query string false "Search by name or subject"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tutors [get]
func (h *TutorHandler) List(c *gin.Context) {
	items, pagination, err := h.service.List(c.Request.Context(), rosterFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get tutor
// @Tags Tutors
// @Produce json
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutors/{id} [get]
func (h *TutorHandler) Get(c *gin.Context) {
	tutor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tutor)
}

// Create godoc
// @Summary Create tutor
// @Tags Tutors
// @Accept json
// @Produce json
// @Param payload body dto.TutorRequest true "Tutor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tutors [post]
func (h *TutorHandler) Create(c *gin.Context) {
	var req dto.TutorRequest
	if !bindJSON(c, &req, "invalid tutor payload") {
		return
	}
	tutor, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tutor)
}

// Update godoc
// @Summary Update tutor
// @Tags Tutors
// @Accept json
// @Produce json
// @Param id path string true "Tutor ID"
// @Param payload body dto.TutorRequest true "Tutor payload"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id} [put]
func (h *TutorHandler) Update(c *gin.Context) {
	var req dto.TutorRequest
	if !bindJSON(c, &req, "invalid tutor payload") {
		return
	}
	tutor, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tutor)
}

// Delete godoc
// @Summary Delete tutor
// @Tags Tutors
// @Param id path string true "Tutor ID"
// @Success 204
// @Router /tutors/{id} [delete]
func (h *TutorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
