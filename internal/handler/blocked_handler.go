package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type blockedService interface {
	ListSlots(ctx context.Context) ([]models.BlockedSlot, error)
	GetSlot(ctx context.Context, id string) (*models.BlockedSlot, error)
	BlockSlot(ctx context.Context, req dto.BlockedSlotRequest) (*models.BlockedSlot, error)
	UnblockSlot(ctx context.Context, id string) error
	ListTexts(ctx context.Context) ([]models.BlockedText, error)
	AddText(ctx context.Context, req dto.BlockedTextRequest) (*models.BlockedText, error)
	RemoveText(ctx context.Context, id string) error
}

// BlockedHandler manages cells and labels excluded from automatic placement.
type BlockedHandler struct {
	service blockedService
}

// NewBlockedHandler constructs a BlockedHandler.
func NewBlockedHandler(service blockedService) *BlockedHandler {
	return &BlockedHandler{service: service}
}

// ListSlots godoc
// @Summary List blocked slots
// @Tags Blocked
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blocked-slots [get]
func (h *BlockedHandler) ListSlots(c *gin.Context) {
	items, err := h.service.ListSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// GetSlot godoc
// @Summary Get blocked slot
// @Tags Blocked
// @Produce json
// @Param id path string true "Blocked slot ID"
// @Success 200 {object} response.Envelope
// @Router /blocked-slots/{id} [get]
func (h *BlockedHandler) GetSlot(c *gin.Context) {
	slot, err := h.service.GetSlot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slot)
}

// BlockSlot godoc
// @Summary Block a grid cell
// @Description Blocking an already blocked cell replaces its label.
// @Tags Blocked
// @Accept json
// @Produce json
// @Param payload body dto.BlockedSlotRequest true "Cell key and label"
// @Success 201 {object} response.Envelope
// @Router /blocked-slots [post]
func (h *BlockedHandler) BlockSlot(c *gin.Context) {
	var req dto.BlockedSlotRequest
	if !bindJSON(c, &req, "invalid blocked slot payload") {
		return
	}
	slot, err := h.service.BlockSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// UnblockSlot godoc
// @Summary Remove a blocked slot
// @Tags Blocked
// @Param id path string true "Blocked slot ID"
// @Success 204
// @Router /blocked-slots/{id} [delete]
func (h *BlockedHandler) UnblockSlot(c *gin.Context) {
	if err := h.service.UnblockSlot(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTexts godoc
// @Summary List blocked texts
// @Tags Blocked
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blocked-texts [get]
func (h *BlockedHandler) ListTexts(c *gin.Context) {
	items, err := h.service.ListTexts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// AddText godoc
// @Summary Add blocked text
// @Tags Blocked
// @Accept json
// @Produce json
// @Param payload body dto.BlockedTextRequest true "Label"
// @Success 201 {object} response.Envelope
// @Router /blocked-texts [post]
func (h *BlockedHandler) AddText(c *gin.Context) {
	var req dto.BlockedTextRequest
	if !bindJSON(c, &req, "invalid blocked text payload") {
		return
	}
	text, err := h.service.AddText(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, text)
}

// RemoveText godoc
// @Summary Remove blocked text
// @Tags Blocked
// @Param id path string true "Blocked text ID"
// @Success 204
// @Router /blocked-texts/{id} [delete]
func (h *BlockedHandler) RemoveText(c *gin.Context) {
	if err := h.service.RemoveText(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
