package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/grid"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type blockedRepository interface {
	ListSlots(ctx context.Context) ([]models.BlockedSlot, error)
	FindSlot(ctx context.Context, id string) (*models.BlockedSlot, error)
	UpsertSlot(ctx context.Context, slot *models.BlockedSlot) error
	DeleteSlot(ctx context.Context, id string) error
	ListTexts(ctx context.Context) ([]models.BlockedText, error)
	CreateText(ctx context.Context, text *models.BlockedText) error
	DeleteText(ctx context.Context, id string) error
}

// BlockedService manages cells and labels excluded from automatic placement.
type BlockedService struct {
	repo      blockedRepository
	roster    rosterInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlockedService constructs a BlockedService.
func NewBlockedService(repo blockedRepository, roster rosterInvalidator, validate *validator.Validate, logger *zap.Logger) *BlockedService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if roster == nil {
		roster = noopInvalidator{}
	}
	return &BlockedService{repo: repo, roster: roster, validator: validate, logger: logger}
}

// ListSlots returns all blocked cells.
func (s *BlockedService) ListSlots(ctx context.Context) ([]models.BlockedSlot, error) {
	slots, err := s.repo.ListSlots(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list blocked slots")
	}
	return slots, nil
}

// GetSlot returns one blocked cell.
func (s *BlockedService) GetSlot(ctx context.Context, id string) (*models.BlockedSlot, error) {
	slot, err := s.repo.FindSlot(ctx, id)
	if err != nil {
		return nil, lookupError(err, "blocked slot")
	}
	return slot, nil
}

// BlockSlot blocks a cell. Blocking an already blocked cell replaces its label.
func (s *BlockedService) BlockSlot(ctx context.Context, req dto.BlockedSlotRequest) (*models.BlockedSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid blocked slot payload")
	}
	c, _ := grid.ParseKey(req.CellKey)
	slot := &models.BlockedSlot{CellKey: c.Key(), Label: strings.TrimSpace(req.Label)}
	if err := s.repo.UpsertSlot(ctx, slot); err != nil {
		return nil, internalError(err, "failed to block slot")
	}
	s.roster.Invalidate(ctx)
	return slot, nil
}

// UnblockSlot removes a blocked cell.
func (s *BlockedService) UnblockSlot(ctx context.Context, id string) error {
	if _, err := s.repo.FindSlot(ctx, id); err != nil {
		return lookupError(err, "blocked slot")
	}
	if err := s.repo.DeleteSlot(ctx, id); err != nil {
		return internalError(err, "failed to unblock slot")
	}
	s.roster.Invalidate(ctx)
	return nil
}

// ListTexts returns all blocking labels.
func (s *BlockedService) ListTexts(ctx context.Context) ([]models.BlockedText, error) {
	texts, err := s.repo.ListTexts(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list blocked texts")
	}
	return texts, nil
}

// AddText registers a blocking label.
func (s *BlockedService) AddText(ctx context.Context, req dto.BlockedTextRequest) (*models.BlockedText, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid blocked text payload")
	}
	text := &models.BlockedText{Text: req.Text}
	if err := s.repo.CreateText(ctx, text); err != nil {
		return nil, internalError(err, "failed to create blocked text")
	}
	s.roster.Invalidate(ctx)
	return text, nil
}

// RemoveText deletes a blocking label.
func (s *BlockedService) RemoveText(ctx context.Context, id string) error {
	if err := s.repo.DeleteText(ctx, id); err != nil {
		return lookupError(err, "blocked text")
	}
	s.roster.Invalidate(ctx)
	return nil
}
