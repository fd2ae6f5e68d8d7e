package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/grid"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type templateRepository interface {
	List(ctx context.Context) ([]models.Template, error)
	FindByID(ctx context.Context, id string) (*models.Template, error)
	Create(ctx context.Context, tpl *models.Template) error
	Delete(ctx context.Context, id string) error
}

type workspaceSnapshots interface {
	Snapshot(ctx context.Context, id string) (grid.Snapshot, string, error)
	ApplySnapshot(ctx context.Context, id string, snap grid.Snapshot) (*dto.WorkspaceResponse, error)
}

// TemplateService stores workspace grids as reusable templates.
type TemplateService struct {
	repo       templateRepository
	workspaces workspaceSnapshots
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(repo templateRepository, workspaces workspaceSnapshots, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{repo: repo, workspaces: workspaces, validator: validate, logger: logger}
}

// List returns template summaries. Templates whose snapshot cannot be decoded report zero columns.
func (s *TemplateService) List(ctx context.Context) ([]dto.TemplateSummary, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list templates")
	}
	summaries := make([]dto.TemplateSummary, 0, len(templates))
	for _, tpl := range templates {
		summary := dto.TemplateSummary{
			ID:        tpl.ID,
			Name:      tpl.Name,
			CreatedAt: tpl.CreatedAt,
			UpdatedAt: tpl.UpdatedAt,
		}
		if snap, err := decodeTemplateSnapshot(tpl.Snapshot); err == nil {
			summary.ColumnCount = snap.ColumnCount
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Save stores the current grid of a workspace under a name.
func (s *TemplateService) Save(ctx context.Context, workspaceID string, req dto.SaveTemplateRequest) (*dto.TemplateSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid template payload")
	}
	snap, _, err := s.workspaces.Snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, internalError(err, "failed to encode template")
	}

	tpl := &models.Template{Name: strings.TrimSpace(req.Name), Snapshot: types.JSONText(raw)}
	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, internalError(err, "failed to save template")
	}
	s.logger.Info("template saved", zap.String("template_id", tpl.ID), zap.String("workspace_id", workspaceID))
	return &dto.TemplateSummary{
		ID:          tpl.ID,
		Name:        tpl.Name,
		ColumnCount: snap.ColumnCount,
		CreatedAt:   tpl.CreatedAt,
		UpdatedAt:   tpl.UpdatedAt,
	}, nil
}

// Apply replaces the grid of a workspace with a stored template.
func (s *TemplateService) Apply(ctx context.Context, workspaceID, templateID string) (*dto.WorkspaceResponse, error) {
	tpl, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		return nil, lookupError(err, "template")
	}
	snap, err := decodeTemplateSnapshot(tpl.Snapshot)
	if err != nil {
		return nil, err
	}
	return s.workspaces.ApplySnapshot(ctx, workspaceID, snap)
}

// Delete removes a template.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "template")
	}
	return nil
}

// decodeTemplateSnapshot reads a stored snapshot through the weakly typed
// decoder so numbers stored as strings still load.
func decodeTemplateSnapshot(raw types.JSONText) (grid.Snapshot, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return grid.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "template snapshot is not valid JSON")
	}
	snap, err := grid.DecodeSnapshot(generic)
	if err != nil {
		return grid.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "template snapshot is invalid")
	}
	return snap, nil
}
