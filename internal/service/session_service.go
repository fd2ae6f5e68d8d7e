package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.RosterFilter) ([]models.Session, int, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

// SessionService orchestrates class session operations.
type SessionService struct {
	repo      sessionRepository
	roster    rosterInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, roster rosterInvalidator, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if roster == nil {
		roster = noopInvalidator{}
	}
	return &SessionService{repo: repo, roster: roster, validator: validate, logger: logger}
}

// List returns sessions plus pagination data.
func (s *SessionService) List(ctx context.Context, filter models.RosterFilter) ([]models.Session, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list sessions")
	}
	return sessions, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "session")
	}
	return session, nil
}

// Create registers a new session. Subjects are course IDs; unknown IDs are kept and ignored by the scheduler.
func (s *SessionService) Create(ctx context.Context, req dto.SessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}
	id := strings.TrimSpace(req.ID)
	if id != "" {
		if _, err := s.repo.FindByID(ctx, id); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "session id already used")
		}
	}

	session := &models.Session{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		Subjects: pq.StringArray(cleanList(req.Subjects)),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, internalError(err, "failed to create session")
	}
	s.roster.Invalidate(ctx)
	return session, nil
}

// Update modifies an existing session.
func (s *SessionService) Update(ctx context.Context, id string, req dto.SessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "session")
	}
	session.Name = strings.TrimSpace(req.Name)
	session.Subjects = pq.StringArray(cleanList(req.Subjects))
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, internalError(err, "failed to update session")
	}
	s.roster.Invalidate(ctx)
	return session, nil
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "session")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete session")
	}
	s.roster.Invalidate(ctx)
	return nil
}
