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

type tutorRepository interface {
	List(ctx context.Context, filter models.RosterFilter) ([]models.Tutor, int, error)
	FindByID(ctx context.Context, id string) (*models.Tutor, error)
	Create(ctx context.Context, tutor *models.Tutor) error
	Update(ctx context.Context, tutor *models.Tutor) error
	Delete(ctx context.Context, id string) error
}

// TutorService orchestrates tutor operations.
type TutorService struct {
	repo      tutorRepository
	roster    rosterInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTutorService constructs a TutorService.
func NewTutorService(repo tutorRepository, roster rosterInvalidator, validate *validator.Validate, logger *zap.Logger) *TutorService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if roster == nil {
		roster = noopInvalidator{}
	}
	return &TutorService{repo: repo, roster: roster, validator: validate, logger: logger}
}

// List returns tutors plus pagination data.
func (s *TutorService) List(ctx context.Context, filter models.RosterFilter) ([]models.Tutor, *models.Pagination, error) {
	tutors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list tutors")
	}
	return tutors, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a tutor by id.
func (s *TutorService) Get(ctx context.Context, id string) (*models.Tutor, error) {
	tutor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "tutor")
	}
	return tutor, nil
}

// Create registers a new tutor.
func (s *TutorService) Create(ctx context.Context, req dto.TutorRequest) (*models.Tutor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid tutor payload")
	}
	id := strings.TrimSpace(req.ID)
	if id != "" {
		if _, err := s.repo.FindByID(ctx, id); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "tutor id already used")
		}
	}

	tutor := &models.Tutor{ID: id}
	applyTutorRequest(tutor, req)
	if err := s.repo.Create(ctx, tutor); err != nil {
		return nil, internalError(err, "failed to create tutor")
	}
	s.roster.Invalidate(ctx)
	s.logger.Info("tutor created", zap.String("tutor_id", tutor.ID))
	return tutor, nil
}

// Update modifies an existing tutor.
func (s *TutorService) Update(ctx context.Context, id string, req dto.TutorRequest) (*models.Tutor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid tutor payload")
	}
	tutor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "tutor")
	}

	applyTutorRequest(tutor, req)
	if err := s.repo.Update(ctx, tutor); err != nil {
		return nil, internalError(err, "failed to update tutor")
	}
	s.roster.Invalidate(ctx)
	return tutor, nil
}

// Delete removes a tutor.
func (s *TutorService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "tutor")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete tutor")
	}
	s.roster.Invalidate(ctx)
	return nil
}

func applyTutorRequest(tutor *models.Tutor, req dto.TutorRequest) {
	tutor.Name = strings.TrimSpace(req.Name)
	tutor.Subjects = pq.StringArray(cleanList(req.Subjects))
	tutor.MaxPeriodsPerDay = req.MaxPeriodsPerDay
	tutor.UnavailableSlots = pq.StringArray(cleanList(req.UnavailableSlots))
}
