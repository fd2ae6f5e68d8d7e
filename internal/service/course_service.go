package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.RosterFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type tutorFinder interface {
	FindByID(ctx context.Context, id string) (*models.Tutor, error)
}

// CourseService orchestrates course operations.
type CourseService struct {
	repo      courseRepository
	tutors    tutorFinder
	roster    rosterInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, tutors tutorFinder, roster rosterInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if roster == nil {
		roster = noopInvalidator{}
	}
	return &CourseService{repo: repo, tutors: tutors, roster: roster, validator: validate, logger: logger}
}

// List returns courses plus pagination data.
func (s *CourseService) List(ctx context.Context, filter models.RosterFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list courses")
	}
	return courses, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	return course, nil
}

// Create registers a new course taught by an existing tutor.
func (s *CourseService) Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	if err := s.ensureTutor(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.ID)
	if id != "" {
		if _, err := s.repo.FindByID(ctx, id); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course id already used")
		}
	}

	course := &models.Course{ID: id}
	applyCourseRequest(course, req)
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, internalError(err, "failed to create course")
	}
	s.roster.Invalidate(ctx)
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("tutor_id", course.TeacherID))
	return course, nil
}

// Update modifies an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req dto.CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	if err := s.ensureTutor(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	applyCourseRequest(course, req)
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, internalError(err, "failed to update course")
	}
	s.roster.Invalidate(ctx)
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "course")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete course")
	}
	s.roster.Invalidate(ctx)
	return nil
}

func (s *CourseService) ensureTutor(ctx context.Context, tutorID string) error {
	if _, err := s.tutors.FindByID(ctx, strings.TrimSpace(tutorID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "teacherId does not reference a tutor")
		}
		return internalError(err, "failed to load tutor")
	}
	return nil
}

func applyCourseRequest(course *models.Course, req dto.CourseRequest) {
	course.Name = strings.TrimSpace(req.Name)
	course.TeacherID = strings.TrimSpace(req.TeacherID)
	course.PeriodsPerWeek = req.PeriodsPerWeek
	course.Priority = req.Priority
	if course.Priority == "" {
		course.Priority = models.PriorityMedium
	}
	course.Duration = req.Duration
	course.PreferredSlots = pq.StringArray(cleanList(req.PreferredSlots))
	course.AvoidConsecutive = req.AvoidConsecutive
}
