package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const tutorColumns = "id, name, subjects, max_periods_per_day, unavailable_slots, created_at, updated_at"

// TutorRepository manages persistence for tutors.
type TutorRepository struct {
	db *sqlx.DB
}

// NewTutorRepository constructs a TutorRepository.
func NewTutorRepository(db *sqlx.DB) *TutorRepository {
	return &TutorRepository{db: db}
}

// List returns tutors matching filters along with total count.
func (r *TutorRepository) List(ctx context.Context, filter models.RosterFilter) ([]models.Tutor, int, error) {
	base := "FROM tutors WHERE 1=1"
	clause, args := searchClause(filter.Search, nil, "name", "id")
	base += clause

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", tutorColumns, base, limit, offset)
	var tutors []models.Tutor
	if err := r.db.SelectContext(ctx, &tutors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tutors: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count tutors: %w", err)
	}
	return tutors, total, nil
}

// ListAll returns every tutor in creation order.
func (r *TutorRepository) ListAll(ctx context.Context) ([]models.Tutor, error) {
	var tutors []models.Tutor
	if err := r.db.SelectContext(ctx, &tutors, "SELECT "+tutorColumns+" FROM tutors ORDER BY created_at ASC, id ASC"); err != nil {
		return nil, fmt.Errorf("list all tutors: %w", err)
	}
	return tutors, nil
}

// FindByID fetches a tutor by ID.
func (r *TutorRepository) FindByID(ctx context.Context, id string) (*models.Tutor, error) {
	var tutor models.Tutor
	if err := r.db.GetContext(ctx, &tutor, "SELECT "+tutorColumns+" FROM tutors WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &tutor, nil
}

// Create inserts a new tutor.
func (r *TutorRepository) Create(ctx context.Context, tutor *models.Tutor) error {
	if tutor.ID == "" {
		tutor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tutor.CreatedAt = now
	tutor.UpdatedAt = now

	const query = `INSERT INTO tutors (id, name, subjects, max_periods_per_day, unavailable_slots, created_at, updated_at)
		VALUES (:id, :name, :subjects, :max_periods_per_day, :unavailable_slots, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tutor); err != nil {
		return fmt.Errorf("create tutor: %w", err)
	}
	return nil
}

// Update modifies an existing tutor.
func (r *TutorRepository) Update(ctx context.Context, tutor *models.Tutor) error {
	tutor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tutors SET name = :name, subjects = :subjects, max_periods_per_day = :max_periods_per_day,
		unavailable_slots = :unavailable_slots, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, tutor)
	if err != nil {
		return fmt.Errorf("update tutor: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a tutor. Courses referencing it are left dangling and skipped by the scheduler.
func (r *TutorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tutors WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete tutor: %w", err)
	}
	return requireAffected(res)
}
