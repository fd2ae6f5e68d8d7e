package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type memoryTutorRepo struct {
	items map[string]models.Tutor
}

func (m *memoryTutorRepo) List(ctx context.Context, filter models.RosterFilter) ([]models.Tutor, int, error) {
	out := make([]models.Tutor, 0, len(m.items))
	for _, t := range m.items {
		out = append(out, t)
	}
	return out, len(out), nil
}

func (m *memoryTutorRepo) ListAll(ctx context.Context) ([]models.Tutor, error) {
	list, _, err := m.List(ctx, models.RosterFilter{})
	return list, err
}

func (m *memoryTutorRepo) FindByID(ctx context.Context, id string) (*models.Tutor, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (m *memoryTutorRepo) Create(ctx context.Context, tutor *models.Tutor) error {
	if m.items == nil {
		m.items = make(map[string]models.Tutor)
	}
	if tutor.ID == "" {
		tutor.ID = "generated"
	}
	tutor.CreatedAt = time.Now()
	m.items[tutor.ID] = *tutor
	return nil
}

func (m *memoryTutorRepo) Update(ctx context.Context, tutor *models.Tutor) error {
	m.items[tutor.ID] = *tutor
	return nil
}

func (m *memoryTutorRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type memoryCourseRepo struct {
	items map[string]models.Course
}

func (m *memoryCourseRepo) List(ctx context.Context, filter models.RosterFilter) ([]models.Course, int, error) {
	out := make([]models.Course, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *memoryCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.items == nil {
		m.items = make(map[string]models.Course)
	}
	if course.ID == "" {
		course.ID = "generated"
	}
	m.items[course.ID] = *course
	return nil
}

func (m *memoryCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.items[course.ID] = *course
	return nil
}

func (m *memoryCourseRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func TestTutorServiceCreateNormalisesAndInvalidates(t *testing.T) {
	repo := &memoryTutorRepo{}
	inv := &countingInvalidator{}
	svc := NewTutorService(repo, inv, nil, nil)

	tutor, err := svc.Create(context.Background(), dto.TutorRequest{
		ID:               "t1",
		Name:             "  Ana ",
		Subjects:         []string{"math", " math", "physics"},
		MaxPeriodsPerDay: intPtr(2),
		UnavailableSlots: []string{"0-1", "0-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", tutor.Name)
	assert.Equal(t, []string{"math", "physics"}, []string(tutor.Subjects))
	assert.Equal(t, []string{"0-1"}, []string(tutor.UnavailableSlots))
	assert.Equal(t, 1, inv.calls)

	_, err = svc.Create(context.Background(), dto.TutorRequest{ID: "t1", Name: "Dup"})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestTutorServiceRejectsBadSlotKeys(t *testing.T) {
	svc := NewTutorService(&memoryTutorRepo{}, nil, nil, nil)
	_, err := svc.Create(context.Background(), dto.TutorRequest{Name: "Ana", UnavailableSlots: []string{"monday-1"}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestTutorServiceGetMissing(t *testing.T) {
	svc := NewTutorService(&memoryTutorRepo{}, nil, nil, nil)
	_, err := svc.Get(context.Background(), "nope")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	err = svc.Delete(context.Background(), "nope")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestCourseServiceRequiresKnownTutor(t *testing.T) {
	tutors := &memoryTutorRepo{items: map[string]models.Tutor{"t1": {ID: "t1", Name: "Ana"}}}
	courses := &memoryCourseRepo{}
	inv := &countingInvalidator{}
	svc := NewCourseService(courses, tutors, inv, nil, nil)

	_, err := svc.Create(context.Background(), dto.CourseRequest{Name: "Math", TeacherID: "ghost", PeriodsPerWeek: 3})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	course, err := svc.Create(context.Background(), dto.CourseRequest{Name: "Math", TeacherID: "t1", PeriodsPerWeek: 3, PreferredSlots: []string{"1-1"}})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, course.Priority)
	assert.Equal(t, 1, inv.calls)

	updated, err := svc.Update(context.Background(), course.ID, dto.CourseRequest{Name: "Math II", TeacherID: "t1", PeriodsPerWeek: 5, Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.PeriodsPerWeek)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, 2, inv.calls)

	_, err = svc.Create(context.Background(), dto.CourseRequest{Name: "Bad", TeacherID: "t1", Priority: "urgent"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestRosterLoaderCachesUntilInvalidated(t *testing.T) {
	tutors := &memoryTutorRepo{items: map[string]models.Tutor{"t1": {ID: "t1", Name: "Ana"}}}
	cacheRepo := newMemoryCacheRepo()
	loader := NewRosterLoader(tutors, emptyCourses{}, emptySessions{}, emptyBlocked{}, NewCacheService(cacheRepo, nil, 0, nil, true), time.Minute, nil)

	db, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, db.Tutors, 1)
	assert.True(t, cacheRepo.has(rosterCacheKey()))

	tutors.items["t2"] = models.Tutor{ID: "t2", Name: "Budi"}
	db, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, db.Tutors, 1)

	loader.Invalidate(context.Background())
	db, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, db.Tutors, 2)
}

type emptyCourses struct{}

func (emptyCourses) ListAll(context.Context) ([]models.Course, error) { return nil, nil }

type emptySessions struct{}

func (emptySessions) ListAll(context.Context) ([]models.Session, error) { return nil, nil }

type emptyBlocked struct{}

func (emptyBlocked) ListSlots(context.Context) ([]models.BlockedSlot, error) { return nil, nil }

func (emptyBlocked) ListTexts(context.Context) ([]models.BlockedText, error) { return nil, nil }
