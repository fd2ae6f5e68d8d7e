package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPageBounds(t *testing.T) {
	limit, offset := pageBounds(0, 0)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = pageBounds(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, _ = pageBounds(1, 500)
	assert.Equal(t, 20, limit)
}

func TestTutorRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTutorRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "subjects", "max_periods_per_day", "unavailable_slots", "created_at", "updated_at"}).
		AddRow("t1", "Ana", "{math,physics}", 4, "{0-1}", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + tutorColumns + " FROM tutors WHERE 1=1 AND (LOWER(name) LIKE $1 OR LOWER(id) LIKE $1) ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs("%ana%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tutors WHERE 1=1 AND (LOWER(name) LIKE $1 OR LOWER(id) LIKE $1)")).
		WithArgs("%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.RosterFilter{Search: " Ana "})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, pq.StringArray{"math", "physics"}, list[0].Subjects)
	require.NotNil(t, list[0].MaxPeriodsPerDay)
	assert.Equal(t, 4, *list[0].MaxPeriodsPerDay)
	assert.Equal(t, pq.StringArray{"0-1"}, list[0].UnavailableSlots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTutorRepositoryCreateUpdateDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTutorRepository(db)

	mock.ExpectExec("INSERT INTO tutors").
		WithArgs(sqlmock.AnyArg(), "Ana", sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	tutor := &models.Tutor{Name: "Ana", Subjects: pq.StringArray{"math"}}
	require.NoError(t, repo.Create(context.Background(), tutor))
	assert.NotEmpty(t, tutor.ID)
	assert.False(t, tutor.CreatedAt.IsZero())

	mock.ExpectExec("UPDATE tutors SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), tutor)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tutors WHERE id = $1")).
		WithArgs(tutor.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), tutor.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListAllKeepsCreationOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "teacher_id", "periods_per_week", "priority", "duration", "preferred_slots", "avoid_consecutive", "created_at", "updated_at"}).
		AddRow("c1", "Math", "t1", 3, "high", nil, "{}", false, now, now).
		AddRow("c2", "Art", "t2", 1, "low", 90, "{2-3}", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + courseColumns + " FROM courses ORDER BY created_at ASC, id ASC")).
		WillReturnRows(rows)

	courses, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, models.PriorityHigh, courses[0].Priority)
	assert.Nil(t, courses[0].Duration)
	require.NotNil(t, courses[1].Duration)
	assert.Equal(t, 90, *courses[1].Duration)
	assert.True(t, courses[1].AvoidConsecutive)
	assert.Equal(t, pq.StringArray{"2-3"}, courses[1].PreferredSlots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("X-1", "Class X-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Session{ID: "X-1", Name: "Class X-1", Subjects: pq.StringArray{"c1", "c2"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockedRepositoryUpsertSlotReturnsStoredRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBlockedRepository(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO blocked_slots").
		WithArgs(sqlmock.AnyArg(), "0-3", "Assembly", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("existing", created))

	slot := &models.BlockedSlot{CellKey: "0-3", Label: "Assembly"}
	require.NoError(t, repo.UpsertSlot(context.Background(), slot))
	assert.Equal(t, "existing", slot.ID)
	assert.Equal(t, created, slot.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockedRepositoryTexts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBlockedRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, text, created_at FROM blocked_texts")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "created_at"}).AddRow("b1", "Break", time.Now()))
	texts, err := repo.ListTexts(context.Background())
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, "Break", texts[0].Text)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM blocked_texts WHERE id = $1")).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteText(context.Background(), "nope"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
