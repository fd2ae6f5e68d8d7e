package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
)

type tutorLister interface {
	ListAll(ctx context.Context) ([]models.Tutor, error)
}

type courseLister interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

type sessionLister interface {
	ListAll(ctx context.Context) ([]models.Session, error)
}

type blockedLister interface {
	ListSlots(ctx context.Context) ([]models.BlockedSlot, error)
	ListTexts(ctx context.Context) ([]models.BlockedText, error)
}

// RosterLoader assembles the in-memory roster database the scheduler runs against.
type RosterLoader struct {
	tutors   tutorLister
	courses  courseLister
	sessions sessionLister
	blocked  blockedLister
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewRosterLoader constructs a RosterLoader. cache may be nil.
func NewRosterLoader(tutors tutorLister, courses courseLister, sessions sessionLister, blocked blockedLister, cache *CacheService, ttl time.Duration, logger *zap.Logger) *RosterLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterLoader{tutors: tutors, courses: courses, sessions: sessions, blocked: blocked, cache: cache, ttl: ttl, logger: logger}
}

func rosterCacheKey() string {
	return cache.Key("roster")
}

// Load returns the current roster, served from cache when possible.
func (l *RosterLoader) Load(ctx context.Context) (models.Database, error) {
	var db models.Database
	if hit, _ := l.cache.Get(ctx, rosterCacheKey(), &db); hit {
		return db, nil
	}

	tutors, err := l.tutors.ListAll(ctx)
	if err != nil {
		return models.Database{}, internalError(err, "failed to load tutors")
	}
	courses, err := l.courses.ListAll(ctx)
	if err != nil {
		return models.Database{}, internalError(err, "failed to load courses")
	}
	sessions, err := l.sessions.ListAll(ctx)
	if err != nil {
		return models.Database{}, internalError(err, "failed to load sessions")
	}
	slots, err := l.blocked.ListSlots(ctx)
	if err != nil {
		return models.Database{}, internalError(err, "failed to load blocked slots")
	}
	texts, err := l.blocked.ListTexts(ctx)
	if err != nil {
		return models.Database{}, internalError(err, "failed to load blocked texts")
	}

	db = models.Database{
		Tutors:       tutors,
		Courses:      courses,
		Sessions:     sessions,
		BlockedSlots: slots,
		BlockedTexts: texts,
	}
	_ = l.cache.Set(ctx, rosterCacheKey(), db, l.ttl)
	return db, nil
}

// Invalidate drops the cached roster after a roster mutation.
func (l *RosterLoader) Invalidate(ctx context.Context) {
	if l == nil {
		return
	}
	if err := l.cache.Delete(ctx, rosterCacheKey()); err != nil {
		l.logger.Warn("roster cache invalidation failed", zap.Error(err))
	}
}
