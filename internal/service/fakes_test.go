package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return nil
}

func (m *memoryCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

type memoryWorkspaceRepo struct {
	mu      sync.Mutex
	rows    map[string]models.Workspace
	upserts int
	err     error
}

func newMemoryWorkspaceRepo() *memoryWorkspaceRepo {
	return &memoryWorkspaceRepo{rows: make(map[string]models.Workspace)}
}

func (m *memoryWorkspaceRepo) Upsert(ctx context.Context, ws *models.Workspace) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	m.upserts++
	if existing, ok := m.rows[ws.ID]; ok && existing.Version >= ws.Version {
		return false, nil
	}
	m.rows[ws.ID] = *ws
	return true, nil
}

func (m *memoryWorkspaceRepo) FindByID(ctx context.Context, id string) (*models.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &ws, nil
}

func (m *memoryWorkspaceRepo) List(ctx context.Context, filter models.RosterFilter) ([]models.Workspace, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Workspace, 0, len(m.rows))
	for _, ws := range m.rows {
		out = append(out, ws)
	}
	return out, len(out), nil
}

func (m *memoryWorkspaceRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type memoryTemplateRepo struct {
	items map[string]models.Template
}

func (m *memoryTemplateRepo) List(ctx context.Context) ([]models.Template, error) {
	out := make([]models.Template, 0, len(m.items))
	for _, tpl := range m.items {
		out = append(out, tpl)
	}
	return out, nil
}

func (m *memoryTemplateRepo) FindByID(ctx context.Context, id string) (*models.Template, error) {
	tpl, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &tpl, nil
}

func (m *memoryTemplateRepo) Create(ctx context.Context, tpl *models.Template) error {
	if m.items == nil {
		m.items = make(map[string]models.Template)
	}
	if tpl.ID == "" {
		tpl.ID = "tpl-generated"
	}
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = tpl.CreatedAt
	m.items[tpl.ID] = *tpl
	return nil
}

func (m *memoryTemplateRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type staticRoster struct {
	db    models.Database
	err   error
	loads int
}

func (s *staticRoster) Load(ctx context.Context) (models.Database, error) {
	s.loads++
	return s.db, s.err
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
