package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/grid"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

// JobTypeWorkspaceSync identifies workspace persistence jobs.
const JobTypeWorkspaceSync = "workspace.sync"

type workspaceRepository interface {
	Upsert(ctx context.Context, ws *models.Workspace) (bool, error)
	FindByID(ctx context.Context, id string) (*models.Workspace, error)
	List(ctx context.Context, filter models.RosterFilter) ([]models.Workspace, int, error)
	Delete(ctx context.Context, id string) error
}

type templateFinder interface {
	FindByID(ctx context.Context, id string) (*models.Template, error)
}

type rosterSource interface {
	Load(ctx context.Context) (models.Database, error)
}

type syncEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// WorkspaceConfig seeds new workspaces and tunes generation.
type WorkspaceConfig struct {
	DefaultColumns   int
	DefaultDuration  int
	StartTime        int
	CacheTTL         time.Duration
	MaxWorkspaces    int
	SchedulerEnabled bool
	Seed             int64
	Scheduler        scheduler.Config
}

// WorkspaceRecord is the cached and persisted form of an editing session.
type WorkspaceRecord struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	SessionID *string       `json:"sessionId,omitempty"`
	Version   int           `json:"version"`
	Snapshot  grid.Snapshot `json:"snapshot"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Model converts the record into its database row.
func (r WorkspaceRecord) Model() (*models.Workspace, error) {
	raw, err := json.Marshal(r.Snapshot)
	if err != nil {
		return nil, err
	}
	return &models.Workspace{
		ID:        r.ID,
		Name:      r.Name,
		SessionID: r.SessionID,
		Snapshot:  types.JSONText(raw),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

type workspaceEntry struct {
	mu        sync.Mutex
	id        string
	name      string
	sessionID *string
	state     *grid.State
	version   int
	synced    int
	createdAt time.Time
	updatedAt time.Time
	lastUsed  time.Time
}

// dirty reports whether the entry holds changes not yet written to the
// database. Callers hold e.mu.
func (e *workspaceEntry) dirty() bool {
	return e.version > e.synced
}

func (e *workspaceEntry) record() WorkspaceRecord {
	return WorkspaceRecord{
		ID:        e.id,
		Name:      e.name,
		SessionID: e.sessionID,
		Version:   e.version,
		Snapshot:  e.state.Snapshot(),
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
}

// WorkspaceService owns the live editing sessions. Each workspace is mutated
// under its own lock; changed workspaces are written through to Redis and
// queued for persistence.
type WorkspaceService struct {
	mu      sync.RWMutex
	entries map[string]*workspaceEntry

	repo      workspaceRepository
	templates templateFinder
	roster    rosterSource
	cache     *CacheService
	sync      syncEnqueuer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       WorkspaceConfig

	now       func() time.Time
	newSource func(seed int64) scheduler.RandSource
}

// NewWorkspaceService constructs a WorkspaceService.
func NewWorkspaceService(repo workspaceRepository, templates templateFinder, roster rosterSource, cache *CacheService, metrics *MetricsService, cfg WorkspaceConfig, validate *validator.Validate, logger *zap.Logger) *WorkspaceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultColumns <= 0 {
		cfg.DefaultColumns = grid.DefaultColumnCount
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = grid.DefaultSlotDuration
	}
	if cfg.StartTime < 0 {
		cfg.StartTime = grid.DefaultStartTime
	}
	return &WorkspaceService{
		entries:   make(map[string]*workspaceEntry),
		repo:      repo,
		templates: templates,
		roster:    roster,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newSource: scheduler.NewSeededSource,
	}
}

// AttachSync routes persistence through the background queue. Without it,
// changes are written to the repository synchronously.
func (s *WorkspaceService) AttachSync(queue syncEnqueuer) {
	s.mu.Lock()
	s.sync = queue
	s.mu.Unlock()
}

func workspaceCacheKey(id string) string {
	return cache.Key("workspace", id)
}

// Create opens a new editing session, optionally seeded from a template.
func (s *WorkspaceService) Create(ctx context.Context, req dto.CreateWorkspaceRequest) (*dto.WorkspaceView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid workspace payload")
	}

	opts := grid.Options{
		ColumnCount:     s.cfg.DefaultColumns,
		DefaultDuration: s.cfg.DefaultDuration,
		StartTime:       s.cfg.StartTime,
	}
	if req.ColumnCount > 0 {
		opts.ColumnCount = req.ColumnCount
	}
	if req.DefaultDuration > 0 {
		opts.DefaultDuration = req.DefaultDuration
	}
	if minutes, ok := clockMinutes(req.StartTime); ok {
		opts.StartTime = minutes
	}
	state := grid.New(opts)

	if req.TemplateID != nil && strings.TrimSpace(*req.TemplateID) != "" {
		tpl, err := s.templates.FindByID(ctx, strings.TrimSpace(*req.TemplateID))
		if err != nil {
			return nil, lookupError(err, "template")
		}
		snap, err := decodeTemplateSnapshot(tpl.Snapshot)
		if err != nil {
			return nil, err
		}
		if state, err = grid.FromSnapshot(snap); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "template snapshot is invalid")
		}
	}

	now := s.now()
	entry := &workspaceEntry{
		id:        uuid.NewString(),
		name:      strings.TrimSpace(req.Name),
		sessionID: trimOptional(req.SessionID),
		state:     state,
		version:   1,
		createdAt: now,
		updatedAt: now,
		lastUsed:  now,
	}

	entry.mu.Lock()
	rec := entry.record()
	view := buildWorkspaceView(entry)
	entry.mu.Unlock()

	s.register(entry)
	s.persist(ctx, rec)
	s.logger.Info("workspace created", zap.String("workspace_id", entry.id), zap.Int("columns", state.ColumnCount()))
	return &view, nil
}

// Get returns the current state of a workspace.
func (s *WorkspaceService) Get(ctx context.Context, id string) (*dto.WorkspaceView, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	view := buildWorkspaceView(entry)
	return &view, nil
}

// List returns persisted workspaces.
func (s *WorkspaceService) List(ctx context.Context, filter models.RosterFilter) ([]dto.WorkspaceSummary, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list workspaces")
	}
	summaries := make([]dto.WorkspaceSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, dto.WorkspaceSummary{
			ID:        item.ID,
			Name:      item.Name,
			SessionID: item.SessionID,
			Version:   item.Version,
			UpdatedAt: item.UpdatedAt,
		})
	}
	return summaries, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Delete drops a workspace from memory, cache and the database.
func (s *WorkspaceService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, live := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	var cached WorkspaceRecord
	hit, _ := s.cache.Get(ctx, workspaceCacheKey(id), &cached)
	_ = s.cache.Delete(ctx, workspaceCacheKey(id))

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if live || hit {
				return nil
			}
			return appErrors.Clone(appErrors.ErrNotFound, "workspace not found")
		}
		return internalError(err, "failed to delete workspace")
	}
	return nil
}

// ToggleSelect adds or removes a cell from the selection.
func (s *WorkspaceService) ToggleSelect(ctx context.Context, id string, req dto.CellRequest) (*dto.WorkspaceResponse, error) {
	c, err := s.parseCell(req)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, false, func(st *grid.State) bool { return st.HandleCellClick(c) })
}

// ClearSelection empties the selection.
func (s *WorkspaceService) ClearSelection(ctx context.Context, id string) (*dto.WorkspaceResponse, error) {
	return s.mutate(ctx, id, false, func(st *grid.State) bool {
		had := len(st.Selection()) > 0
		st.ClearSelection()
		return had
	})
}

// Merge merges the given cells, or the selection when none are given.
func (s *WorkspaceService) Merge(ctx context.Context, id string, req dto.MergeRequest) (*dto.WorkspaceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid merge payload")
	}
	cells := grid.ParseKeys(req.Cells)
	return s.mutate(ctx, id, true, func(st *grid.State) bool {
		if len(cells) == 0 {
			return st.MergeSelection()
		}
		return st.MergeCells(cells)
	})
}

// Unmerge removes the region anchored at the given cell.
func (s *WorkspaceService) Unmerge(ctx context.Context, id string, req dto.CellRequest) (*dto.WorkspaceResponse, error) {
	c, err := s.parseCell(req)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, true, func(st *grid.State) bool { return st.UnmergeCell(c) })
}

// AddColumn inserts a column after the given index.
func (s *WorkspaceService) AddColumn(ctx context.Context, id string, req dto.AddColumnRequest) (*dto.WorkspaceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid column payload")
	}
	return s.mutate(ctx, id, true, func(st *grid.State) bool { return st.AddColumnAfter(req.After) })
}

// DeleteColumn removes a column.
func (s *WorkspaceService) DeleteColumn(ctx context.Context, id string, index int) (*dto.WorkspaceResponse, error) {
	return s.mutate(ctx, id, true, func(st *grid.State) bool { return st.DeleteColumn(index) })
}

// SetDuration overrides the duration of one column.
func (s *WorkspaceService) SetDuration(ctx context.Context, id string, req dto.DurationRequest) (*dto.WorkspaceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid duration payload")
	}
	return s.mutate(ctx, id, true, func(st *grid.State) bool {
		current, overridden := st.Durations()[req.Column]
		if (req.Minutes == 0 && !overridden) || (overridden && current == req.Minutes) {
			return false
		}
		return st.SetColumnDuration(req.Column, req.Minutes)
	})
}

// SetTiming changes the default slot duration and start time.
func (s *WorkspaceService) SetTiming(ctx context.Context, id string, req dto.TimingRequest) (*dto.WorkspaceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid timing payload")
	}
	start, hasStart := clockMinutes(req.StartTime)
	return s.mutate(ctx, id, true, func(st *grid.State) bool {
		changed := false
		if req.DefaultDuration > 0 && req.DefaultDuration != st.DefaultDuration() {
			changed = st.SetDefaultDuration(req.DefaultDuration) || changed
		}
		if hasStart && start != st.StartTime() {
			changed = st.SetStartTime(start) || changed
		}
		return changed
	})
}

// BeginEdit starts editing a cell.
func (s *WorkspaceService) BeginEdit(ctx context.Context, id string, req dto.CellRequest) (*dto.WorkspaceResponse, error) {
	c, err := s.parseCell(req)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, false, func(st *grid.State) bool { return st.HandleCellDoubleClick(c) })
}

// UpdateBuffer replaces the uncommitted edit text.
func (s *WorkspaceService) UpdateBuffer(ctx context.Context, id string, req dto.EditBufferRequest) (*dto.WorkspaceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid edit payload")
	}
	return s.mutate(ctx, id, false, func(st *grid.State) bool { return st.SetEditBuffer(req.Text) })
}

// SaveEdit commits the current edit.
func (s *WorkspaceService) SaveEdit(ctx context.Context, id string) (*dto.WorkspaceResponse, error) {
	return s.mutate(ctx, id, true, func(st *grid.State) bool { return st.SaveCellEdit() })
}

// CancelEdit discards the current edit.
func (s *WorkspaceService) CancelEdit(ctx context.Context, id string) (*dto.WorkspaceResponse, error) {
	return s.mutate(ctx, id, false, func(st *grid.State) bool { return st.CancelCellEdit() })
}

// SetCell writes content into a cell directly.
func (s *WorkspaceService) SetCell(ctx context.Context, id string, req dto.SetCellRequest) (*dto.WorkspaceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid cell payload")
	}
	c, _ := grid.ParseKey(req.Cell)
	content := grid.CellContent{
		Text:       req.Text,
		IsVertical: req.IsVertical,
		Alignment:  grid.Alignment(req.Alignment),
		ClassTag:   strings.TrimSpace(req.ClassTag),
	}
	return s.mutate(ctx, id, true, func(st *grid.State) bool { return st.SetCellContent(c, content) })
}

// Format applies alignment and vertical toggling to the selected cells.
func (s *WorkspaceService) Format(ctx context.Context, id string, req dto.FormatRequest) (*dto.WorkspaceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid format payload")
	}
	return s.mutate(ctx, id, true, func(st *grid.State) bool {
		changed := 0
		if req.Alignment != "" {
			changed += st.SetAlignment(grid.Alignment(req.Alignment))
		}
		if req.ToggleVertical {
			changed += st.ToggleVertical()
		}
		return changed > 0
	})
}

// Generate runs the scheduler against the roster and fills empty cells of the workspace.
func (s *WorkspaceService) Generate(ctx context.Context, id string, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	if !s.cfg.SchedulerEnabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "automatic scheduling is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid generate payload")
	}
	db, err := s.roster.Load(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	seed := s.cfg.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	entry.mu.Lock()
	sessionID := ""
	if sid := trimOptional(req.SessionID); sid != nil {
		sessionID = *sid
	} else if entry.sessionID != nil {
		sessionID = *entry.sessionID
	}

	started := time.Now()
	gen := scheduler.NewGenerator(s.newSource(seed), s.cfg.Scheduler, s.logger)
	result := gen.Generate(scheduler.Input{
		Database:    db,
		ColumnCount: entry.state.ColumnCount(),
		Existing:    entry.state.Contents(),
		Hidden:      entry.state.Hidden(),
		SessionID:   sessionID,
	})
	written := entry.state.MergeContents(result.Contents)

	var rec WorkspaceRecord
	if written > 0 {
		entry.version++
		entry.updatedAt = s.now()
		rec = entry.record()
	}
	view := buildWorkspaceView(entry)
	entry.mu.Unlock()

	greedy, backfilled := 0, 0
	for _, report := range result.Courses {
		greedy += report.Placed - report.Backfilled
		backfilled += report.Backfilled
	}
	s.metrics.ObserveSchedulerRun(time.Since(started), greedy, backfilled, result.Unplaced())

	if written > 0 {
		s.persist(ctx, rec)
	}
	s.logger.Info("workspace generated",
		zap.String("workspace_id", id),
		zap.String("session_id", sessionID),
		zap.Int64("seed", seed),
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("unplaced", result.Unplaced()),
	)

	return &dto.GenerateResponse{
		Workspace:    view,
		Courses:      result.Courses,
		Assigned:     len(result.Assigned),
		Unplaced:     result.Unplaced(),
		BlockedCells: result.BlockedCells,
	}, nil
}

// ApplySnapshot replaces the grid of a workspace. Selection and any edit in progress are discarded.
func (s *WorkspaceService) ApplySnapshot(ctx context.Context, id string, snap grid.Snapshot) (*dto.WorkspaceResponse, error) {
	state, err := grid.FromSnapshot(snap)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "snapshot is invalid")
	}
	return s.mutate(ctx, id, true, func(st *grid.State) bool {
		*st = *state
		return true
	})
}

// Snapshot returns the persistent grid structures of a workspace with its name.
func (s *WorkspaceService) Snapshot(ctx context.Context, id string) (grid.Snapshot, string, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return grid.Snapshot{}, "", err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state.Snapshot(), entry.name, nil
}

// Record returns the latest persisted form of a live or cached workspace.
func (s *WorkspaceService) Record(ctx context.Context, id string) (WorkspaceRecord, bool) {
	s.mu.RLock()
	entry := s.entries[id]
	s.mu.RUnlock()
	if entry != nil {
		entry.mu.Lock()
		defer entry.mu.Unlock()
		return entry.record(), true
	}
	var rec WorkspaceRecord
	hit, _ := s.cache.Get(ctx, workspaceCacheKey(id), &rec)
	return rec, hit
}

// MarkSynced records that version of workspace id is stored in the database.
func (s *WorkspaceService) MarkSynced(id string, version int) {
	s.mu.RLock()
	entry := s.entries[id]
	s.mu.RUnlock()
	if entry == nil {
		return
	}
	entry.mu.Lock()
	if version > entry.synced {
		entry.synced = version
	}
	entry.mu.Unlock()
}

// Loaded reports how many workspaces are held in memory.
func (s *WorkspaceService) Loaded() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *WorkspaceService) parseCell(req dto.CellRequest) (grid.Coord, error) {
	if err := s.validator.Struct(req); err != nil {
		return grid.Coord{}, validationError(err, "invalid cell payload")
	}
	c, _ := grid.ParseKey(req.Cell)
	return c, nil
}

// mutate runs fn under the workspace lock. Applied changes with persist set
// bump the version and are written through.
func (s *WorkspaceService) mutate(ctx context.Context, id string, persist bool, fn func(st *grid.State) bool) (*dto.WorkspaceResponse, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	applied := fn(entry.state)
	var rec WorkspaceRecord
	if applied && persist {
		entry.version++
		entry.updatedAt = s.now()
		rec = entry.record()
	}
	view := buildWorkspaceView(entry)
	entry.mu.Unlock()

	if applied && persist {
		s.persist(ctx, rec)
	}
	return &dto.WorkspaceResponse{Workspace: view, Applied: applied}, nil
}

// persist writes the record to cache and schedules its database sync.
func (s *WorkspaceService) persist(ctx context.Context, rec WorkspaceRecord) {
	_ = s.cache.Set(ctx, workspaceCacheKey(rec.ID), rec, s.cfg.CacheTTL)

	s.mu.RLock()
	queue := s.sync
	s.mu.RUnlock()

	if queue != nil {
		err := queue.Enqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobTypeWorkspaceSync,
			Key:     rec.ID,
			Payload: rec.ID,
		})
		if err == nil {
			return
		}
		s.logger.Warn("workspace sync enqueue failed, writing directly", zap.String("workspace_id", rec.ID), zap.Error(err))
	}

	model, err := rec.Model()
	if err != nil {
		s.logger.Error("encode workspace", zap.String("workspace_id", rec.ID), zap.Error(err))
		return
	}
	if _, err := s.repo.Upsert(ctx, model); err != nil {
		s.logger.Error("persist workspace", zap.String("workspace_id", rec.ID), zap.Error(err))
		return
	}
	s.MarkSynced(rec.ID, rec.Version)
}

// load returns the live entry, restoring it from cache or the database on a miss.
func (s *WorkspaceService) load(ctx context.Context, id string) (*workspaceEntry, error) {
	s.mu.RLock()
	entry := s.entries[id]
	s.mu.RUnlock()
	if entry != nil {
		entry.mu.Lock()
		entry.lastUsed = s.now()
		entry.mu.Unlock()
		return entry, nil
	}

	rec, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := grid.FromSnapshot(rec.Snapshot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "stored workspace is invalid")
	}
	entry = &workspaceEntry{
		id:        rec.ID,
		name:      rec.Name,
		sessionID: rec.SessionID,
		state:     state,
		version:   rec.Version,
		synced:    rec.Version,
		createdAt: rec.CreatedAt,
		updatedAt: rec.UpdatedAt,
		lastUsed:  s.now(),
	}
	return s.register(entry), nil
}

func (s *WorkspaceService) fetch(ctx context.Context, id string) (WorkspaceRecord, error) {
	var rec WorkspaceRecord
	if hit, _ := s.cache.Get(ctx, workspaceCacheKey(id), &rec); hit && rec.ID == id {
		return rec, nil
	}

	model, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return WorkspaceRecord{}, lookupError(err, "workspace")
	}
	var snap grid.Snapshot
	if err := json.Unmarshal(model.Snapshot, &snap); err != nil {
		return WorkspaceRecord{}, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "stored workspace is invalid")
	}
	rec = WorkspaceRecord{
		ID:        model.ID,
		Name:      model.Name,
		SessionID: model.SessionID,
		Version:   model.Version,
		Snapshot:  snap,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	_ = s.cache.Set(ctx, workspaceCacheKey(id), rec, s.cfg.CacheTTL)
	return rec, nil
}

// register stores entry unless another goroutine won the race, and evicts the
// least recently used workspaces beyond the configured limit. Entries with
// unsynced changes are never evicted, so the map may exceed the limit until
// their sync jobs complete.
func (s *WorkspaceService) register(entry *workspaceEntry) *workspaceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[entry.id]; ok {
		return existing
	}
	s.entries[entry.id] = entry

	if s.cfg.MaxWorkspaces <= 0 || len(s.entries) <= s.cfg.MaxWorkspaces {
		return entry
	}
	type usage struct {
		id   string
		last time.Time
	}
	usages := make([]usage, 0, len(s.entries))
	for id, e := range s.entries {
		if id == entry.id {
			continue
		}
		e.mu.Lock()
		if !e.dirty() {
			usages = append(usages, usage{id: id, last: e.lastUsed})
		}
		e.mu.Unlock()
	}
	sort.Slice(usages, func(i, j int) bool { return usages[i].last.Before(usages[j].last) })
	for _, u := range usages {
		if len(s.entries) <= s.cfg.MaxWorkspaces {
			break
		}
		delete(s.entries, u.id)
		s.logger.Debug("workspace evicted", zap.String("workspace_id", u.id))
	}
	return entry
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
