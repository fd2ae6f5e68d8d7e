package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/grid"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type workspaceFixture struct {
	svc       *WorkspaceService
	repo      *memoryWorkspaceRepo
	cacheRepo *memoryCacheRepo
	templates *memoryTemplateRepo
	roster    *staticRoster
	queue     *recordingQueue
}

func newWorkspaceFixture(t *testing.T, cfg WorkspaceConfig) *workspaceFixture {
	t.Helper()
	f := &workspaceFixture{
		repo:      newMemoryWorkspaceRepo(),
		cacheRepo: newMemoryCacheRepo(),
		templates: &memoryTemplateRepo{},
		roster:    &staticRoster{},
		queue:     &recordingQueue{},
	}
	cacheSvc := NewCacheService(f.cacheRepo, nil, 0, nil, true)
	f.svc = NewWorkspaceService(f.repo, f.templates, f.roster, cacheSvc, nil, cfg, nil, nil)
	f.svc.AttachSync(f.queue)
	return f
}

func (f *workspaceFixture) create(t *testing.T) *dto.WorkspaceView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), dto.CreateWorkspaceRequest{Name: "Draft", ColumnCount: 6})
	require.NoError(t, err)
	return view
}

func TestWorkspaceServiceCreateWritesThrough(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	view, err := f.svc.Create(context.Background(), dto.CreateWorkspaceRequest{Name: " Draft ", StartTime: "07:30", DefaultDuration: 40})
	require.NoError(t, err)

	assert.Equal(t, "Draft", view.Name)
	assert.Equal(t, 1, view.Version)
	assert.Equal(t, grid.DefaultColumnCount, view.ColumnCount)
	assert.Equal(t, 7*60+30, view.StartTime)
	assert.Equal(t, "07:30 - 08:10", view.TimeLabels[0])
	assert.True(t, f.cacheRepo.has(workspaceCacheKey(view.ID)))
	require.Equal(t, 1, f.queue.count())
	assert.Equal(t, view.ID, f.queue.jobs[0].Key)
	assert.Equal(t, JobTypeWorkspaceSync, f.queue.jobs[0].Type)
}

func TestWorkspaceServiceCreateValidation(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	_, err := f.svc.Create(context.Background(), dto.CreateWorkspaceRequest{Name: "Draft", StartTime: "25:99"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestWorkspaceServiceSelectionDoesNotPersist(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	ctx := context.Background()
	view := f.create(t)

	resp, err := f.svc.ToggleSelect(ctx, view.ID, dto.CellRequest{Cell: "0-0"})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	resp, err = f.svc.ToggleSelect(ctx, view.ID, dto.CellRequest{Cell: "0-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0-0", "0-1"}, resp.Workspace.Selection)
	assert.True(t, resp.Workspace.CanMerge)
	assert.Equal(t, 1, resp.Workspace.Version)
	assert.Equal(t, 1, f.queue.count())

	resp, err = f.svc.Merge(ctx, view.ID, dto.MergeRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, 2, resp.Workspace.Version)
	assert.Equal(t, []string{"0-1"}, resp.Workspace.Hidden)
	assert.Equal(t, grid.Span{RowSpan: 1, ColSpan: 2}, resp.Workspace.Merges["0-0"])
	assert.Empty(t, resp.Workspace.Selection)
	assert.Equal(t, 2, f.queue.count())
}

func TestWorkspaceServiceNoOpIsReportedNotRejected(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	ctx := context.Background()
	view := f.create(t)

	resp, err := f.svc.Merge(ctx, view.ID, dto.MergeRequest{Cells: []string{"0-0", "0-2"}})
	require.NoError(t, err)
	assert.False(t, resp.Applied)
	assert.Equal(t, 1, resp.Workspace.Version)

	resp, err = f.svc.DeleteColumn(ctx, view.ID, 42)
	require.NoError(t, err)
	assert.False(t, resp.Applied)

	resp, err = f.svc.SaveEdit(ctx, view.ID)
	require.NoError(t, err)
	assert.False(t, resp.Applied)
	assert.Equal(t, 1, f.queue.count())
}

func TestWorkspaceServiceEditLifecycle(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	ctx := context.Background()
	view := f.create(t)

	resp, err := f.svc.BeginEdit(ctx, view.ID, dto.CellRequest{Cell: "2-3"})
	require.NoError(t, err)
	require.NotNil(t, resp.Workspace.Editing)
	assert.Equal(t, "2-3", resp.Workspace.Editing.Cell)

	resp, err = f.svc.BeginEdit(ctx, view.ID, dto.CellRequest{Cell: "1-1"})
	require.NoError(t, err)
	assert.False(t, resp.Applied)

	_, err = f.svc.UpdateBuffer(ctx, view.ID, dto.EditBufferRequest{Text: "  Biology  "})
	require.NoError(t, err)
	resp, err = f.svc.SaveEdit(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Nil(t, resp.Workspace.Editing)
	assert.Equal(t, "Biology", resp.Workspace.Cells["2-3"].Text)
	assert.Equal(t, grid.AlignCenter, resp.Workspace.Cells["2-3"].Alignment)
	assert.Equal(t, 2, resp.Workspace.Version)
}

func TestWorkspaceServiceColumnsAndTiming(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{StartTime: 8 * 60})
	ctx := context.Background()
	view := f.create(t)

	resp, err := f.svc.AddColumn(ctx, view.ID, dto.AddColumnRequest{After: -1})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Workspace.ColumnCount)

	resp, err = f.svc.SetDuration(ctx, view.ID, dto.DurationRequest{Column: 0, Minutes: 30})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, 30, resp.Workspace.Durations["0"])
	assert.Equal(t, "08:00 - 08:30", resp.Workspace.TimeLabels[0])

	resp, err = f.svc.SetDuration(ctx, view.ID, dto.DurationRequest{Column: 0, Minutes: 30})
	require.NoError(t, err)
	assert.False(t, resp.Applied)

	resp, err = f.svc.SetTiming(ctx, view.ID, dto.TimingRequest{StartTime: "09:00"})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, "09:00 - 09:30", resp.Workspace.TimeLabels[0])
}

func TestWorkspaceServiceAddColumnStopsAtMaximum(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	ctx := context.Background()
	view, err := f.svc.Create(ctx, dto.CreateWorkspaceRequest{Name: "Wide", ColumnCount: grid.MaxColumnCount})
	require.NoError(t, err)

	resp, err := f.svc.AddColumn(ctx, view.ID, dto.AddColumnRequest{After: 0})
	require.NoError(t, err)
	assert.False(t, resp.Applied)
	assert.Equal(t, grid.MaxColumnCount, resp.Workspace.ColumnCount)
	assert.Equal(t, 1, resp.Workspace.Version)
}

func TestWorkspaceServiceSetCellAndFormat(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	ctx := context.Background()
	view := f.create(t)

	_, err := f.svc.SetCell(ctx, view.ID, dto.SetCellRequest{Cell: "1-1", Text: "Chemistry", ClassTag: "X-1"})
	require.NoError(t, err)
	_, err = f.svc.ToggleSelect(ctx, view.ID, dto.CellRequest{Cell: "1-1"})
	require.NoError(t, err)

	resp, err := f.svc.Format(ctx, view.ID, dto.FormatRequest{Alignment: "left", ToggleVertical: true})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	cell := resp.Workspace.Cells["1-1"]
	assert.Equal(t, grid.AlignLeft, cell.Alignment)
	assert.True(t, cell.IsVertical)
	assert.Equal(t, "X-1", cell.ClassTag)

	_, err = f.svc.SetCell(ctx, view.ID, dto.SetCellRequest{Cell: "1-1", Alignment: "diagonal"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestWorkspaceServiceRejectsMalformedCell(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	view := f.create(t)

	_, err := f.svc.ToggleSelect(context.Background(), view.ID, dto.CellRequest{Cell: "a-b"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestWorkspaceServiceRestoresFromCacheThenDatabase(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	ctx := context.Background()
	view := f.create(t)
	_, err := f.svc.SetCell(ctx, view.ID, dto.SetCellRequest{Cell: "0-0", Text: "Math"})
	require.NoError(t, err)

	// A fresh service sharing the cache sees the latest state.
	other := NewWorkspaceService(f.repo, f.templates, f.roster, NewCacheService(f.cacheRepo, nil, 0, nil, true), nil, WorkspaceConfig{}, nil, nil)
	restored, err := other.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "Math", restored.Cells["0-0"].Text)
	assert.Equal(t, 2, restored.Version)

	snap := grid.New(grid.Options{ColumnCount: 4}).Snapshot()
	snap.Cells["3-3"] = grid.CellContent{Text: "Art", Alignment: grid.AlignRight}
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	f.repo.rows["persisted"] = models.Workspace{ID: "persisted", Name: "Old", Snapshot: types.JSONText(raw), Version: 9}

	fromDB, err := other.Get(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, 4, fromDB.ColumnCount)
	assert.Equal(t, 9, fromDB.Version)
	assert.Equal(t, "Art", fromDB.Cells["3-3"].Text)
	assert.True(t, f.cacheRepo.has(workspaceCacheKey("persisted")))

	_, err = other.Get(ctx, "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestWorkspaceServiceWritesDirectlyWithoutQueue(t *testing.T) {
	repo := newMemoryWorkspaceRepo()
	svc := NewWorkspaceService(repo, &memoryTemplateRepo{}, &staticRoster{}, nil, nil, WorkspaceConfig{}, nil, nil)

	view, err := svc.Create(context.Background(), dto.CreateWorkspaceRequest{Name: "Direct"})
	require.NoError(t, err)
	require.Contains(t, repo.rows, view.ID)
	assert.Equal(t, 1, repo.rows[view.ID].Version)
}

func TestWorkspaceServiceFallsBackWhenQueueRejects(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	f.queue.err = errors.New("queue stopped")

	view := f.create(t)
	assert.Contains(t, f.repo.rows, view.ID)
}

func TestWorkspaceServiceEvictsLeastRecentlyUsed(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{MaxWorkspaces: 1})
	ctx := context.Background()
	first := f.create(t)
	f.svc.MarkSynced(first.ID, first.Version)
	second := f.create(t)

	assert.Equal(t, 1, f.svc.Loaded())
	f.svc.MarkSynced(second.ID, second.Version)
	restored, err := f.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, restored.ID)
	assert.Equal(t, 1, f.svc.Loaded())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestWorkspaceServiceKeepsUnsyncedWorkspacesWithoutCache(t *testing.T) {
	repo := newMemoryWorkspaceRepo()
	queue := &recordingQueue{}
	cacheSvc := NewCacheService(nil, nil, 0, nil, false)
	svc := NewWorkspaceService(repo, &memoryTemplateRepo{}, &staticRoster{}, cacheSvc, nil, WorkspaceConfig{MaxWorkspaces: 1}, nil, nil)
	svc.AttachSync(queue)
	ctx := context.Background()

	first, err := svc.Create(ctx, dto.CreateWorkspaceRequest{Name: "A"})
	require.NoError(t, err)
	_, err = svc.SetCell(ctx, first.ID, dto.SetCellRequest{Cell: "0-0", Text: "Math"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, dto.CreateWorkspaceRequest{Name: "B"})
	require.NoError(t, err)

	// Neither workspace has reached the database yet.
	assert.Equal(t, 2, svc.Loaded())

	worker := NewSyncWorker(svc, repo, nil, nil)
	require.Equal(t, 3, queue.count())
	for _, job := range queue.jobs {
		require.NoError(t, worker.Handle(ctx, job))
	}
	require.Contains(t, repo.rows, first.ID)
	require.Contains(t, repo.rows, second.ID)
	assert.Equal(t, 2, repo.rows[first.ID].Version)
	assert.Contains(t, string(repo.rows[first.ID].Snapshot), "Math")

	_, err = svc.Create(ctx, dto.CreateWorkspaceRequest{Name: "C"})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Loaded())

	restored, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Math", restored.Cells["0-0"].Text)
	assert.Equal(t, 2, restored.Version)
}

func TestWorkspaceServiceAcceptsMidnightStart(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{StartTime: 0, DefaultDuration: 60})
	view := f.create(t)
	require.NotEmpty(t, view.TimeLabels)
	assert.Equal(t, "00:00 - 01:00", view.TimeLabels[0])
}

func TestWorkspaceServiceCreateFromTemplate(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	f.templates.items = map[string]models.Template{
		"weekly": {ID: "weekly", Name: "Weekly", Snapshot: types.JSONText(`{"columnCount":"3","cells":{"0-0":{"text":"Assembly"}},"merges":{"0-0":{"rowSpan":5,"colSpan":1}}}`)},
	}

	view, err := f.svc.Create(context.Background(), dto.CreateWorkspaceRequest{Name: "From template", TemplateID: strPtr("weekly")})
	require.NoError(t, err)
	assert.Equal(t, 3, view.ColumnCount)
	assert.Equal(t, "Assembly", view.Cells["0-0"].Text)
	assert.Len(t, view.Hidden, 4)

	_, err = f.svc.Create(context.Background(), dto.CreateWorkspaceRequest{Name: "Missing", TemplateID: strPtr("nope")})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestWorkspaceServiceGenerate(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{SchedulerEnabled: true, Seed: 7})
	f.roster.db = models.Database{
		Tutors: []models.Tutor{{ID: "t1", Name: "Ana"}},
		Courses: []models.Course{
			{ID: "c1", Name: "Math", TeacherID: "t1", PeriodsPerWeek: 4, Priority: models.PriorityHigh},
		},
		BlockedTexts: []models.BlockedText{{Text: "Break"}},
	}
	ctx := context.Background()
	view := f.create(t)
	_, err := f.svc.SetCell(ctx, view.ID, dto.SetCellRequest{Cell: "0-0", Text: "Break"})
	require.NoError(t, err)

	resp, err := f.svc.Generate(ctx, view.ID, dto.GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Assigned)
	assert.Equal(t, 0, resp.Unplaced)
	assert.Equal(t, 1, resp.BlockedCells)
	require.Len(t, resp.Courses, 1)
	assert.Equal(t, 4, resp.Courses[0].Placed)
	assert.Equal(t, "Break", resp.Workspace.Cells["0-0"].Text)
	assert.Len(t, resp.Workspace.Cells, 5)
	assert.Equal(t, 3, resp.Workspace.Version)

	again, err := f.svc.Generate(ctx, view.ID, dto.GenerateRequest{Seed: new(int64)})
	require.NoError(t, err)
	assert.Len(t, again.Workspace.Cells, 9)
}

func TestWorkspaceServiceGenerateDisabled(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	view := f.create(t)

	_, err := f.svc.Generate(context.Background(), view.ID, dto.GenerateRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Equal(t, 0, f.roster.loads)
}

func TestWorkspaceServiceDelete(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	ctx := context.Background()
	view := f.create(t)

	require.NoError(t, f.svc.Delete(ctx, view.ID))
	assert.False(t, f.cacheRepo.has(workspaceCacheKey(view.ID)))
	_, err := f.svc.Get(ctx, view.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	err = f.svc.Delete(ctx, view.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestWorkspaceRecordModelRoundTrip(t *testing.T) {
	state := grid.New(grid.Options{ColumnCount: 2})
	state.SetCellContent(grid.Coord{Row: 0, Col: 1}, grid.CellContent{Text: "PE"})
	rec := WorkspaceRecord{ID: "w", Name: "n", Version: 3, Snapshot: state.Snapshot(), SessionID: strPtr("X-1")}

	model, err := rec.Model()
	require.NoError(t, err)
	assert.Equal(t, 3, model.Version)
	var snap grid.Snapshot
	require.NoError(t, json.Unmarshal(model.Snapshot, &snap))
	assert.Equal(t, "PE", snap.Cells["0-1"].Text)
}
