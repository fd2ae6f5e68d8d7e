package service

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestTemplateServiceSaveAndApply(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	ctx := context.Background()
	source := f.create(t)
	_, err := f.svc.Merge(ctx, source.ID, dto.MergeRequest{Cells: []string{"0-0", "1-0"}})
	require.NoError(t, err)
	_, err = f.svc.SetCell(ctx, source.ID, dto.SetCellRequest{Cell: "0-0", Text: "Assembly"})
	require.NoError(t, err)

	tplRepo := &memoryTemplateRepo{}
	svc := NewTemplateService(tplRepo, f.svc, nil, nil)

	summary, err := svc.Save(ctx, source.ID, dto.SaveTemplateRequest{Name: "Weekly"})
	require.NoError(t, err)
	assert.Equal(t, 6, summary.ColumnCount)

	target, err := f.svc.Create(ctx, dto.CreateWorkspaceRequest{Name: "Target", ColumnCount: 3})
	require.NoError(t, err)
	_, err = f.svc.ToggleSelect(ctx, target.ID, dto.CellRequest{Cell: "2-2"})
	require.NoError(t, err)

	resp, err := svc.Apply(ctx, target.ID, summary.ID)
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, 6, resp.Workspace.ColumnCount)
	assert.Equal(t, "Assembly", resp.Workspace.Cells["0-0"].Text)
	assert.Equal(t, []string{"1-0"}, resp.Workspace.Hidden)
	assert.Empty(t, resp.Workspace.Selection)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Weekly", list[0].Name)
}

func TestTemplateServiceRejectsInvalidSnapshot(t *testing.T) {
	f := newWorkspaceFixture(t, WorkspaceConfig{})
	target := f.create(t)
	tplRepo := &memoryTemplateRepo{items: map[string]models.Template{
		"broken":  {ID: "broken", Name: "Broken", Snapshot: types.JSONText(`{"columnCount":2,"merges":{"0-0":{"rowSpan":1,"colSpan":5}}}`)},
		"garbled": {ID: "garbled", Name: "Garbled", Snapshot: types.JSONText(`[1,2,3]`)},
	}}
	svc := NewTemplateService(tplRepo, f.svc, nil, nil)

	_, err := svc.Apply(context.Background(), target.ID, "broken")
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidSnapshot))
	_, err = svc.Apply(context.Background(), target.ID, "garbled")
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidSnapshot))
	_, err = svc.Apply(context.Background(), target.ID, "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTemplateServiceDelete(t *testing.T) {
	tplRepo := &memoryTemplateRepo{items: map[string]models.Template{"a": {ID: "a"}}}
	svc := NewTemplateService(tplRepo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "a"))
	assert.True(t, appErrors.Is(svc.Delete(context.Background(), "a"), appErrors.ErrNotFound))
}
