package service

import (
	"strconv"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/grid"
)

// buildWorkspaceView renders the client-facing state. Callers hold entry.mu.
func buildWorkspaceView(entry *workspaceEntry) dto.WorkspaceView {
	st := entry.state
	view := dto.WorkspaceView{
		ID:              entry.id,
		Name:            entry.name,
		SessionID:       entry.sessionID,
		Version:         entry.version,
		ColumnCount:     st.ColumnCount(),
		DefaultDuration: st.DefaultDuration(),
		StartTime:       st.StartTime(),
		TimeLabels:      st.TimeLabels(),
		Cells:           make(map[string]grid.CellContent),
		Merges:          make(map[string]grid.Span),
		Hidden:          st.Hidden().Keys(),
		Durations:       make(map[string]int),
		Selection:       st.Selection().Keys(),
		CanMerge:        st.CanMergeSelection(),
		UpdatedAt:       entry.updatedAt,
	}
	for c, content := range st.Contents() {
		view.Cells[c.Key()] = content
	}
	for c, span := range st.Merges() {
		view.Merges[c.Key()] = span
	}
	for col, minutes := range st.Durations() {
		view.Durations[strconv.Itoa(col)] = minutes
	}
	if c, ok := st.Editing(); ok {
		view.Editing = &dto.EditingView{Cell: c.Key(), Buffer: st.EditBuffer()}
	}
	return view
}
