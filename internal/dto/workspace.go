package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/grid"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
)

// CreateWorkspaceRequest opens a new editing session.
type CreateWorkspaceRequest struct {
	Name            string  `json:"name" validate:"required,max=120"`
	SessionID       *string `json:"sessionId" validate:"omitempty,max=64"`
	TemplateID      *string `json:"templateId" validate:"omitempty,max=64"`
	ColumnCount     int     `json:"columnCount" validate:"omitempty,min=1,max=48"`
	DefaultDuration int     `json:"defaultDuration" validate:"omitempty,min=1,max=600"`
	StartTime       string  `json:"startTime" validate:"omitempty,clock"`
}

// CellRequest addresses one cell.
type CellRequest struct {
	Cell string `json:"cell" validate:"required,cellkey"`
}

// MergeRequest merges explicit cells, or the current selection when Cells is empty.
type MergeRequest struct {
	Cells []string `json:"cells" validate:"omitempty,dive,cellkey"`
}

// AddColumnRequest inserts a column after the given index; -1 inserts at the front.
type AddColumnRequest struct {
	After int `json:"after" validate:"min=-1"`
}

// DurationRequest overrides one column's duration. Zero restores the default.
type DurationRequest struct {
	Column  int `json:"column" validate:"min=0"`
	Minutes int `json:"minutes" validate:"min=0,max=600"`
}

// TimingRequest changes the grid-wide slot duration and start time.
type TimingRequest struct {
	DefaultDuration int    `json:"defaultDuration" validate:"omitempty,min=1,max=600"`
	StartTime       string `json:"startTime" validate:"omitempty,clock"`
}

// EditBufferRequest replaces the uncommitted edit text.
type EditBufferRequest struct {
	Text string `json:"text" validate:"max=2000"`
}

// SetCellRequest writes content directly into a cell. Empty text clears it.
type SetCellRequest struct {
	Cell       string `json:"cell" validate:"required,cellkey"`
	Text       string `json:"text" validate:"max=2000"`
	Alignment  string `json:"alignment" validate:"omitempty,oneof=left center right"`
	IsVertical bool   `json:"isVertical"`
	ClassTag   string `json:"classTag" validate:"max=64"`
}

// FormatRequest applies formatting to every selected cell that has content.
type FormatRequest struct {
	Alignment      string `json:"alignment" validate:"omitempty,oneof=left center right"`
	ToggleVertical bool   `json:"toggleVertical"`
}

// GenerateRequest runs the automatic scheduler on a workspace.
type GenerateRequest struct {
	SessionID *string `json:"sessionId" validate:"omitempty,max=64"`
	Seed      *int64  `json:"seed"`
}

// EditingView describes the in-progress cell edit.
type EditingView struct {
	Cell   string `json:"cell"`
	Buffer string `json:"buffer"`
}

// WorkspaceView is the full client-facing state of an editing session.
type WorkspaceView struct {
	ID              string                      `json:"id"`
	Name            string                      `json:"name"`
	SessionID       *string                     `json:"sessionId,omitempty"`
	Version         int                         `json:"version"`
	ColumnCount     int                         `json:"columnCount"`
	DefaultDuration int                         `json:"defaultDuration"`
	StartTime       int                         `json:"startTime"`
	TimeLabels      []string                    `json:"timeLabels"`
	Cells           map[string]grid.CellContent `json:"cells"`
	Merges          map[string]grid.Span        `json:"merges"`
	Hidden          []string                    `json:"hidden"`
	Durations       map[string]int              `json:"durations"`
	Selection       []string                    `json:"selection"`
	CanMerge        bool                        `json:"canMerge"`
	Editing         *EditingView                `json:"editing,omitempty"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// WorkspaceResponse wraps a view with whether the requested operation changed anything.
// Operations whose preconditions fail are ignored rather than rejected.
type WorkspaceResponse struct {
	Workspace WorkspaceView `json:"workspace"`
	Applied   bool          `json:"applied"`
}

// WorkspaceSummary lists persisted workspaces.
type WorkspaceSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SessionID *string   `json:"sessionId,omitempty"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GenerateResponse reports what the scheduler placed.
type GenerateResponse struct {
	Workspace    WorkspaceView            `json:"workspace"`
	Courses      []scheduler.CourseReport `json:"courses"`
	Assigned     int                      `json:"assigned"`
	Unplaced     int                      `json:"unplaced"`
	BlockedCells int                      `json:"blockedCells"`
}
