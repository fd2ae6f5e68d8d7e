package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Template is a named, reusable grid snapshot.
type Template struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Snapshot  types.JSONText `db:"snapshot" json:"snapshot"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Workspace is the durable copy of an editing session, written by the sync worker.
type Workspace struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	SessionID *string        `db:"session_id" json:"session_id,omitempty"`
	Snapshot  types.JSONText `db:"snapshot" json:"snapshot"`
	Version   int            `db:"version" json:"version"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// ExportFormat is an output format for rendered timetables.
type ExportFormat string

const (
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatCSV  ExportFormat = "csv"
)
