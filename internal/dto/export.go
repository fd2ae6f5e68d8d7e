package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ExportRequest renders a workspace to a downloadable file.
type ExportRequest struct {
	Format   models.ExportFormat `json:"format" validate:"required,oneof=pdf xlsx csv"`
	ClassTag string              `json:"classTag" validate:"max=64"`
	Title    string              `json:"title" validate:"max=120"`
}

// ExportResponse returns the signed download link.
type ExportResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportFile is a rendered file ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
