package dto

import "time"

// SaveTemplateRequest stores the workspace grid under a name.
type SaveTemplateRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// TemplateSummary lists stored templates without their snapshots.
type TemplateSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ColumnCount int       `json:"columnCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
