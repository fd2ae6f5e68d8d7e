package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// TutorRequest defines payload for creating or updating a tutor.
type TutorRequest struct {
	ID               string   `json:"id" validate:"omitempty,max=64"`
	Name             string   `json:"name" validate:"required,max=120"`
	Subjects         []string `json:"subjects" validate:"omitempty,dive,required"`
	MaxPeriodsPerDay *int     `json:"maxPeriodsPerDay" validate:"omitempty,min=1,max=32"`
	UnavailableSlots []string `json:"unavailableSlots" validate:"omitempty,dive,cellkey"`
}

// CourseRequest defines payload for creating or updating a course.
type CourseRequest struct {
	ID               string          `json:"id" validate:"omitempty,max=64"`
	Name             string          `json:"name" validate:"required,max=120"`
	TeacherID        string          `json:"teacherId" validate:"required"`
	PeriodsPerWeek   int             `json:"periodsPerWeek" validate:"min=0,max=60"`
	Priority         models.Priority `json:"priority" validate:"omitempty,oneof=high medium low"`
	Duration         *int            `json:"duration" validate:"omitempty,min=1"`
	PreferredSlots   []string        `json:"preferredSlots" validate:"omitempty,dive,cellkey"`
	AvoidConsecutive bool            `json:"avoidConsecutive"`
}

// SessionRequest defines payload for creating or updating a class session.
type SessionRequest struct {
	ID       string   `json:"id" validate:"omitempty,max=64"`
	Name     string   `json:"name" validate:"required,max=120"`
	Subjects []string `json:"subjects" validate:"omitempty,dive,required"`
}

// BlockedSlotRequest marks a grid cell as unavailable for automatic placement.
type BlockedSlotRequest struct {
	CellKey string `json:"cellKey" validate:"required,cellkey"`
	Label   string `json:"label" validate:"max=120"`
}

// BlockedTextRequest registers a label that blocks every cell containing it.
type BlockedTextRequest struct {
	Text string `json:"text" validate:"required,max=120"`
}

// RosterQuery filters roster list endpoints.
type RosterQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
