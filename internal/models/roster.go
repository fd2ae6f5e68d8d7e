package models

import (
	"time"

	"github.com/lib/pq"
)

// Priority ranks a course for placement order.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight returns the placement multiplier of the priority. Unknown values weigh as low.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// Tutor is a teacher that can be assigned to courses.
type Tutor struct {
	ID               string         `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Subjects         pq.StringArray `db:"subjects" json:"subjects"`
	MaxPeriodsPerDay *int           `db:"max_periods_per_day" json:"max_periods_per_day,omitempty"`
	UnavailableSlots pq.StringArray `db:"unavailable_slots" json:"unavailable_slots"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Course is a subject taught by one tutor a number of periods per week.
type Course struct {
	ID               string         `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	TeacherID        string         `db:"teacher_id" json:"teacher_id"`
	PeriodsPerWeek   int            `db:"periods_per_week" json:"periods_per_week"`
	Priority         Priority       `db:"priority" json:"priority"`
	Duration         *int           `db:"duration" json:"duration,omitempty"`
	PreferredSlots   pq.StringArray `db:"preferred_slots" json:"preferred_slots"`
	AvoidConsecutive bool           `db:"avoid_consecutive" json:"avoid_consecutive"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Session is a class or cohort grouping a subset of courses.
type Session struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Subjects  pq.StringArray `db:"subjects" json:"subjects"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// BlockedSlot excludes one grid coordinate from automatic placement.
type BlockedSlot struct {
	ID        string    `db:"id" json:"id"`
	CellKey   string    `db:"cell_key" json:"cell_key"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BlockedText excludes every cell whose text contains it, case-insensitively.
type BlockedText struct {
	ID        string    `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RosterFilter narrows list queries.
type RosterFilter struct {
	Search   string
	Page     int
	PageSize int
}
