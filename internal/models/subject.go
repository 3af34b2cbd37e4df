package models

import "time"

// SubjectType distinguishes single-period lectures from multi-period lab blocks.
type SubjectType string

const (
	SubjectTypeLecture SubjectType = "Lecture"
	SubjectTypeLab     SubjectType = "Lab"
)

// Subject represents a weekly class requirement owned by a department semester.
type Subject struct {
	ID             string      `db:"id" json:"id"`
	Name           string      `db:"name" json:"name"`
	Code           string      `db:"code" json:"code"`
	Type           SubjectType `db:"type" json:"type"`
	FacultyID      string      `db:"faculty_id" json:"faculty_id"`
	PeriodsPerWeek int         `db:"periods_per_week" json:"periods_per_week"`
	LabName        *string     `db:"lab_name" json:"lab_name,omitempty"`
	Semester       int         `db:"semester" json:"semester"`
	Department     string      `db:"department" json:"department"`
	Active         bool        `db:"active" json:"active"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`

	// Faculty is hydrated by list queries that join the staff table.
	Faculty *Staff `db:"-" json:"faculty,omitempty"`
}

// LabRoom returns the lab room name or empty for lecture subjects.
func (s *Subject) LabRoom() string {
	if s.LabName == nil {
		return ""
	}
	return *s.LabName
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Semester   *int
	Department string
	Type       *SubjectType
	Active     *bool
	Page       int
	PageSize   int
}
