package models

import "time"

// StaffDesignation enumerates teaching ranks.
type StaffDesignation string

const (
	DesignationProfessor          StaffDesignation = "Professor"
	DesignationAssociateProfessor StaffDesignation = "Associate Professor"
	DesignationAssistantProfessor StaffDesignation = "Assistant Professor"
	DesignationLecturer           StaffDesignation = "Lecturer"
	DesignationLabInstructor      StaffDesignation = "Lab Instructor"
	DesignationVisitingFaculty    StaffDesignation = "Visiting Faculty"
)

// Staff represents a faculty member who can be assigned to subjects.
type Staff struct {
	ID          string           `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Email       string           `db:"email" json:"email"`
	Phone       string           `db:"phone" json:"phone"`
	Designation StaffDesignation `db:"designation" json:"designation"`
	Department  string           `db:"department" json:"department"`
	Active      bool             `db:"active" json:"active"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// StaffFilter captures supported filters for listing staff.
type StaffFilter struct {
	Department string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
}
