package dto

// CreateSubjectRequest registers a subject for scheduling.
type CreateSubjectRequest struct {
	Name           string `json:"name" validate:"required"`
	Code           string `json:"code" validate:"required,uppercase"`
	Type           string `json:"type" validate:"required,oneof=Lecture Lab"`
	FacultyID      string `json:"faculty_id" validate:"required,uuid4"`
	PeriodsPerWeek int    `json:"periods_per_week" validate:"required,min=1,max=10"`
	LabName        string `json:"lab_name" validate:"required_if=Type Lab"`
	Semester       int    `json:"semester" validate:"required,min=1,max=8"`
	Department     string `json:"department" validate:"required"`
}

// UpdateSubjectRequest mutates an existing subject. Nil fields are untouched.
type UpdateSubjectRequest struct {
	Name           *string `json:"name,omitempty"`
	FacultyID      *string `json:"faculty_id,omitempty" validate:"omitempty,uuid4"`
	PeriodsPerWeek *int    `json:"periods_per_week,omitempty" validate:"omitempty,min=1,max=10"`
	LabName        *string `json:"lab_name,omitempty"`
	Active         *bool   `json:"active,omitempty"`
}
