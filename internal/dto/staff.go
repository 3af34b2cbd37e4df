package dto

// CreateStaffRequest registers a faculty member.
type CreateStaffRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,len=10,numeric"`
	Designation string `json:"designation" validate:"required,oneof='Professor' 'Associate Professor' 'Assistant Professor' 'Lecturer' 'Lab Instructor' 'Visiting Faculty'"`
	Department  string `json:"department" validate:"required"`
}

// UpdateStaffRequest mutates an existing staff record. Nil fields are untouched.
type UpdateStaffRequest struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,len=10,numeric"`
	Designation *string `json:"designation,omitempty"`
	Department  *string `json:"department,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}
