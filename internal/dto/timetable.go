package dto

import "github.com/noah-isme/college-timetable-api/internal/models"

// GenerateTimetableRequest triggers a cohort generation run.
type GenerateTimetableRequest struct {
	Department string `json:"department" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=odd even"`
}

// SubjectWarning reports a subject whose weekly quota could not be met.
type SubjectWarning struct {
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Semester    int    `json:"semester"`
	Requested   int    `json:"requested"`
	Placed      int    `json:"placed"`
	Reason      string `json:"reason,omitempty"`
}

// SemesterResult is the generation outcome for one semester of the cohort.
type SemesterResult struct {
	Semester   int                     `json:"semester"`
	Department string                  `json:"department"`
	Version    int                     `json:"version,omitempty"`
	Entries    []models.TimetableEntry `json:"entries"`
	Error      string                  `json:"error,omitempty"`
}

// GenerateTimetableResponse is returned after a successful run.
type GenerateTimetableResponse struct {
	Type       models.CohortType `json:"type"`
	Department string            `json:"department"`
	Semesters  []SemesterResult  `json:"semesters"`
	Warnings   []SubjectWarning  `json:"warnings,omitempty"`
	ElapsedMS  int64             `json:"elapsed_ms"`
}

// ActivateTimetableRequest pins a version as active for a cohort.
type ActivateTimetableRequest struct {
	Department string `json:"department" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=odd even"`
	Version    int    `json:"version" validate:"required,min=1"`
}

// ActiveTimetableResponse bundles the active pointer with its timetables.
type ActiveTimetableResponse struct {
	Active     models.ActiveTimetable `json:"active"`
	Timetables []models.Timetable     `json:"timetables"`
}
