package models

import "time"

// EntryType classifies a timetable entry.
type EntryType string

const (
	EntryTypeLecture  EntryType = "lecture"
	EntryTypeLab      EntryType = "lab"
	EntryTypeBreak    EntryType = "break"
	EntryTypeLunch    EntryType = "lunch"
	EntryTypeAssembly EntryType = "assembly"
)

// CohortType groups semesters that share a generation cycle.
type CohortType string

const (
	CohortOdd  CohortType = "odd"
	CohortEven CohortType = "even"
)

// Semesters returns the semester numbers belonging to the cohort.
func (c CohortType) Semesters() []int {
	if c == CohortEven {
		return []int{2, 4, 6, 8}
	}
	return []int{1, 3, 5, 7}
}

// Valid reports whether the cohort type is one of the known values.
func (c CohortType) Valid() bool {
	return c == CohortOdd || c == CohortEven
}

// TimeSlot is one labeled interval of a day's grid. Derived from
// ScheduleConfig, never persisted on its own.
type TimeSlot struct {
	Start string    `json:"start"`
	End   string    `json:"end"`
	Type  EntryType `json:"type"`
	Label string    `json:"label,omitempty"`
}

// TimetableEntry is a single cell of a generated timetable.
type TimetableEntry struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"-"`
	Day         string    `db:"day" json:"day"`
	Start       string    `db:"start_time" json:"start"`
	End         string    `db:"end_time" json:"end"`
	SubjectID   *string   `db:"subject_id" json:"subject_id,omitempty"`
	Type        EntryType `db:"type" json:"type"`
	Room        *string   `db:"room" json:"room,omitempty"`
	Label       string    `db:"label" json:"label,omitempty"`
}

// Timetable is an immutable, versioned schedule snapshot for one
// semester-department pair. Regeneration inserts a new version; existing
// versions are never mutated.
type Timetable struct {
	ID         string    `db:"id" json:"id"`
	Semester   int       `db:"semester" json:"semester"`
	Department string    `db:"department" json:"department"`
	Version    int       `db:"version" json:"version"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	Entries []TimetableEntry `db:"-" json:"entries"`
}

// ActiveTimetable points at the published version for a cohort. Exactly one
// row per cohort type and department; activation overwrites it.
type ActiveTimetable struct {
	Type        CohortType `db:"type" json:"type"`
	Department  string     `db:"department" json:"department"`
	Version     int        `db:"version" json:"version"`
	ActivatedAt time.Time  `db:"activated_at" json:"activated_at"`
}

// TimetableVersion summarises one stored version for list views.
type TimetableVersion struct {
	Department string     `db:"department" json:"department"`
	Type       CohortType `db:"type" json:"type"`
	Version    int        `db:"version" json:"version"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
