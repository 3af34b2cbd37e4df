package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// GlobalConfigScope is the semester value of the fallback configuration record.
const GlobalConfigScope = "global"

// BreakTime is a named non-lecture interval inserted into every working day.
type BreakTime struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ScheduleConfig describes the daily time structure for one semester scope.
// Times are "HH:MM" strings, matching what the admin UI submits.
type ScheduleConfig struct {
	ID              string         `db:"id" json:"id"`
	Semester        string         `db:"semester" json:"semester"`
	Department      string         `db:"department" json:"department"`
	ClassStartTime  string         `db:"class_start_time" json:"class_start_time"`
	ClassEndTime    string         `db:"class_end_time" json:"class_end_time"`
	PeriodDuration  int            `db:"period_duration" json:"period_duration"`
	PeriodsPerDay   int            `db:"periods_per_day" json:"periods_per_day"`
	LunchStart      string         `db:"lunch_start" json:"lunch_start"`
	LunchEnd        string         `db:"lunch_end" json:"lunch_end"`
	BreakTimes      types.JSONText `db:"break_times" json:"break_times"`
	AssemblyEnabled bool           `db:"assembly_enabled" json:"assembly_enabled"`
	AssemblyStart   string         `db:"assembly_start" json:"assembly_start"`
	AssemblyEnd     string         `db:"assembly_end" json:"assembly_end"`
	WorkingDays     pq.StringArray `db:"working_days" json:"working_days"`
	MaxPerDay       int            `db:"max_per_day_per_subject" json:"max_per_day_per_subject"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
