package dto

import "github.com/noah-isme/college-timetable-api/internal/models"

// UpsertScheduleConfigRequest creates or replaces the configuration for one
// semester scope ("1".."8" or "global").
type UpsertScheduleConfigRequest struct {
	Semester        string             `json:"semester" validate:"required"`
	Department      string             `json:"department"`
	ClassStartTime  string             `json:"class_start_time" validate:"required,datetime=15:04"`
	ClassEndTime    string             `json:"class_end_time" validate:"required,datetime=15:04"`
	PeriodDuration  int                `json:"period_duration" validate:"required,min=30,max=120"`
	PeriodsPerDay   int                `json:"periods_per_day" validate:"required,min=1,max=10"`
	LunchStart      string             `json:"lunch_start" validate:"required,datetime=15:04"`
	LunchEnd        string             `json:"lunch_end" validate:"required,datetime=15:04"`
	BreakTimes      []models.BreakTime `json:"break_times" validate:"dive"`
	AssemblyEnabled bool               `json:"assembly_enabled"`
	AssemblyStart   string             `json:"assembly_start" validate:"required_if=AssemblyEnabled true,omitempty,datetime=15:04"`
	AssemblyEnd     string             `json:"assembly_end" validate:"required_if=AssemblyEnabled true,omitempty,datetime=15:04"`
	WorkingDays     []string           `json:"working_days" validate:"required,min=1"`
	MaxPerDay       int                `json:"max_per_day_per_subject" validate:"omitempty,min=1,max=10"`
}
