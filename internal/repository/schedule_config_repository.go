package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// ScheduleConfigRepository persists per-semester schedule configurations.
type ScheduleConfigRepository struct {
	db *sqlx.DB
}

// NewScheduleConfigRepository constructs the repository.
func NewScheduleConfigRepository(db *sqlx.DB) *ScheduleConfigRepository {
	return &ScheduleConfigRepository{db: db}
}

const scheduleConfigColumns = `id, semester, department, class_start_time, class_end_time, period_duration,
periods_per_day, lunch_start, lunch_end, break_times, assembly_enabled, assembly_start, assembly_end,
working_days, max_per_day_per_subject, created_at, updated_at`

// FindForSemester resolves the configuration for a semester, falling back to
// the global scope record when the semester has none.
func (r *ScheduleConfigRepository) FindForSemester(ctx context.Context, semester int, department string) (*models.ScheduleConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_configs WHERE semester = $1 AND department = $2`, scheduleConfigColumns)

	var cfg models.ScheduleConfig
	err := r.db.GetContext(ctx, &cfg, query, fmt.Sprintf("%d", semester), department)
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find schedule config: %w", err)
	}

	err = r.db.GetContext(ctx, &cfg, query, models.GlobalConfigScope, models.GlobalConfigScope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find global schedule config: %w", err)
	}
	return &cfg, nil
}

// Upsert creates or replaces the configuration for a semester scope.
func (r *ScheduleConfigRepository) Upsert(ctx context.Context, cfg *models.ScheduleConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	const query = `
INSERT INTO schedule_configs (id, semester, department, class_start_time, class_end_time, period_duration,
  periods_per_day, lunch_start, lunch_end, break_times, assembly_enabled, assembly_start, assembly_end,
  working_days, max_per_day_per_subject, created_at, updated_at)
VALUES (:id, :semester, :department, :class_start_time, :class_end_time, :period_duration,
  :periods_per_day, :lunch_start, :lunch_end, :break_times, :assembly_enabled, :assembly_start, :assembly_end,
  :working_days, :max_per_day_per_subject, :created_at, :updated_at)
ON CONFLICT (semester, department) DO UPDATE
SET class_start_time = EXCLUDED.class_start_time,
    class_end_time = EXCLUDED.class_end_time,
    period_duration = EXCLUDED.period_duration,
    periods_per_day = EXCLUDED.periods_per_day,
    lunch_start = EXCLUDED.lunch_start,
    lunch_end = EXCLUDED.lunch_end,
    break_times = EXCLUDED.break_times,
    assembly_enabled = EXCLUDED.assembly_enabled,
    assembly_start = EXCLUDED.assembly_start,
    assembly_end = EXCLUDED.assembly_end,
    working_days = EXCLUDED.working_days,
    max_per_day_per_subject = EXCLUDED.max_per_day_per_subject,
    updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, cfg); err != nil {
		return fmt.Errorf("upsert schedule config: %w", err)
	}
	return nil
}

// List returns every configuration record ordered by scope.
func (r *ScheduleConfigRepository) List(ctx context.Context) ([]models.ScheduleConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_configs ORDER BY semester ASC, department ASC`, scheduleConfigColumns)
	var configs []models.ScheduleConfig
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list schedule configs: %w", err)
	}
	return configs, nil
}
