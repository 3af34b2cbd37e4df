package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// ActiveTimetableRepository tracks the published version per cohort.
type ActiveTimetableRepository struct {
	db *sqlx.DB
}

// NewActiveTimetableRepository constructs the repository.
func NewActiveTimetableRepository(db *sqlx.DB) *ActiveTimetableRepository {
	return &ActiveTimetableRepository{db: db}
}

// Upsert sets the active version for a cohort type and department,
// replacing any previous pointer.
func (r *ActiveTimetableRepository) Upsert(ctx context.Context, active *models.ActiveTimetable) error {
	if active.ActivatedAt.IsZero() {
		active.ActivatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO active_timetables (type, department, version, activated_at)
VALUES (:type, :department, :version, :activated_at)
ON CONFLICT (type, department) DO UPDATE
SET version = EXCLUDED.version,
    activated_at = EXCLUDED.activated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, active); err != nil {
		return fmt.Errorf("upsert active timetable: %w", err)
	}
	return nil
}

// Get returns the active pointer for a cohort type and department.
func (r *ActiveTimetableRepository) Get(ctx context.Context, cohort models.CohortType, department string) (*models.ActiveTimetable, error) {
	const query = `SELECT type, department, version, activated_at
FROM active_timetables WHERE type = $1 AND department = $2`
	var active models.ActiveTimetable
	if err := r.db.GetContext(ctx, &active, query, cohort, department); err != nil {
		return nil, err
	}
	return &active, nil
}
