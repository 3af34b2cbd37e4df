package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// TimetableRepository persists versioned timetables and their entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BeginTxx opens a transaction on the underlying database.
func (r *TimetableRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

// CreateVersioned inserts a timetable and its entries, assigning the next
// version for the semester-department pair. Existing versions are never
// touched.
func (r *TimetableRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.Semester == 0 || timetable.Department == "" {
		return fmt.Errorf("semester and department are required")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = time.Now().UTC()
	}

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE semester = $1 AND department = $2`
	if err := sqlx.GetContext(ctx, target, &timetable.Version, nextVersionQuery, timetable.Semester, timetable.Department); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetables (id, semester, department, version, created_at)
VALUES (:id, :semester, :department, :version, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}

	const entryQuery = `
INSERT INTO timetable_entries (id, timetable_id, day, start_time, end_time, subject_id, type, room, label)
VALUES (:id, :timetable_id, :day, :start_time, :end_time, :subject_id, :type, :room, :label)`
	for i := range timetable.Entries {
		entry := &timetable.Entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.TimetableID = timetable.ID
		if _, err := sqlx.NamedExecContext(ctx, target, entryQuery, entry); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}
	return nil
}

// ListVersions returns the stored versions whose semesters match the cohort
// parity, newest first.
func (r *TimetableRepository) ListVersions(ctx context.Context, cohort models.CohortType, department string) ([]models.TimetableVersion, error) {
	parity := 1
	if cohort == models.CohortEven {
		parity = 0
	}
	const query = `SELECT department, version, MIN(created_at) AS created_at
FROM timetables WHERE semester % 2 = $1 AND department = $2
GROUP BY department, version ORDER BY version DESC`
	type row struct {
		Department string    `db:"department"`
		Version    int       `db:"version"`
		CreatedAt  time.Time `db:"created_at"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, parity, department); err != nil {
		return nil, fmt.Errorf("list timetable versions: %w", err)
	}
	versions := make([]models.TimetableVersion, 0, len(rows))
	for _, rw := range rows {
		versions = append(versions, models.TimetableVersion{
			Department: rw.Department,
			Type:       cohort,
			Version:    rw.Version,
			CreatedAt:  rw.CreatedAt,
		})
	}
	return versions, nil
}

// FindByCohortVersion loads every timetable of the cohort's semesters at the
// given version, entries included.
func (r *TimetableRepository) FindByCohortVersion(ctx context.Context, cohort models.CohortType, department string, version int) ([]models.Timetable, error) {
	parity := 1
	if cohort == models.CohortEven {
		parity = 0
	}
	const query = `SELECT id, semester, department, version, created_at
FROM timetables WHERE semester % 2 = $1 AND department = $2 AND version = $3
ORDER BY semester ASC`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, parity, department, version); err != nil {
		return nil, fmt.Errorf("find timetables by version: %w", err)
	}
	if len(timetables) == 0 {
		return nil, sql.ErrNoRows
	}
	for i := range timetables {
		entries, err := r.listEntries(ctx, timetables[i].ID)
		if err != nil {
			return nil, err
		}
		timetables[i].Entries = entries
	}
	return timetables, nil
}

// FindBySemesterVersion loads one semester's timetable at a version with its
// entries.
func (r *TimetableRepository) FindBySemesterVersion(ctx context.Context, semester int, department string, version int) (*models.Timetable, error) {
	const query = `SELECT id, semester, department, version, created_at
FROM timetables WHERE semester = $1 AND department = $2 AND version = $3`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, semester, department, version); err != nil {
		return nil, err
	}
	entries, err := r.listEntries(ctx, timetable.ID)
	if err != nil {
		return nil, err
	}
	timetable.Entries = entries
	return &timetable, nil
}

func (r *TimetableRepository) listEntries(ctx context.Context, timetableID string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, timetable_id, day, start_time, end_time, subject_id, type, room, label
FROM timetable_entries WHERE timetable_id = $1
ORDER BY CASE day
    WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3
    WHEN 'Thursday' THEN 4 WHEN 'Friday' THEN 5 WHEN 'Saturday' THEN 6
    ELSE 7 END, start_time ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}
