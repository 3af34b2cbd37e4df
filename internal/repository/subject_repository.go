package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// SubjectRepository persists subjects and hydrates their faculty reference.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

type subjectRow struct {
	models.Subject
	FacultyName        *string `db:"faculty_name"`
	FacultyEmail       *string `db:"faculty_email"`
	FacultyDept        *string `db:"faculty_department"`
	FacultyDesignation *string `db:"faculty_designation"`
}

func (r subjectRow) toModel() models.Subject {
	sub := r.Subject
	if r.FacultyName != nil {
		sub.Faculty = &models.Staff{
			ID:         sub.FacultyID,
			Name:       *r.FacultyName,
			Department: deref(r.FacultyDept),
			Email:      deref(r.FacultyEmail),
		}
		if r.FacultyDesignation != nil {
			sub.Faculty.Designation = models.StaffDesignation(*r.FacultyDesignation)
		}
	}
	return sub
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListActiveForSemester returns active subjects with their faculty joined,
// ordered for deterministic generation input.
func (r *SubjectRepository) ListActiveForSemester(ctx context.Context, semester int, department string) ([]models.Subject, error) {
	const query = `
SELECT s.id, s.name, s.code, s.type, s.faculty_id, s.periods_per_week, s.lab_name,
       s.semester, s.department, s.active, s.created_at, s.updated_at,
       f.name AS faculty_name, f.email AS faculty_email,
       f.department AS faculty_department, f.designation AS faculty_designation
FROM subjects s
LEFT JOIN staff f ON f.id = s.faculty_id
WHERE s.semester = $1 AND s.department = $2 AND s.active = TRUE
ORDER BY s.periods_per_week DESC, s.code ASC`
	var rows []subjectRow
	if err := r.db.SelectContext(ctx, &rows, query, semester, department); err != nil {
		return nil, fmt.Errorf("list subjects for semester: %w", err)
	}
	subjects := make([]models.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toModel())
	}
	return subjects, nil
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	const query = `
INSERT INTO subjects (id, name, code, type, faculty_id, periods_per_week, lab_name, semester, department, active, created_at, updated_at)
VALUES (:id, :name, :code, :type, :faculty_id, :periods_per_week, :lab_name, :semester, :department, :active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, subject); err != nil {
		return fmt.Errorf("insert subject: %w", err)
	}
	return nil
}

// Update applies the full subject record by ID.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE subjects
SET name = :name, faculty_id = :faculty_id, periods_per_week = :periods_per_week,
    lab_name = :lab_name, active = :active, updated_at = :updated_at
WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, subject)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("subject rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID loads a subject by identifier.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `
SELECT id, name, code, type, faculty_id, periods_per_week, lab_name, semester, department, active, created_at, updated_at
FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// List returns subjects matching the filter with pagination.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	where := []string{"1=1"}
	args := map[string]interface{}{}
	if filter.Semester != nil {
		where = append(where, "semester = :semester")
		args["semester"] = *filter.Semester
	}
	if filter.Department != "" {
		where = append(where, "department = :department")
		args["department"] = filter.Department
	}
	if filter.Type != nil {
		where = append(where, "type = :type")
		args["type"] = string(*filter.Type)
	}
	if filter.Active != nil {
		where = append(where, "active = :active")
		args["active"] = *filter.Active
	}

	countQuery := "SELECT COUNT(*) FROM subjects WHERE " + strings.Join(where, " AND ")
	rows, err := sqlx.NamedQueryContext(ctx, r.db, countQuery, args)
	if err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan subject count: %w", err)
		}
	}
	rows.Close()

	page, pageSize := normalisePage(filter.Page, filter.PageSize)
	args["limit"] = pageSize
	args["offset"] = (page - 1) * pageSize
	listQuery := `
SELECT id, name, code, type, faculty_id, periods_per_week, lab_name, semester, department, active, created_at, updated_at
FROM subjects WHERE ` + strings.Join(where, " AND ") + `
ORDER BY semester ASC, code ASC LIMIT :limit OFFSET :offset`

	listRows, err := sqlx.NamedQueryContext(ctx, r.db, listQuery, args)
	if err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}
	defer listRows.Close()

	var subjects []models.Subject
	for listRows.Next() {
		var subject models.Subject
		if err := listRows.StructScan(&subject); err != nil {
			return nil, 0, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, total, nil
}

// Delete removes a subject permanently.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("subject rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func normalisePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
