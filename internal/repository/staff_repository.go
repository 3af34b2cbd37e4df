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

// StaffRepository persists faculty records.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs the repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts a staff record.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	const query = `
INSERT INTO staff (id, name, email, phone, designation, department, active, created_at, updated_at)
VALUES (:id, :name, :email, :phone, :designation, :department, :active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, staff); err != nil {
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

// Update applies the full staff record by ID.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE staff
SET name = :name, phone = :phone, designation = :designation,
    department = :department, active = :active, updated_at = :updated_at
WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, staff)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("staff rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID loads a staff member.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	const query = `
SELECT id, name, email, phone, designation, department, active, created_at, updated_at
FROM staff WHERE id = $1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// List returns staff matching the filter with pagination.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	where := []string{"1=1"}
	args := map[string]interface{}{}
	if filter.Department != "" {
		where = append(where, "department = :department")
		args["department"] = filter.Department
	}
	if filter.Active != nil {
		where = append(where, "active = :active")
		args["active"] = *filter.Active
	}
	if filter.Search != "" {
		where = append(where, "(name ILIKE :search OR email ILIKE :search)")
		args["search"] = "%" + filter.Search + "%"
	}

	countQuery := "SELECT COUNT(*) FROM staff WHERE " + strings.Join(where, " AND ")
	rows, err := sqlx.NamedQueryContext(ctx, r.db, countQuery, args)
	if err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}
	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan staff count: %w", err)
		}
	}
	rows.Close()

	page, pageSize := normalisePage(filter.Page, filter.PageSize)
	args["limit"] = pageSize
	args["offset"] = (page - 1) * pageSize
	listQuery := `
SELECT id, name, email, phone, designation, department, active, created_at, updated_at
FROM staff WHERE ` + strings.Join(where, " AND ") + `
ORDER BY name ASC LIMIT :limit OFFSET :offset`

	listRows, err := sqlx.NamedQueryContext(ctx, r.db, listQuery, args)
	if err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}
	defer listRows.Close()

	var staff []models.Staff
	for listRows.Next() {
		var member models.Staff
		if err := listRows.StructScan(&member); err != nil {
			return nil, 0, fmt.Errorf("scan staff: %w", err)
		}
		staff = append(staff, member)
	}
	return staff, total, nil
}

// Delete removes a staff record.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("staff rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
