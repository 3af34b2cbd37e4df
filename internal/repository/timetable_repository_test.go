package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE semester = $1 AND department = $2")).
		WithArgs(3, "CSE").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(4))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WithArgs(sqlmock.AnyArg(), 3, "CSE", 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Monday", "09:05", "09:55", "math", string(models.EntryTypeLecture), "Room 101", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	subjectID := "math"
	room := "Room 101"
	payload := &models.Timetable{
		Semester:   3,
		Department: "CSE",
		Entries: []models.TimetableEntry{
			{Day: "Monday", Start: "09:05", End: "09:55", SubjectID: &subjectID, Type: models.EntryTypeLecture, Room: &room},
		},
	}
	err := repo.CreateVersioned(context.Background(), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, 4, payload.Version)
	assert.NotEmpty(t, payload.ID)
	assert.Equal(t, payload.ID, payload.Entries[0].TimetableID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreateVersionedRejectsIncomplete(t *testing.T) {
	db, _, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	err := repo.CreateVersioned(context.Background(), nil, &models.Timetable{Department: "CSE"})
	assert.Error(t, err)

	err = repo.CreateVersioned(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestTimetableRepositoryListVersions(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"department", "version", "created_at"}).
		AddRow("CSE", 2, time.Now()).
		AddRow("CSE", 1, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("semester % 2 = $1 AND department = $2")).
		WithArgs(1, "CSE").
		WillReturnRows(rows)

	versions, err := repo.ListVersions(context.Background(), models.CohortOdd, "CSE")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, models.CohortOdd, versions[0].Type)
	assert.Equal(t, 2, versions[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListVersionsEvenParity(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("semester % 2 = $1 AND department = $2")).
		WithArgs(0, "CSE").
		WillReturnRows(sqlmock.NewRows([]string{"department", "version", "created_at"}))

	versions, err := repo.ListVersions(context.Background(), models.CohortEven, "CSE")
	require.NoError(t, err)
	assert.Empty(t, versions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByCohortVersion(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	timetables := sqlmock.NewRows([]string{"id", "semester", "department", "version", "created_at"}).
		AddRow("tt-1", 1, "CSE", 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("semester % 2 = $1 AND department = $2 AND version = $3")).
		WithArgs(1, "CSE", 2).
		WillReturnRows(timetables)

	entries := sqlmock.NewRows([]string{"id", "timetable_id", "day", "start_time", "end_time", "subject_id", "type", "room", "label"}).
		AddRow("e-1", "tt-1", "Monday", "09:05", "09:55", "math", string(models.EntryTypeLecture), "Room 101", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries WHERE timetable_id = $1")).
		WithArgs("tt-1").
		WillReturnRows(entries)

	result, err := repo.FindByCohortVersion(context.Background(), models.CohortOdd, "CSE", 2)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Len(t, result[0].Entries, 1)
	assert.Equal(t, "Monday", result[0].Entries[0].Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByCohortVersionNotFound(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("semester % 2 = $1 AND department = $2 AND version = $3")).
		WithArgs(1, "CSE", 9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "semester", "department", "version", "created_at"}))

	_, err := repo.FindByCohortVersion(context.Background(), models.CohortOdd, "CSE", 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
