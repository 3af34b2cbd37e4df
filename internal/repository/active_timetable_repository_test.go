package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

func TestActiveTimetableRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewActiveTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO active_timetables")).
		WithArgs(string(models.CohortOdd), "CSE", 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	active := &models.ActiveTimetable{Type: models.CohortOdd, Department: "CSE", Version: 3}
	err := repo.Upsert(context.Background(), active)
	require.NoError(t, err)
	assert.False(t, active.ActivatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveTimetableRepositoryGet(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewActiveTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"type", "department", "version", "activated_at"}).
		AddRow(string(models.CohortEven), "CSE", 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM active_timetables WHERE type = $1 AND department = $2")).
		WithArgs(string(models.CohortEven), "CSE").
		WillReturnRows(rows)

	active, err := repo.Get(context.Background(), models.CohortEven, "CSE")
	require.NoError(t, err)
	assert.Equal(t, models.CohortEven, active.Type)
	assert.Equal(t, 2, active.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveTimetableRepositoryGetNotFound(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewActiveTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM active_timetables WHERE type = $1 AND department = $2")).
		WithArgs(string(models.CohortOdd), "EEE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), models.CohortOdd, "EEE")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
