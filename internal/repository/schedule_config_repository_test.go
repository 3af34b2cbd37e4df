package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

func scheduleConfigRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "semester", "department", "class_start_time", "class_end_time", "period_duration",
		"periods_per_day", "lunch_start", "lunch_end", "break_times", "assembly_enabled",
		"assembly_start", "assembly_end", "working_days", "max_per_day_per_subject", "created_at", "updated_at",
	})
}

func TestScheduleConfigRepositoryFindForSemester(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewScheduleConfigRepository(db)

	rows := scheduleConfigRows().AddRow(
		"cfg-1", "3", "CSE", "09:05", "16:15", 50,
		6, "12:25", "13:15", types.JSONText(`[]`), false,
		"", "", pq.StringArray{"Monday"}, 2, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_configs WHERE semester = $1 AND department = $2")).
		WithArgs("3", "CSE").
		WillReturnRows(rows)

	cfg, err := repo.FindForSemester(context.Background(), 3, "CSE")
	require.NoError(t, err)
	assert.Equal(t, "3", cfg.Semester)
	assert.Equal(t, 50, cfg.PeriodDuration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleConfigRepositoryFindForSemesterFallsBackToGlobal(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewScheduleConfigRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_configs WHERE semester = $1 AND department = $2")).
		WithArgs("5", "CSE").
		WillReturnError(sql.ErrNoRows)

	rows := scheduleConfigRows().AddRow(
		"cfg-global", models.GlobalConfigScope, models.GlobalConfigScope, "09:05", "16:15", 50,
		6, "12:25", "13:15", types.JSONText(`[]`), false,
		"", "", pq.StringArray{"Monday"}, 0, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_configs WHERE semester = $1 AND department = $2")).
		WithArgs(models.GlobalConfigScope, models.GlobalConfigScope).
		WillReturnRows(rows)

	cfg, err := repo.FindForSemester(context.Background(), 5, "CSE")
	require.NoError(t, err)
	assert.Equal(t, models.GlobalConfigScope, cfg.Semester)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleConfigRepositoryFindForSemesterNoConfig(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewScheduleConfigRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_configs WHERE semester = $1 AND department = $2")).
		WithArgs("7", "CSE").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_configs WHERE semester = $1 AND department = $2")).
		WithArgs(models.GlobalConfigScope, models.GlobalConfigScope).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindForSemester(context.Background(), 7, "CSE")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleConfigRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewScheduleConfigRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_configs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	cfg := &models.ScheduleConfig{
		Semester:       "1",
		Department:     "CSE",
		ClassStartTime: "09:05",
		ClassEndTime:   "16:15",
		PeriodDuration: 50,
		PeriodsPerDay:  6,
		LunchStart:     "12:25",
		LunchEnd:       "13:15",
		BreakTimes:     types.JSONText(`[]`),
		WorkingDays:    pq.StringArray{"Monday", "Tuesday"},
	}
	err := repo.Upsert(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ID)
	assert.False(t, cfg.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
