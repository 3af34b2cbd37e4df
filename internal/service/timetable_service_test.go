package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

func TestTimetableServiceGeneratePersistsPerSemesterVersions(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	fixture := newTimetableFixture(t, timetableFixtureConfig{tx: tx})
	resp, err := fixture.service.Generate(context.Background(), dto.GenerateTimetableRequest{
		Department: "CSE",
		Type:       "odd",
	})
	require.NoError(t, err)
	require.Len(t, resp.Semesters, 4)
	assert.Equal(t, models.CohortOdd, resp.Type)

	persisted := 0
	for _, result := range resp.Semesters {
		if len(result.Entries) > 0 {
			assert.Greater(t, result.Version, 0, "semester %d should carry a stored version", result.Semester)
			persisted++
		} else {
			assert.Zero(t, result.Version)
		}
	}
	assert.Equal(t, 2, persisted, "only the two populated semesters are stored")
	assert.Equal(t, persisted, len(fixture.store.created))
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, fixture.observer.calls, 1)
	assert.Equal(t, "odd", fixture.observer.calls[0].cohort)
	assert.NoError(t, fixture.observer.calls[0].err)
}

func TestTimetableServiceGenerateRejectsUnknownCohort(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})
	_, err := fixture.service.Generate(context.Background(), dto.GenerateTimetableRequest{
		Department: "CSE",
		Type:       "weekend",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateTimeoutPersistsNothing(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	fixture := newTimetableFixture(t, timetableFixtureConfig{
		tx:   tx,
		opts: GeneratorOptions{ExecutionBudget: time.Nanosecond},
	})

	_, err := fixture.service.Generate(context.Background(), dto.GenerateTimetableRequest{
		Department: "CSE",
		Type:       "odd",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGenerationTimeout.Code, appErrors.FromError(err).Code)
	assert.Empty(t, fixture.store.created, "a timed-out run must not reach the store")
	assert.NoError(t, mock.ExpectationsWereMet(), "no transaction should be opened")

	require.Len(t, fixture.observer.calls, 1)
	assert.Error(t, fixture.observer.calls[0].err)
}

func TestTimetableServiceGenerateMissingConfigVoidsSemester(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	fixture := newTimetableFixture(t, timetableFixtureConfig{tx: tx, missingConfigs: map[int]bool{1: true}})
	resp, err := fixture.service.Generate(context.Background(), dto.GenerateTimetableRequest{
		Department: "CSE",
		Type:       "odd",
	})
	require.NoError(t, err)

	bySemester := make(map[int]dto.SemesterResult)
	for _, result := range resp.Semesters {
		bySemester[result.Semester] = result
	}
	assert.NotEmpty(t, bySemester[1].Error, "semester without configuration is skipped")
	assert.Empty(t, bySemester[1].Entries)
	assert.NotEmpty(t, bySemester[3].Entries, "other semesters still generate")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceListVersionsValidation(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})
	_, err := fixture.service.ListVersions(context.Background(), "weekend", "CSE")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = fixture.service.ListVersions(context.Background(), models.CohortOdd, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGetVersionNotFound(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})
	_, err := fixture.service.GetVersion(context.Background(), models.CohortOdd, "CSE", 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceActivateInvalidatesCache(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})
	fixture.store.seed(models.CohortOdd, "CSE", 2)

	active, err := fixture.service.Activate(context.Background(), dto.ActivateTimetableRequest{
		Department: "CSE",
		Type:       "odd",
		Version:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CohortOdd, active.Type)
	assert.Equal(t, 2, active.Version)
	require.NotNil(t, fixture.active.stored)
	assert.Equal(t, 2, fixture.active.stored.Version)
	assert.Contains(t, fixture.cache.deleted, "timetable:active:odd:CSE")
}

func TestTimetableServiceActivateUnknownVersion(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})

	_, err := fixture.service.Activate(context.Background(), dto.ActivateTimetableRequest{
		Department: "CSE",
		Type:       "odd",
		Version:    7,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Nil(t, fixture.active.stored)
}

func TestTimetableServiceGetActiveCachesResponse(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})
	fixture.store.seed(models.CohortOdd, "CSE", 1)
	fixture.active.stored = &models.ActiveTimetable{Type: models.CohortOdd, Department: "CSE", Version: 1, ActivatedAt: time.Now()}

	resp, err := fixture.service.GetActive(context.Background(), models.CohortOdd, "CSE")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Active.Version)
	assert.NotEmpty(t, resp.Timetables)
	assert.Contains(t, fixture.cache.values, "timetable:active:odd:CSE")
	assert.Equal(t, 1, fixture.active.gets)

	// Second read is served from the cache.
	again, err := fixture.service.GetActive(context.Background(), models.CohortOdd, "CSE")
	require.NoError(t, err)
	assert.Equal(t, resp.Active.Version, again.Active.Version)
	assert.Equal(t, 1, fixture.active.gets)
}

func TestTimetableServiceGetActiveNotFound(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})
	_, err := fixture.service.GetActive(context.Background(), models.CohortOdd, "CSE")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceExportCSV(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})
	fixture.store.seed(models.CohortOdd, "CSE", 1)

	payload, contentType, err := fixture.service.Export(context.Background(), models.CohortOdd, "CSE", 1, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(payload), "Mathematics", "subject ids resolve to names")
}

func TestTimetableServiceExportActiveVersionPDF(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})
	fixture.store.seed(models.CohortOdd, "CSE", 3)
	fixture.active.stored = &models.ActiveTimetable{Type: models.CohortOdd, Department: "CSE", Version: 3, ActivatedAt: time.Now()}

	payload, contentType, err := fixture.service.Export(context.Background(), models.CohortOdd, "CSE", 0, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.NotEmpty(t, payload)
}

func TestTimetableServiceExportRejectsUnknownFormat(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})
	fixture.store.seed(models.CohortOdd, "CSE", 1)

	_, _, err := fixture.service.Export(context.Background(), models.CohortOdd, "CSE", 1, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type timetableFixtureConfig struct {
	tx             txProvider
	opts           GeneratorOptions
	missingConfigs map[int]bool
}

type timetableFixture struct {
	service  *TimetableService
	store    *timetableStoreStub
	active   *activeStoreStub
	cache    *cacheStoreStub
	observer *observerStub
}

func newTimetableFixture(t *testing.T, cfg timetableFixtureConfig) *timetableFixture {
	t.Helper()

	subjects := subjectFeederStub{bySemester: map[int][]models.Subject{
		1: {
			{ID: "math", Name: "Mathematics", Code: "MAT101", Type: models.SubjectTypeLecture, FacultyID: "fac-1", PeriodsPerWeek: 4, Semester: 1, Department: "CSE"},
		},
		3: {
			{ID: "dsa", Name: "Data Structures", Code: "CSE201", Type: models.SubjectTypeLecture, FacultyID: "fac-2", PeriodsPerWeek: 4, Semester: 3, Department: "CSE"},
		},
	}}
	configs := configResolverStub{missing: cfg.missingConfigs}
	store := &timetableStoreStub{}
	active := &activeStoreStub{}
	cache := &cacheStoreStub{}
	observer := &observerStub{}
	tx := cfg.tx
	if tx == nil {
		tx = noopTxProvider{}
	}

	service := NewTimetableService(
		subjects,
		configs,
		store,
		active,
		cache,
		tx,
		observer,
		validator.New(),
		zap.NewNop(),
		TimetableServiceConfig{Generator: cfg.opts},
	)
	return &timetableFixture{service: service, store: store, active: active, cache: cache, observer: observer}
}

type subjectFeederStub struct {
	bySemester map[int][]models.Subject
}

func (s subjectFeederStub) ListActiveForSemester(ctx context.Context, semester int, department string) ([]models.Subject, error) {
	return s.bySemester[semester], nil
}

type configResolverStub struct {
	missing map[int]bool
}

func (s configResolverStub) FindForSemester(ctx context.Context, semester int, department string) (*models.ScheduleConfig, error) {
	if s.missing[semester] {
		return nil, sql.ErrNoRows
	}
	cfg := testScheduleConfig()
	cfg.Semester = fmt.Sprintf("%d", semester)
	return cfg, nil
}

type timetableStoreStub struct {
	created []models.Timetable
	stored  map[string][]models.Timetable // cohort|department|version
}

func storeKey(cohort models.CohortType, department string, version int) string {
	return fmt.Sprintf("%s|%s|%d", cohort, department, version)
}

func (s *timetableStoreStub) seed(cohort models.CohortType, department string, version int) {
	if s.stored == nil {
		s.stored = make(map[string][]models.Timetable)
	}
	subjectID := "math"
	room := "Room 101"
	s.stored[storeKey(cohort, department, version)] = []models.Timetable{{
		ID:         "tt-seed",
		Semester:   1,
		Department: department,
		Version:    version,
		Entries: []models.TimetableEntry{
			{Day: "Monday", Start: "09:05", End: "09:55", SubjectID: &subjectID, Type: models.EntryTypeLecture, Room: &room},
		},
	}}
}

func (s *timetableStoreStub) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	timetable.ID = fmt.Sprintf("tt-%d", len(s.created)+1)
	timetable.Version = len(s.created) + 1
	s.created = append(s.created, *timetable)
	return nil
}

func (s *timetableStoreStub) ListVersions(ctx context.Context, cohort models.CohortType, department string) ([]models.TimetableVersion, error) {
	var out []models.TimetableVersion
	for _, items := range s.stored {
		for _, item := range items {
			out = append(out, models.TimetableVersion{Department: item.Department, Type: cohort, Version: item.Version, CreatedAt: item.CreatedAt})
		}
	}
	return out, nil
}

func (s *timetableStoreStub) FindByCohortVersion(ctx context.Context, cohort models.CohortType, department string, version int) ([]models.Timetable, error) {
	items, ok := s.stored[storeKey(cohort, department, version)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return items, nil
}

type activeStoreStub struct {
	stored *models.ActiveTimetable
	gets   int
}

func (s *activeStoreStub) Upsert(ctx context.Context, active *models.ActiveTimetable) error {
	s.stored = active
	return nil
}

func (s *activeStoreStub) Get(ctx context.Context, cohort models.CohortType, department string) (*models.ActiveTimetable, error) {
	s.gets++
	if s.stored == nil {
		return nil, sql.ErrNoRows
	}
	return s.stored, nil
}

type cacheStoreStub struct {
	values  map[string]interface{}
	deleted []string
}

func (s *cacheStoreStub) Get(ctx context.Context, key string, dest interface{}) error {
	value, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if resp, ok := value.(*dto.ActiveTimetableResponse); ok {
		if out, ok := dest.(*dto.ActiveTimetableResponse); ok {
			*out = *resp
			return nil
		}
	}
	return appErrors.ErrCacheMiss
}

func (s *cacheStoreStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.values == nil {
		s.values = make(map[string]interface{})
	}
	if resp, ok := value.(*dto.ActiveTimetableResponse); ok {
		copied := *resp
		s.values[key] = &copied
		return nil
	}
	s.values[key] = value
	return nil
}

func (s *cacheStoreStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	for key := range s.values {
		if key == pattern {
			delete(s.values, key)
		}
	}
	return nil
}

type observerStub struct {
	calls []observedRun
}

type observedRun struct {
	cohort   string
	duration time.Duration
	warnings int
	err      error
}

func (o *observerStub) ObserveGeneration(cohort string, duration time.Duration, warnings int, err error) {
	o.calls = append(o.calls, observedRun{cohort: cohort, duration: duration, warnings: warnings, err: err})
}

type noopTxProvider struct{}

func (noopTxProvider) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider unavailable")
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}
