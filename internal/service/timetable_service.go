package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
	"github.com/noah-isme/college-timetable-api/pkg/export"
)

type subjectFeeder interface {
	ListActiveForSemester(ctx context.Context, semester int, department string) ([]models.Subject, error)
}

type configResolver interface {
	FindForSemester(ctx context.Context, semester int, department string) (*models.ScheduleConfig, error)
}

type timetableStore interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	ListVersions(ctx context.Context, cohort models.CohortType, department string) ([]models.TimetableVersion, error)
	FindByCohortVersion(ctx context.Context, cohort models.CohortType, department string, version int) ([]models.Timetable, error)
}

type activeStore interface {
	Upsert(ctx context.Context, active *models.ActiveTimetable) error
	Get(ctx context.Context, cohort models.CohortType, department string) (*models.ActiveTimetable, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type generationObserver interface {
	ObserveGeneration(cohort string, duration time.Duration, warnings int, err error)
}

// TimetableService orchestrates cohort generation runs and version management.
type TimetableService struct {
	subjects  subjectFeeder
	configs   configResolver
	store     timetableStore
	active    activeStore
	cache     cacheStore
	tx        txProvider
	observer  generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	opts      GeneratorOptions
	cacheTTL  time.Duration
}

// TimetableServiceConfig carries tunables for the service.
type TimetableServiceConfig struct {
	Generator GeneratorOptions
	CacheTTL  time.Duration
}

// NewTimetableService wires the timetable service dependencies.
func NewTimetableService(
	subjects subjectFeeder,
	configs configResolver,
	store timetableStore,
	active activeStore,
	cache cacheStore,
	tx txProvider,
	observer generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &TimetableService{
		subjects:  subjects,
		configs:   configs,
		store:     store,
		active:    active,
		cache:     cache,
		tx:        tx,
		observer:  observer,
		validator: validate,
		logger:    logger,
		opts:      cfg.Generator,
		cacheTTL:  cfg.CacheTTL,
	}
}

// Generate runs the placement engine for every semester of the requested
// cohort and persists the results as new immutable versions in a single
// transaction. A run that exceeds the execution budget persists nothing.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	cohort := models.CohortType(req.Type)

	inputs := make([]semesterInput, 0, 4)
	for _, semester := range cohort.Semesters() {
		subjects, err := s.subjects.ListActiveForSemester(ctx, semester, req.Department)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
		}
		cfg, err := s.configs.FindForSemester(ctx, semester, req.Department)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule configuration")
		}
		inputs = append(inputs, semesterInput{
			Semester:   semester,
			Department: req.Department,
			Subjects:   subjects,
			Config:     cfg,
		})
	}

	started := time.Now()
	run := newGenerationRun(s.opts, s.logger)
	results, warnings, err := run.Run(inputs)
	elapsed := time.Since(started)
	if s.observer != nil {
		s.observer.ObserveGeneration(string(cohort), elapsed, len(warnings), err)
	}
	if err != nil {
		s.logger.Error("generation run aborted",
			zap.String("type", string(cohort)),
			zap.String("department", req.Department),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	if err := s.persistResults(ctx, results); err != nil {
		return nil, err
	}

	s.logger.Info("generation run completed",
		zap.String("type", string(cohort)),
		zap.String("department", req.Department),
		zap.Int("semesters", len(results)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("elapsed", elapsed))

	return &dto.GenerateTimetableResponse{
		Type:       cohort,
		Department: req.Department,
		Semesters:  results,
		Warnings:   warnings,
		ElapsedMS:  elapsed.Milliseconds(),
	}, nil
}

func (s *TimetableService) persistResults(ctx context.Context, results []dto.SemesterResult) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range results {
		result := &results[i]
		if result.Error != "" || len(result.Entries) == 0 {
			continue
		}
		timetable := &models.Timetable{
			Semester:   result.Semester,
			Department: result.Department,
			Entries:    result.Entries,
		}
		if err = s.store.CreateVersioned(ctx, tx, timetable); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
			return err
		}
		result.Version = timetable.Version
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return err
	}
	return nil
}

// ListVersions returns stored versions for a cohort, newest first.
func (s *TimetableService) ListVersions(ctx context.Context, cohort models.CohortType, department string) ([]models.TimetableVersion, error) {
	if !cohort.Valid() || department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be odd or even and department is required")
	}
	versions, err := s.store.ListVersions(ctx, cohort, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable versions")
	}
	return versions, nil
}

// GetVersion loads every semester timetable of a cohort at a version.
func (s *TimetableService) GetVersion(ctx context.Context, cohort models.CohortType, department string, version int) ([]models.Timetable, error) {
	if !cohort.Valid() || department == "" || version < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type, department and a positive version are required")
	}
	timetables, err := s.store.FindByCohortVersion(ctx, cohort, department, version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
	}
	return timetables, nil
}

// Activate points the cohort's active pointer at an existing version.
func (s *TimetableService) Activate(ctx context.Context, req dto.ActivateTimetableRequest) (*models.ActiveTimetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activation payload")
	}
	cohort := models.CohortType(req.Type)

	if _, err := s.store.FindByCohortVersion(ctx, cohort, req.Department, req.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
	}

	active := &models.ActiveTimetable{
		Type:        cohort,
		Department:  req.Department,
		Version:     req.Version,
		ActivatedAt: time.Now().UTC(),
	}
	if err := s.active.Upsert(ctx, active); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate timetable")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, activeCacheKey(cohort, req.Department)); err != nil {
			s.logger.Warn("failed to invalidate active timetable cache", zap.Error(err))
		}
	}
	return active, nil
}

// GetActive resolves the published timetables for a cohort, cached in Redis.
func (s *TimetableService) GetActive(ctx context.Context, cohort models.CohortType, department string) (*dto.ActiveTimetableResponse, error) {
	if !cohort.Valid() || department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be odd or even and department is required")
	}

	key := activeCacheKey(cohort, department)
	if s.cache != nil {
		var cached dto.ActiveTimetableResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("active timetable cache read failed", zap.Error(err))
		}
	}

	active, err := s.active.Get(ctx, cohort, department)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active timetable for this cohort")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active timetable")
	}
	timetables, err := s.store.FindByCohortVersion(ctx, cohort, department, active.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "active timetable version is missing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active timetables")
	}

	resp := &dto.ActiveTimetableResponse{Active: *active, Timetables: timetables}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
			s.logger.Warn("active timetable cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// Export renders a cohort version as PDF or CSV. Version 0 exports the active
// version.
func (s *TimetableService) Export(ctx context.Context, cohort models.CohortType, department string, version int, format string) ([]byte, string, error) {
	var timetables []models.Timetable
	if version == 0 {
		resp, err := s.GetActive(ctx, cohort, department)
		if err != nil {
			return nil, "", err
		}
		timetables = resp.Timetables
		version = resp.Active.Version
	} else {
		loaded, err := s.GetVersion(ctx, cohort, department, version)
		if err != nil {
			return nil, "", err
		}
		timetables = loaded
	}

	dataset, err := s.buildDataset(ctx, timetables)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("%s Timetable v%d (%s semesters)", department, version, cohort)

	switch format {
	case "csv":
		payload, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf", "":
		payload, err := export.NewPDFExporter().Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}
}

func (s *TimetableService) buildDataset(ctx context.Context, timetables []models.Timetable) (export.Dataset, error) {
	names := make(map[string]string)
	for _, t := range timetables {
		subjects, err := s.subjects.ListActiveForSemester(ctx, t.Semester, t.Department)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
		}
		for _, sub := range subjects {
			names[sub.ID] = sub.Name
		}
	}

	dataset := export.Dataset{Headers: []string{"Semester", "Day", "Start", "End", "Subject", "Room", "Type"}}
	for _, t := range timetables {
		for _, entry := range t.Entries {
			label := entry.Label
			if entry.SubjectID != nil {
				if name, ok := names[*entry.SubjectID]; ok {
					label = name
				}
			}
			room := ""
			if entry.Room != nil {
				room = *entry.Room
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Semester": fmt.Sprintf("%d", t.Semester),
				"Day":      entry.Day,
				"Start":    entry.Start,
				"End":      entry.End,
				"Subject":  label,
				"Room":     room,
				"Type":     string(entry.Type),
			})
		}
	}
	return dataset, nil
}

func activeCacheKey(cohort models.CohortType, department string) string {
	return fmt.Sprintf("timetable:active:%s:%s", cohort, department)
}
