package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

type scheduleConfigRepository interface {
	FindForSemester(ctx context.Context, semester int, department string) (*models.ScheduleConfig, error)
	Upsert(ctx context.Context, cfg *models.ScheduleConfig) error
	List(ctx context.Context) ([]models.ScheduleConfig, error)
}

// ScheduleConfigService manages per-semester schedule configurations.
type ScheduleConfigService struct {
	repo      scheduleConfigRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleConfigService creates a new schedule config service.
func NewScheduleConfigService(repo scheduleConfigRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleConfigService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleConfigService{repo: repo, validator: validate, logger: logger}
}

// List returns every stored configuration.
func (s *ScheduleConfigService) List(ctx context.Context) ([]models.ScheduleConfig, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule configurations")
	}
	return configs, nil
}

// GetForSemester resolves the effective configuration for a semester.
func (s *ScheduleConfigService) GetForSemester(ctx context.Context, semester int, department string) (*models.ScheduleConfig, error) {
	if semester < 1 || semester > 8 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be between 1 and 8")
	}
	cfg, err := s.repo.FindForSemester(ctx, semester, department)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule configuration for this semester")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule configuration")
	}
	return cfg, nil
}

// Upsert validates and stores a configuration. The dry-run grid expansion
// rejects payloads the generator could not schedule against.
func (s *ScheduleConfigService) Upsert(ctx context.Context, req dto.UpsertScheduleConfigRequest) (*models.ScheduleConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule configuration payload")
	}
	if req.Semester != models.GlobalConfigScope {
		if len(req.Semester) != 1 || req.Semester[0] < '1' || req.Semester[0] > '8' {
			return nil, appErrors.Clone(appErrors.ErrValidation, `semester must be "1".."8" or "global"`)
		}
	}

	breakPayload, err := json.Marshal(req.BreakTimes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode break times")
	}

	department := req.Department
	if req.Semester == models.GlobalConfigScope {
		department = models.GlobalConfigScope
	}

	cfg := &models.ScheduleConfig{
		Semester:        req.Semester,
		Department:      department,
		ClassStartTime:  req.ClassStartTime,
		ClassEndTime:    req.ClassEndTime,
		PeriodDuration:  req.PeriodDuration,
		PeriodsPerDay:   req.PeriodsPerDay,
		LunchStart:      req.LunchStart,
		LunchEnd:        req.LunchEnd,
		BreakTimes:      types.JSONText(breakPayload),
		AssemblyEnabled: req.AssemblyEnabled,
		AssemblyStart:   req.AssemblyStart,
		AssemblyEnd:     req.AssemblyEnd,
		WorkingDays:     pq.StringArray(req.WorkingDays),
		MaxPerDay:       req.MaxPerDay,
	}

	if _, err := buildTimeGrid(cfg); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule configuration")
	}
	return cfg, nil
}
