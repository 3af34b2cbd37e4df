package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

const testFacultyID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

func validCreateSubjectRequest() dto.CreateSubjectRequest {
	return dto.CreateSubjectRequest{
		Name:           "Mathematics",
		Code:           "mat101",
		Type:           "Lecture",
		FacultyID:      testFacultyID,
		PeriodsPerWeek: 4,
		Semester:       1,
		Department:     "CSE",
	}
}

func TestSubjectServiceCreateNormalisesCode(t *testing.T) {
	repo := &subjectRepoStub{}
	staff := &staffReaderStub{active: true}
	service := NewSubjectService(repo, staff, validator.New(), zap.NewNop())

	subject, err := service.Create(context.Background(), validCreateSubjectRequest())
	require.NoError(t, err)
	assert.Equal(t, "MAT101", subject.Code)
	assert.True(t, subject.Active)
	assert.Nil(t, subject.LabName)
}

func TestSubjectServiceCreateLabRequiresLabName(t *testing.T) {
	service := NewSubjectService(&subjectRepoStub{}, &staffReaderStub{active: true}, validator.New(), zap.NewNop())

	req := validCreateSubjectRequest()
	req.Type = "Lab"
	req.LabName = ""

	_, err := service.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceCreateUnknownFaculty(t *testing.T) {
	service := NewSubjectService(&subjectRepoStub{}, &staffReaderStub{missing: true}, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), validCreateSubjectRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceCreateInactiveFaculty(t *testing.T) {
	service := NewSubjectService(&subjectRepoStub{}, &staffReaderStub{active: false}, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), validCreateSubjectRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceUpdateClearsLabName(t *testing.T) {
	labName := "Physics Lab"
	repo := &subjectRepoStub{existing: &models.Subject{ID: "sub-1", Name: "Physics", LabName: &labName}}
	service := NewSubjectService(repo, &staffReaderStub{active: true}, validator.New(), zap.NewNop())

	empty := ""
	updated, err := service.Update(context.Background(), "sub-1", dto.UpdateSubjectRequest{LabName: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.LabName)
}

func TestSubjectServiceGetNotFound(t *testing.T) {
	service := NewSubjectService(&subjectRepoStub{}, &staffReaderStub{active: true}, validator.New(), zap.NewNop())

	_, err := service.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceListPaginationDefaults(t *testing.T) {
	repo := &subjectRepoStub{total: 42}
	service := NewSubjectService(repo, &staffReaderStub{active: true}, validator.New(), zap.NewNop())

	_, pagination, err := service.List(context.Background(), models.SubjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 42, pagination.TotalCount)
}

// --- Fixtures ---

type subjectRepoStub struct {
	existing *models.Subject
	created  *models.Subject
	total    int
}

func (s *subjectRepoStub) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	return nil, s.total, nil
}

func (s *subjectRepoStub) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s.existing == nil || s.existing.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.existing
	return &copied, nil
}

func (s *subjectRepoStub) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = "sub-new"
	s.created = subject
	return nil
}

func (s *subjectRepoStub) Update(ctx context.Context, subject *models.Subject) error {
	s.existing = subject
	return nil
}

func (s *subjectRepoStub) Delete(ctx context.Context, id string) error {
	if s.existing == nil || s.existing.ID != id {
		return sql.ErrNoRows
	}
	s.existing = nil
	return nil
}

type staffReaderStub struct {
	active  bool
	missing bool
}

func (s *staffReaderStub) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	if s.missing {
		return nil, sql.ErrNoRows
	}
	return &models.Staff{ID: id, Name: "Dr. Rao", Active: s.active}, nil
}
