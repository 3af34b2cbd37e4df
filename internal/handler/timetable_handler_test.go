package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/middleware"
	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	generated dto.GenerateTimetableRequest
	activated dto.ActivateTimetableRequest
	activeErr error
}

func (m *timetableServiceMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.generated = req
	return &dto.GenerateTimetableResponse{Type: models.CohortType(req.Type), Department: req.Department}, nil
}

func (m *timetableServiceMock) ListVersions(ctx context.Context, cohort models.CohortType, department string) ([]models.TimetableVersion, error) {
	return []models.TimetableVersion{{Department: department, Type: cohort, Version: 1}}, nil
}

func (m *timetableServiceMock) GetVersion(ctx context.Context, cohort models.CohortType, department string, version int) ([]models.Timetable, error) {
	return []models.Timetable{{Semester: 1, Department: department, Version: version}}, nil
}

func (m *timetableServiceMock) Activate(ctx context.Context, req dto.ActivateTimetableRequest) (*models.ActiveTimetable, error) {
	m.activated = req
	return &models.ActiveTimetable{Type: models.CohortType(req.Type), Department: req.Department, Version: req.Version}, nil
}

func (m *timetableServiceMock) GetActive(ctx context.Context, cohort models.CohortType, department string) (*dto.ActiveTimetableResponse, error) {
	if m.activeErr != nil {
		return nil, m.activeErr
	}
	return &dto.ActiveTimetableResponse{
		Active: models.ActiveTimetable{Type: cohort, Department: department, Version: 2},
	}, nil
}

func (m *timetableServiceMock) Export(ctx context.Context, cohort models.CohortType, department string, version int, format string) ([]byte, string, error) {
	if format == "csv" {
		return []byte("Semester,Day\n"), "text/csv", nil
	}
	return []byte("%PDF-1.4"), "application/pdf", nil
}

func TestTimetableHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{}
	handler := &TimetableHandler{service: mockSvc}

	body := []byte(`{"department":"CSE","type":"odd"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CSE", mockSvc.generated.Department)
	assert.Equal(t, "odd", mockSvc.generated.Type)
}

func TestTimetableHandlerGenerateBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{"department":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerGenerateRequiresAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}
	router := gin.New()
	router.POST("/timetables/generate", middleware.RequireRoles(models.RoleAdmin), handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{"department":"CSE","type":"odd"}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimetableHandlerGenerateForbiddenForViewer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleViewer})
		c.Next()
	})
	router.POST("/timetables/generate", middleware.RequireRoles(models.RoleAdmin), handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{"department":"CSE","type":"odd"}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTimetableHandlerActivate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{}
	handler := &TimetableHandler{service: mockSvc}

	body := []byte(`{"department":"CSE","type":"even","version":3}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/activate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Activate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, mockSvc.activated.Version)
}

func TestTimetableHandlerGetActiveNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{
		activeErr: appErrors.Clone(appErrors.ErrNotFound, "no active timetable for this cohort"),
	}}

	req, _ := http.NewRequest(http.MethodGet, "/timetables/active?type=odd&department=CSE", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.GetActive(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerGetVersionRejectsNonNumeric(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/timetables/versions/latest?type=odd&department=CSE", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "version", Value: "latest"}}

	handler.GetVersion(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerExportSetsDisposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/timetables/export?type=odd&department=CSE&format=csv", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable_CSE_odd.csv")
}
