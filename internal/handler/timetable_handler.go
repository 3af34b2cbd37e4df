package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	"github.com/noah-isme/college-timetable-api/internal/service"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
	"github.com/noah-isme/college-timetable-api/pkg/response"
)

type timetableOrchestrator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	ListVersions(ctx context.Context, cohort models.CohortType, department string) ([]models.TimetableVersion, error)
	GetVersion(ctx context.Context, cohort models.CohortType, department string, version int) ([]models.Timetable, error)
	Activate(ctx context.Context, req dto.ActivateTimetableRequest) (*models.ActiveTimetable, error)
	GetActive(ctx context.Context, cohort models.CohortType, department string) (*dto.ActiveTimetableResponse, error)
	Export(ctx context.Context, cohort models.CohortType, department string, version int, format string) ([]byte, string, error)
}

// TimetableHandler handles generation and version endpoints.
type TimetableHandler struct {
	service timetableOrchestrator
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate timetables for a cohort
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListVersions godoc
// @Summary List stored timetable versions for a cohort
// @Tags Timetables
// @Produce json
// @Param type query string true "Cohort type (odd or even)"
// @Param department query string true "Department"
// @Success 200 {object} response.Envelope
// @Router /timetables/versions [get]
func (h *TimetableHandler) ListVersions(c *gin.Context) {
	cohort := models.CohortType(c.Query("type"))
	versions, err := h.service.ListVersions(c.Request.Context(), cohort, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// GetVersion godoc
// @Summary Get all semester timetables of a cohort at a version
// @Tags Timetables
// @Produce json
// @Param version path int true "Version number"
// @Param type query string true "Cohort type (odd or even)"
// @Param department query string true "Department"
// @Success 200 {object} response.Envelope
// @Router /timetables/versions/{version} [get]
func (h *TimetableHandler) GetVersion(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "version must be a number"))
		return
	}
	cohort := models.CohortType(c.Query("type"))
	timetables, err := h.service.GetVersion(c.Request.Context(), cohort, c.Query("department"), version)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetables, nil)
}

// Activate godoc
// @Summary Activate a timetable version for a cohort
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.ActivateTimetableRequest true "Activation payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/activate [post]
func (h *TimetableHandler) Activate(c *gin.Context) {
	var req dto.ActivateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	active, err := h.service.Activate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, active, nil)
}

// GetActive godoc
// @Summary Get the active timetables for a cohort
// @Tags Timetables
// @Produce json
// @Param type query string true "Cohort type (odd or even)"
// @Param department query string true "Department"
// @Success 200 {object} response.Envelope
// @Router /timetables/active [get]
func (h *TimetableHandler) GetActive(c *gin.Context) {
	cohort := models.CohortType(c.Query("type"))
	active, err := h.service.GetActive(c.Request.Context(), cohort, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, active, nil)
}

// Export godoc
// @Summary Export a timetable version as PDF or CSV
// @Tags Timetables
// @Produce application/pdf,text/csv
// @Param type query string true "Cohort type (odd or even)"
// @Param department query string true "Department"
// @Param version query int false "Version (defaults to active)"
// @Param format query string false "pdf or csv (default pdf)"
// @Success 200 {file} binary
// @Router /timetables/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	cohort := models.CohortType(c.Query("type"))
	department := c.Query("department")
	version := 0
	if raw := c.Query("version"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "version must be a number"))
			return
		}
		version = parsed
	}
	format := c.DefaultQuery("format", "pdf")

	payload, contentType, err := h.service.Export(c.Request.Context(), cohort, department, version, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	ext := "pdf"
	if format == "csv" {
		ext = "csv"
	}
	filename := fmt.Sprintf("timetable_%s_%s.%s", department, cohort, ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
