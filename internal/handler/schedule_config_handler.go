package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/service"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
	"github.com/noah-isme/college-timetable-api/pkg/response"
)

// ScheduleConfigHandler handles schedule configuration endpoints.
type ScheduleConfigHandler struct {
	service *service.ScheduleConfigService
}

// NewScheduleConfigHandler constructs a schedule config handler.
func NewScheduleConfigHandler(svc *service.ScheduleConfigService) *ScheduleConfigHandler {
	return &ScheduleConfigHandler{service: svc}
}

// List godoc
// @Summary List schedule configurations
// @Tags ScheduleConfig
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule-configs [get]
func (h *ScheduleConfigHandler) List(c *gin.Context) {
	configs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, configs, nil)
}

// GetForSemester godoc
// @Summary Get the effective configuration for a semester
// @Tags ScheduleConfig
// @Produce json
// @Param semester path int true "Semester (1-8)"
// @Param department query string false "Department"
// @Success 200 {object} response.Envelope
// @Router /schedule-configs/{semester} [get]
func (h *ScheduleConfigHandler) GetForSemester(c *gin.Context) {
	semester, err := strconv.Atoi(c.Param("semester"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be a number"))
		return
	}
	cfg, err := h.service.GetForSemester(c.Request.Context(), semester, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// Upsert godoc
// @Summary Create or replace a schedule configuration
// @Tags ScheduleConfig
// @Accept json
// @Produce json
// @Param payload body dto.UpsertScheduleConfigRequest true "Configuration payload"
// @Success 200 {object} response.Envelope
// @Router /schedule-configs [put]
func (h *ScheduleConfigHandler) Upsert(c *gin.Context) {
	var req dto.UpsertScheduleConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cfg, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}
