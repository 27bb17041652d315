package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/internal/models"
	"github.com/noah-isme/activity-tracker-api/internal/service"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
	"github.com/noah-isme/activity-tracker-api/pkg/response"
)

type dailyActivityService interface {
	RecordUpdate(ctx context.Context, dailyActivityID, userID string, req dto.RecordUpdateRequest) (*models.ActivityUpdate, error)
	Detail(ctx context.Context, id string) (*dto.DailyActivityDetail, error)
	History(ctx context.Context, id string) ([]models.ActivityUpdate, error)
}

type materializer interface {
	Materialize(ctx context.Context, date time.Time, trigger string) (*dto.MaterializeResult, error)
}

// DailyActivityHandler exposes per-day occurrences and their update log.
type DailyActivityHandler struct {
	service      dailyActivityService
	materializer materializer
	clock        Clock
}

// NewDailyActivityHandler constructs the handler.
func NewDailyActivityHandler(svc dailyActivityService, materializer materializer, clock Clock) *DailyActivityHandler {
	return &DailyActivityHandler{service: svc, materializer: materializer, clock: clock}
}

// Materialize godoc
// @Summary Generate daily activities for a date
// @Description Idempotent; existing occurrences are left untouched
// @Tags DailyActivities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MaterializeRequest false "Date (defaults to today)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /daily-activities/materialize [post]
func (h *DailyActivityHandler) Materialize(c *gin.Context) {
	var req dto.MaterializeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err, "invalid materialize payload"))
			return
		}
	}
	date := h.clock.today()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := service.ParseDate(req.Date)
		if err != nil {
			response.Error(c, err)
			return
		}
		date = parsed
	}
	res, err := h.materializer.Materialize(c.Request.Context(), date, service.TriggerManual)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Get godoc
// @Summary Daily activity with its update history
// @Tags DailyActivities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Daily activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /daily-activities/{id} [get]
func (h *DailyActivityHandler) Get(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// ListUpdates godoc
// @Summary Update log for a daily activity
// @Tags DailyActivities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Daily activity ID"
// @Success 200 {object} response.Envelope
// @Router /daily-activities/{id}/updates [get]
func (h *DailyActivityHandler) ListUpdates(c *gin.Context) {
	updates, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updates, map[string]interface{}{"total": len(updates)})
}

// RecordUpdate godoc
// @Summary Record a status update
// @Tags DailyActivities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Daily activity ID"
// @Param payload body dto.RecordUpdateRequest true "Status and remark"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /daily-activities/{id}/updates [post]
func (h *DailyActivityHandler) RecordUpdate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RecordUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid activity update payload"))
		return
	}
	update, err := h.service.RecordUpdate(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, update)
}
