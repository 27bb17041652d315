package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
	"github.com/noah-isme/activity-tracker-api/pkg/response"
)

type masterActivityService interface {
	List(ctx context.Context, req dto.MasterActivityListRequest) ([]models.MasterActivity, error)
	Get(ctx context.Context, id string) (*models.MasterActivity, error)
	Create(ctx context.Context, req dto.CreateMasterActivityRequest, creatorID string, today time.Time) (*models.MasterActivity, error)
	Update(ctx context.Context, id string, req dto.UpdateMasterActivityRequest) (*models.MasterActivity, error)
	Deactivate(ctx context.Context, id string) (*models.MasterActivity, error)
	Activate(ctx context.Context, id string) (*models.MasterActivity, error)
	History(ctx context.Context, id string, limit int) ([]models.MasterActivityUpdate, error)
}

// MasterActivityHandler exposes the master activity catalog.
type MasterActivityHandler struct {
	service masterActivityService
	clock   Clock
}

// NewMasterActivityHandler constructs the handler.
func NewMasterActivityHandler(svc masterActivityService, clock Clock) *MasterActivityHandler {
	return &MasterActivityHandler{service: svc, clock: clock}
}

// List godoc
// @Summary List master activities
// @Tags MasterActivities
// @Produce json
// @Security BearerAuth
// @Param search query string false "Match title or description"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /master-activities [get]
func (h *MasterActivityHandler) List(c *gin.Context) {
	active, err := boolQuery(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.List(c.Request.Context(), dto.MasterActivityListRequest{
		Search: strings.TrimSpace(c.Query("search")),
		Active: active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, map[string]interface{}{"total": len(rows)})
}

// Get godoc
// @Summary Get master activity
// @Tags MasterActivities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Master activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /master-activities/{id} [get]
func (h *MasterActivityHandler) Get(c *gin.Context) {
	master, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, master)
}

// Create godoc
// @Summary Create master activity
// @Description Creates the activity and today's occurrence of it
// @Tags MasterActivities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateMasterActivityRequest true "Master activity"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /master-activities [post]
func (h *MasterActivityHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateMasterActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid master activity payload"))
		return
	}
	master, err := h.service.Create(c.Request.Context(), req, claims.UserID, h.clock.today())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, master)
}

// Update godoc
// @Summary Update master activity
// @Tags MasterActivities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Master activity ID"
// @Param payload body dto.UpdateMasterActivityRequest true "Master activity"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /master-activities/{id} [put]
func (h *MasterActivityHandler) Update(c *gin.Context) {
	var req dto.UpdateMasterActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid master activity payload"))
		return
	}
	master, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, master)
}

// Deactivate godoc
// @Summary Deactivate master activity
// @Tags MasterActivities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Master activity ID"
// @Success 200 {object} response.Envelope
// @Router /master-activities/{id}/deactivate [post]
func (h *MasterActivityHandler) Deactivate(c *gin.Context) {
	master, err := h.service.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, master)
}

// Activate godoc
// @Summary Reactivate master activity
// @Tags MasterActivities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Master activity ID"
// @Success 200 {object} response.Envelope
// @Router /master-activities/{id}/activate [post]
func (h *MasterActivityHandler) Activate(c *gin.Context) {
	master, err := h.service.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, master)
}

// History godoc
// @Summary Update history across all days of a master activity
// @Tags MasterActivities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Master activity ID"
// @Param limit query int false "Maximum entries (default 100)"
// @Success 200 {object} response.Envelope
// @Router /master-activities/{id}/history [get]
func (h *MasterActivityHandler) History(c *gin.Context) {
	rows, err := h.service.History(c.Request.Context(), c.Param("id"), intQuery(c, "limit", 100))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}
