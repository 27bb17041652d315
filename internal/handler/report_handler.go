package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/internal/middleware"
	"github.com/noah-isme/activity-tracker-api/internal/service"
	"github.com/noah-isme/activity-tracker-api/pkg/response"
)

type reportService interface {
	Aggregate(ctx context.Context, req dto.ReportRequest, today time.Time) (*dto.ReportResponse, bool, error)
	Export(ctx context.Context, req dto.ReportRequest, format string, today time.Time) (*service.ReportFile, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	service reportService
	clock   Clock
}

// NewReportHandler constructs handler.
func NewReportHandler(svc reportService, clock Clock) *ReportHandler {
	return &ReportHandler{service: svc, clock: clock}
}

// Get godoc
// @Summary Completion report over a date window
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Inclusive start (YYYY-MM-DD). Defaults to 7 days before end_date"
// @Param end_date query string false "Inclusive end (YYYY-MM-DD). Defaults to today"
// @Param user_id query string false "Restrict to one team member"
// @Param status query string false "Restrict to activities currently in this status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) Get(c *gin.Context) {
	report, cacheHit, err := h.service.Aggregate(c.Request.Context(), reportRequest(c), h.clock.today())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, report, middleware.ResponseMeta(c))
}

// Export godoc
// @Summary Download the report as csv, pdf or xlsx
// @Tags Reports
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string true "csv, pdf or xlsx"
// @Param start_date query string false "Inclusive start (YYYY-MM-DD)"
// @Param end_date query string false "Inclusive end (YYYY-MM-DD)"
// @Param user_id query string false "Restrict to one team member"
// @Param status query string false "Restrict to activities currently in this status"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), reportRequest(c), c.DefaultQuery("format", "csv"), h.clock.today())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func reportRequest(c *gin.Context) dto.ReportRequest {
	req := dto.ReportRequest{
		From:   c.Query("start_date"),
		To:     c.Query("end_date"),
		UserID: c.Query("user_id"),
	}
	if status, ok := c.GetQuery("status"); ok {
		req.Status = &status
	}
	return req
}
