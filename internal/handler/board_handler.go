package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/pkg/response"
)

type boardService interface {
	ListBoard(ctx context.Context, date time.Time) (*dto.BoardResponse, error)
	Reorder(ctx context.Context, req dto.ReorderRequest, today time.Time) (*dto.ReorderResult, error)
}

// BoardHandler serves the status board.
type BoardHandler struct {
	service boardService
	clock   Clock
}

// NewBoardHandler constructs the handler.
func NewBoardHandler(svc boardService, clock Clock) *BoardHandler {
	return &BoardHandler{service: svc, clock: clock}
}

// Get godoc
// @Summary Status board for a date
// @Description Materializes the date on first read
// @Tags Board
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /board [get]
func (h *BoardHandler) Get(c *gin.Context) {
	date, err := dateParam(c, "date", h.clock)
	if err != nil {
		response.Error(c, err)
		return
	}
	board, err := h.service.ListBoard(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board)
}

// Reorder godoc
// @Summary Apply a drag-and-drop layout
// @Description Ids not on the date are skipped and listed in the response
// @Tags Board
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ReorderRequest true "Column layout"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /board/reorder [put]
func (h *BoardHandler) Reorder(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid reorder payload"))
		return
	}
	ack, err := h.service.Reorder(c.Request.Context(), req, h.clock.today())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ack)
}
