package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

type boardDailyStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.DailyActivityRecord, error)
	ApplyMove(ctx context.Context, id string, date time.Time, status models.ActivityStatus, position int) (bool, error)
}

type boardUpdateReader interface {
	ListForDailyActivities(ctx context.Context, dailyActivityIDs []string) ([]models.ActivityUpdate, error)
}

type boardMaterializer interface {
	EnsureMaterialized(ctx context.Context, date time.Time) error
}

// BoardService renders the per-day status board and applies drag-and-drop moves.
type BoardService struct {
	daily        boardDailyStore
	updates      boardUpdateReader
	materializer boardMaterializer
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewBoardService constructs the service.
func NewBoardService(daily boardDailyStore, updates boardUpdateReader, materializer boardMaterializer, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *BoardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardService{daily: daily, updates: updates, materializer: materializer, cache: cache, metrics: metrics, logger: logger}
}

// ListBoard returns the date's daily activities grouped into status columns.
// The date is materialized first when it has no rows yet.
func (s *BoardService) ListBoard(ctx context.Context, date time.Time) (*dto.BoardResponse, error) {
	date = DateOnly(date)
	if err := s.materializer.EnsureMaterialized(ctx, date); err != nil {
		return nil, err
	}

	activities, err := s.daily.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load board")
	}

	ids := make([]string, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ID)
	}
	updates, err := s.updates.ListForDailyActivities(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load board updates")
	}
	projections := Project(activities, updates)

	columns := make(map[models.ActivityStatus][]dto.BoardItem, len(models.ActivityStatuses))
	for _, status := range models.ActivityStatuses {
		columns[status] = []dto.BoardItem{}
	}
	for _, a := range activities {
		p := projections[a.ID]
		status := a.Status
		if !status.Valid() {
			status = models.ActivityStatusPending
		}
		columns[status] = append(columns[status], dto.BoardItem{
			DailyActivityRecord: a,
			LatestUpdate:        p.Latest,
			UpdateCount:         p.UpdateCount,
		})
	}
	for status := range columns {
		items := columns[status]
		sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	}

	return &dto.BoardResponse{Date: date.Format(models.DateLayout), Columns: columns}, nil
}

// Reorder applies a column layout for one date. Each listed id takes its column's
// status and its index as position. Ids that are malformed or do not belong to
// the date are skipped and reported back. Moves are not written to the update log.
func (s *BoardService) Reorder(ctx context.Context, req dto.ReorderRequest, today time.Time) (*dto.ReorderResult, error) {
	date := DateOnly(today)
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := ParseDate(req.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}
	if len(req.Columns) == 0 {
		return nil, appErrors.Validation("invalid reorder payload", map[string]string{"columns": "is required"})
	}

	fields := map[string]string{}
	for key := range req.Columns {
		if !models.ActivityStatus(key).Valid() {
			fields["columns."+key] = "must be one of pending, in_progress, done"
		}
	}
	if len(fields) > 0 {
		return nil, appErrors.Validation("invalid reorder payload", fields)
	}

	result := &dto.ReorderResult{Date: date.Format(models.DateLayout), Skipped: []string{}}
	for _, status := range models.ActivityStatuses {
		ids, ok := req.Columns[string(status)]
		if !ok {
			continue
		}
		for position, id := range ids {
			if !validID(id) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			applied, err := s.daily.ApplyMove(ctx, id, date, status, position)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to move daily activity %s", id))
			}
			if !applied {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			result.Applied++
		}
	}

	if result.Applied > 0 {
		s.cache.InvalidateReports(ctx)
	}
	if len(result.Skipped) > 0 {
		s.metrics.AddReorderSkipped(len(result.Skipped))
		s.logger.Warn("board reorder skipped entries", zap.String("date", result.Date), zap.Strings("ids", result.Skipped))
	}
	return result, nil
}
