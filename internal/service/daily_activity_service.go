package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

type dailyActivityReader interface {
	FindByID(ctx context.Context, id string) (*models.DailyActivityRecord, error)
}

type activityUpdateLog interface {
	Append(ctx context.Context, update *models.ActivityUpdate) (*models.ActivityUpdate, error)
	ListByDailyActivity(ctx context.Context, dailyActivityID string) ([]models.ActivityUpdate, error)
}

// DailyActivityService records status updates against daily activities and exposes their history.
type DailyActivityService struct {
	daily     dailyActivityReader
	updates   activityUpdateLog
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDailyActivityService constructs the service.
func NewDailyActivityService(daily dailyActivityReader, updates activityUpdateLog, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *DailyActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyActivityService{daily: daily, updates: updates, cache: cache, metrics: metrics, validator: ensureValidator(validate), logger: logger}
}

// RecordUpdate appends an immutable update and refreshes the activity's current status.
func (s *DailyActivityService) RecordUpdate(ctx context.Context, dailyActivityID, userID string, req dto.RecordUpdateRequest) (*models.ActivityUpdate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid activity update payload")
	}
	if !validID(dailyActivityID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "daily activity not found")
	}

	stored, err := s.updates.Append(ctx, &models.ActivityUpdate{
		DailyActivityID: dailyActivityID,
		UserID:          userID,
		Status:          models.ActivityStatus(req.Status),
		Remark:          normalizeOptional(req.Remark),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "daily activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record activity update")
	}

	s.metrics.IncUpdateRecorded(string(stored.Status))
	s.cache.InvalidateReports(ctx)
	s.logger.Info("activity update recorded",
		zap.String("daily_activity_id", dailyActivityID),
		zap.String("user_id", userID),
		zap.String("status", string(stored.Status)),
	)
	return stored, nil
}

// Detail returns one daily activity with its full update history.
func (s *DailyActivityService) Detail(ctx context.Context, id string) (*dto.DailyActivityDetail, error) {
	activity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	updates, err := s.listUpdates(ctx, id)
	if err != nil {
		return nil, err
	}

	projection := Project([]models.DailyActivityRecord{*activity}, updates)[activity.ID]
	return &dto.DailyActivityDetail{
		Activity:     *activity,
		LatestUpdate: projection.Latest,
		Updates:      updates,
	}, nil
}

// History lists a daily activity's updates, newest first.
func (s *DailyActivityService) History(ctx context.Context, id string) ([]models.ActivityUpdate, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	return s.listUpdates(ctx, id)
}

func (s *DailyActivityService) find(ctx context.Context, id string) (*models.DailyActivityRecord, error) {
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "daily activity not found")
	}
	activity, err := s.daily.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "daily activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load daily activity")
	}
	return activity, nil
}

func (s *DailyActivityService) listUpdates(ctx context.Context, id string) ([]models.ActivityUpdate, error) {
	updates, err := s.updates.ListByDailyActivity(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity updates")
	}
	if updates == nil {
		updates = []models.ActivityUpdate{}
	}
	return updates, nil
}
