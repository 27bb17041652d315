package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

// Materialization triggers, used as metric labels.
const (
	TriggerManual    = "manual"
	TriggerScheduler = "scheduler"
	TriggerBoard     = "board"
	TriggerCLI       = "cli"
)

type materializerMasterReader interface {
	ListActiveIDs(ctx context.Context) ([]string, error)
}

type materializerDailyStore interface {
	CountActiveByDate(ctx context.Context, date time.Time) (int, error)
	Materialize(ctx context.Context, date time.Time, masterIDs []string) (int, error)
}

// MaterializerService generates one daily activity per active master for a date.
type MaterializerService struct {
	masters materializerMasterReader
	daily   materializerDailyStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewMaterializerService constructs the service.
func NewMaterializerService(masters materializerMasterReader, daily materializerDailyStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *MaterializerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterializerService{masters: masters, daily: daily, cache: cache, metrics: metrics, logger: logger}
}

// Materialize creates the missing occurrences for date. Running it again for the
// same date creates nothing.
func (s *MaterializerService) Materialize(ctx context.Context, date time.Time, trigger string) (*dto.MaterializeResult, error) {
	date = DateOnly(date)
	ids, err := s.activeIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.materialize(ctx, date, ids, trigger)
}

func (s *MaterializerService) activeIDs(ctx context.Context) ([]string, error) {
	ids, err := s.masters.ListActiveIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active master activities")
	}
	return ids, nil
}

func (s *MaterializerService) materialize(ctx context.Context, date time.Time, ids []string, trigger string) (*dto.MaterializeResult, error) {
	created, err := s.daily.Materialize(ctx, date, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to materialize daily activities")
	}

	s.metrics.AddMaterialized(trigger, created)
	if created > 0 {
		s.cache.InvalidateReports(ctx)
	}
	s.logger.Info("daily activities materialized",
		zap.String("date", date.Format(models.DateLayout)),
		zap.String("trigger", trigger),
		zap.Int("masters", len(ids)),
		zap.Int("created", created),
	)

	return &dto.MaterializeResult{
		Date:     date.Format(models.DateLayout),
		Masters:  len(ids),
		Created:  created,
		Existing: len(ids) - created,
	}, nil
}

// EnsureMaterialized fills in occurrences for date when some active master
// is still missing one, including masters created after the date was first
// materialized.
func (s *MaterializerService) EnsureMaterialized(ctx context.Context, date time.Time) error {
	date = DateOnly(date)
	ids, err := s.activeIDs(ctx)
	if err != nil {
		return err
	}
	count, err := s.daily.CountActiveByDate(ctx, date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count daily activities")
	}
	if count >= len(ids) {
		return nil
	}
	_, err = s.materialize(ctx, date, ids, TriggerBoard)
	return err
}
