package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

type masterActivityRepository interface {
	List(ctx context.Context, filter models.MasterActivityFilter) ([]models.MasterActivity, error)
	FindByID(ctx context.Context, id string) (*models.MasterActivity, error)
	Create(ctx context.Context, master *models.MasterActivity, date time.Time) error
	Update(ctx context.Context, id, title string, description *string) error
	SetActive(ctx context.Context, id string, active bool) error
}

type masterHistoryReader interface {
	ListByMaster(ctx context.Context, masterID string, limit int) ([]models.MasterActivityUpdate, error)
}

// MasterActivityService manages the master activity catalog.
type MasterActivityService struct {
	repo      masterActivityRepository
	history   masterHistoryReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMasterActivityService constructs the service.
func NewMasterActivityService(repo masterActivityRepository, history masterHistoryReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MasterActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterActivityService{repo: repo, history: history, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns master activities filtered by search term and active flag.
func (s *MasterActivityService) List(ctx context.Context, req dto.MasterActivityListRequest) ([]models.MasterActivity, error) {
	rows, err := s.repo.List(ctx, models.MasterActivityFilter{Search: req.Search, Active: req.Active})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list master activities")
	}
	if rows == nil {
		rows = []models.MasterActivity{}
	}
	return rows, nil
}

// Get returns a master activity by id.
func (s *MasterActivityService) Get(ctx context.Context, id string) (*models.MasterActivity, error) {
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "master activity not found")
	}
	master, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "master activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load master activity")
	}
	return master, nil
}

// Create stores a new master activity and its occurrence for today.
func (s *MasterActivityService) Create(ctx context.Context, req dto.CreateMasterActivityRequest, creatorID string, today time.Time) (*models.MasterActivity, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid master activity payload")
	}

	master := &models.MasterActivity{Title: req.Title, Description: normalizeOptional(req.Description)}
	if creatorID != "" {
		master.CreatedBy = &creatorID
	}
	if err := s.repo.Create(ctx, master, DateOnly(today)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create master activity")
	}
	s.cache.InvalidateReports(ctx)
	s.logger.Info("master activity created", zap.String("master_activity_id", master.ID), zap.String("created_by", creatorID))

	return s.Get(ctx, master.ID)
}

// Update replaces a master activity's title and description.
func (s *MasterActivityService) Update(ctx context.Context, id string, req dto.UpdateMasterActivityRequest) (*models.MasterActivity, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid master activity payload")
	}
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "master activity not found")
	}
	if err := s.repo.Update(ctx, id, req.Title, normalizeOptional(req.Description)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "master activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update master activity")
	}
	s.cache.InvalidateReports(ctx)
	return s.Get(ctx, id)
}

// Deactivate stops future materialization; existing daily activities are kept.
func (s *MasterActivityService) Deactivate(ctx context.Context, id string) (*models.MasterActivity, error) {
	return s.setActive(ctx, id, false)
}

// Activate re-enables a deactivated master activity.
func (s *MasterActivityService) Activate(ctx context.Context, id string) (*models.MasterActivity, error) {
	return s.setActive(ctx, id, true)
}

func (s *MasterActivityService) setActive(ctx context.Context, id string, active bool) (*models.MasterActivity, error) {
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "master activity not found")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "master activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change master activity state")
	}
	s.logger.Info("master activity state changed", zap.String("master_activity_id", id), zap.Bool("active", active))
	return s.Get(ctx, id)
}

// History lists updates recorded across every occurrence of a master activity.
func (s *MasterActivityService) History(ctx context.Context, id string, limit int) ([]models.MasterActivityUpdate, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.history.ListByMaster(ctx, id, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load master activity history")
	}
	if rows == nil {
		rows = []models.MasterActivityUpdate{}
	}
	return rows, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
