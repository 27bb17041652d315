package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMaterializeIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	store.addMaster("Backup Check", true)
	store.addMaster("SMS Count Comparison", true)
	store.addMaster("Retired", false)
	svc := NewMaterializerService(store, store, nil, NewMetricsService(), zap.NewNop())

	first, err := svc.Materialize(context.Background(), jan1, TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", first.Date)
	assert.Equal(t, 2, first.Masters)
	assert.Equal(t, 2, first.Created)
	assert.Zero(t, first.Existing)

	before, _ := store.ListByDate(context.Background(), jan1)

	second, err := svc.Materialize(context.Background(), jan1, TriggerManual)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 2, second.Existing)

	after, _ := store.ListByDate(context.Background(), jan1)
	require.Len(t, after, 2)
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Position, after[i].Position)
	}
	assert.Equal(t, "Backup Check", after[0].Title)
	assert.Equal(t, 0, after[0].Position)
	assert.Equal(t, 1, after[1].Position)
	assert.Equal(t, models.ActivityStatusPending, after[1].Status)
}

func TestMaterializeNormalizesToCalendarDate(t *testing.T) {
	store := newMemoryStore()
	store.addMaster("Backup Check", true)
	svc := NewMaterializerService(store, store, nil, nil, nil)

	jakarta := time.FixedZone("WIB", 7*3600)
	res, err := svc.Materialize(context.Background(), time.Date(2024, 1, 2, 0, 30, 0, 0, jakarta), TriggerScheduler)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", res.Date)
}

func TestEnsureMaterializedSkipsPopulatedDate(t *testing.T) {
	store := newMemoryStore()
	store.addMaster("Backup Check", true)
	svc := NewMaterializerService(store, store, nil, nil, nil)

	require.NoError(t, svc.EnsureMaterialized(context.Background(), jan1))
	require.NoError(t, svc.EnsureMaterialized(context.Background(), jan1))
	assert.Equal(t, 1, store.materializeCalls)
}

func TestEnsureMaterializedAddsMastersCreatedLater(t *testing.T) {
	store := newMemoryStore()
	store.addMaster("Backup Check", true)
	svc := NewMaterializerService(store, store, nil, nil, nil)
	require.NoError(t, svc.EnsureMaterialized(context.Background(), jan1))

	store.addMaster("Alerts Review", true)
	require.NoError(t, svc.EnsureMaterialized(context.Background(), jan1))
	assert.Equal(t, 2, store.materializeCalls)

	rows, err := store.ListByDate(context.Background(), jan1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alerts Review", rows[1].Title)
}

func TestEnsureMaterializedIgnoresDeactivatedMasters(t *testing.T) {
	store := newMemoryStore()
	store.addMaster("Backup Check", true)
	retired := store.addMaster("Legacy Check", true)
	svc := NewMaterializerService(store, store, nil, nil, nil)
	require.NoError(t, svc.EnsureMaterialized(context.Background(), jan1))

	store.masters[1].Active = false
	require.Equal(t, retired.ID, store.masters[1].ID)
	require.NoError(t, svc.EnsureMaterialized(context.Background(), jan1))
	assert.Equal(t, 1, store.materializeCalls)
}

func TestMaterializeInvalidatesReportsOnlyWhenCreating(t *testing.T) {
	store := newMemoryStore()
	store.addMaster("Backup Check", true)
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewMaterializerService(store, store, cache, nil, nil)

	_, err := svc.Materialize(context.Background(), jan1, TriggerManual)
	require.NoError(t, err)
	_, err = svc.Materialize(context.Background(), jan1, TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, []string{"reports:*"}, cacheRepo.deleted)
}

type failingMasterReader struct{}

func (failingMasterReader) ListActiveIDs(ctx context.Context) ([]string, error) {
	return nil, errors.New("connection reset")
}

func TestMaterializeWrapsRepositoryErrors(t *testing.T) {
	svc := NewMaterializerService(failingMasterReader{}, newMemoryStore(), nil, nil, nil)

	_, err := svc.Materialize(context.Background(), jan1, TriggerManual)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}
