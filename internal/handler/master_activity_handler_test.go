package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/internal/models"
)

type fakeMasterService struct {
	listReq   dto.MasterActivityListRequest
	createReq dto.CreateMasterActivityRequest
	creatorID string
	today     time.Time
	limit     int
}

func (f *fakeMasterService) List(ctx context.Context, req dto.MasterActivityListRequest) ([]models.MasterActivity, error) {
	f.listReq = req
	return []models.MasterActivity{{ID: "m-1", Title: "Backup Check", Active: true}}, nil
}

func (f *fakeMasterService) Get(ctx context.Context, id string) (*models.MasterActivity, error) {
	return &models.MasterActivity{ID: id}, nil
}

func (f *fakeMasterService) Create(ctx context.Context, req dto.CreateMasterActivityRequest, creatorID string, today time.Time) (*models.MasterActivity, error) {
	f.createReq, f.creatorID, f.today = req, creatorID, today
	return &models.MasterActivity{ID: "m-1", Title: req.Title, Active: true}, nil
}

func (f *fakeMasterService) Update(ctx context.Context, id string, req dto.UpdateMasterActivityRequest) (*models.MasterActivity, error) {
	return &models.MasterActivity{ID: id, Title: req.Title}, nil
}

func (f *fakeMasterService) Deactivate(ctx context.Context, id string) (*models.MasterActivity, error) {
	return &models.MasterActivity{ID: id, Active: false}, nil
}

func (f *fakeMasterService) Activate(ctx context.Context, id string) (*models.MasterActivity, error) {
	return &models.MasterActivity{ID: id, Active: true}, nil
}

func (f *fakeMasterService) History(ctx context.Context, id string, limit int) ([]models.MasterActivityUpdate, error) {
	f.limit = limit
	return nil, nil
}

func TestMasterActivityHandlerCreate(t *testing.T) {
	svc := &fakeMasterService{}
	handler := NewMasterActivityHandler(svc, fixedClock())

	c, rec := newContext(http.MethodPost, "/master-activities", gin.H{"title": "Backup Check"})
	withUser(c, models.RoleAdmin)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Backup Check", svc.createReq.Title)
	assert.Equal(t, "7a0c3a1e-5a57-4b43-9a4f-3f6d8f0f3c11", svc.creatorID)
	assert.Equal(t, fixedDay, svc.today)
}

func TestMasterActivityHandlerListFilters(t *testing.T) {
	svc := &fakeMasterService{}
	handler := NewMasterActivityHandler(svc, fixedClock())

	c, rec := newContext(http.MethodGet, "/master-activities?search=%20backup%20&active=false", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "backup", svc.listReq.Search)
	require.NotNil(t, svc.listReq.Active)
	assert.False(t, *svc.listReq.Active)
	assert.Equal(t, float64(1), decode(t, rec).Meta["total"])
}

func TestMasterActivityHandlerListRejectsBadActive(t *testing.T) {
	handler := NewMasterActivityHandler(&fakeMasterService{}, fixedClock())

	c, rec := newContext(http.MethodGet, "/master-activities?active=maybe", nil)
	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMasterActivityHandlerHistoryLimit(t *testing.T) {
	svc := &fakeMasterService{}
	handler := NewMasterActivityHandler(svc, fixedClock())

	c, rec := newContext(http.MethodGet, "/master-activities/m-1/history?limit=25", nil)
	c.Params = gin.Params{{Key: "id", Value: "m-1"}}
	handler.History(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, svc.limit)
}
