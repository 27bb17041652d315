package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-tracker-api/internal/models"
)

func strPtr(v string) *string { return &v }

func TestProjectLatestByCreatedAtThenID(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	activities := []models.DailyActivityRecord{
		{DailyActivity: models.DailyActivity{ID: "da-1", Remark: strPtr("seeded")}},
		{DailyActivity: models.DailyActivity{ID: "da-2", Remark: strPtr("kept")}},
	}
	updates := []models.ActivityUpdate{
		{ID: "u-1", DailyActivityID: "da-1", Status: models.ActivityStatusInProgress, Remark: strPtr("started"), CreatedAt: base},
		{ID: "u-3", DailyActivityID: "da-1", Status: models.ActivityStatusDone, Remark: strPtr("verified"), CreatedAt: base.Add(time.Minute)},
		{ID: "u-2", DailyActivityID: "da-1", Status: models.ActivityStatusPending, CreatedAt: base.Add(time.Minute)},
	}

	projections := Project(activities, updates)

	first := projections["da-1"]
	require.NotNil(t, first.Latest)
	assert.Equal(t, "u-3", first.Latest.ID)
	assert.Equal(t, models.ActivityStatusDone, first.Status)
	assert.Equal(t, "verified", *first.Remark)
	assert.Equal(t, 3, first.UpdateCount)

	second := projections["da-2"]
	assert.Nil(t, second.Latest)
	assert.Equal(t, models.ActivityStatusPending, second.Status)
	assert.Equal(t, "kept", *second.Remark)
	assert.Zero(t, second.UpdateCount)
}

func TestLatestUpdatesIgnoresInputOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	a := models.ActivityUpdate{ID: "a", DailyActivityID: "da", CreatedAt: base}
	b := models.ActivityUpdate{ID: "b", DailyActivityID: "da", CreatedAt: base.Add(time.Second)}

	assert.Equal(t, "b", LatestUpdates([]models.ActivityUpdate{a, b})["da"].ID)
	assert.Equal(t, "b", LatestUpdates([]models.ActivityUpdate{b, a})["da"].ID)
}

func TestProjectKeepsStoredRemarkWhenLatestHasNone(t *testing.T) {
	activities := []models.DailyActivityRecord{{DailyActivity: models.DailyActivity{ID: "da", Remark: strPtr("earlier note")}}}
	updates := []models.ActivityUpdate{{ID: "u", DailyActivityID: "da", Status: models.ActivityStatusInProgress, CreatedAt: time.Now()}}

	p := Project(activities, updates)["da"]
	assert.Equal(t, models.ActivityStatusInProgress, p.Status)
	assert.Equal(t, "earlier note", *p.Remark)
}
