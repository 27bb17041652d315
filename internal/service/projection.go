package service

import "github.com/noah-isme/activity-tracker-api/internal/models"

// Projection is the derived current state of one daily activity.
type Projection struct {
	Status      models.ActivityStatus
	Remark      *string
	Latest      *models.ActivityUpdate
	UpdateCount int
}

// newerThan orders updates by created_at, breaking ties on id.
func newerThan(a, b models.ActivityUpdate) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// LatestUpdates picks the newest update per daily activity regardless of input order.
func LatestUpdates(updates []models.ActivityUpdate) map[string]models.ActivityUpdate {
	latest := make(map[string]models.ActivityUpdate, len(updates))
	for _, u := range updates {
		current, ok := latest[u.DailyActivityID]
		if !ok || newerThan(u, current) {
			latest[u.DailyActivityID] = u
		}
	}
	return latest
}

// Project derives status and remark for each activity from its log. Activities
// without updates are pending and keep their stored remark.
func Project(activities []models.DailyActivityRecord, updates []models.ActivityUpdate) map[string]Projection {
	latest := LatestUpdates(updates)
	counts := make(map[string]int, len(activities))
	for _, u := range updates {
		counts[u.DailyActivityID]++
	}

	result := make(map[string]Projection, len(activities))
	for _, a := range activities {
		p := Projection{Status: models.ActivityStatusPending, Remark: a.Remark, UpdateCount: counts[a.ID]}
		if u, ok := latest[a.ID]; ok {
			u := u
			p.Status = u.Status
			p.Latest = &u
			if u.Remark != nil {
				p.Remark = u.Remark
			}
		}
		result[a.ID] = p
	}
	return result
}
