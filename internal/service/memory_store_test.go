package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

// memoryStore is an in-process stand-in for the postgres repositories.
type memoryStore struct {
	mu      sync.Mutex
	clock   time.Time
	masters []models.MasterActivity
	daily   []models.DailyActivity
	updates []models.ActivityUpdate
	users   []models.User

	// appendNow overrides the clock Append reads, to simulate skew.
	appendNow func() time.Time

	materializeCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (m *memoryStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memoryStore) addMaster(title string, active bool) models.MasterActivity {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	master := models.MasterActivity{ID: uuid.NewString(), Title: title, Active: active, CreatedAt: now, UpdatedAt: now}
	m.masters = append(m.masters, master)
	return master
}

func (m *memoryStore) addUser(name string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := models.User{ID: uuid.NewString(), Name: name, Email: name + "@example.com", Role: models.RoleMember, Active: true}
	m.users = append(m.users, user)
	return user
}

func (m *memoryStore) ListActiveIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := make([]models.MasterActivity, 0, len(m.masters))
	for _, master := range m.masters {
		if master.Active {
			active = append(active, master)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		}
		return active[i].ID < active[j].ID
	})
	ids := make([]string, 0, len(active))
	for _, master := range active {
		ids = append(ids, master.ID)
	}
	return ids, nil
}

func (m *memoryStore) CountActiveByDate(ctx context.Context, date time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := make(map[string]bool, len(m.masters))
	for _, master := range m.masters {
		active[master.ID] = master.Active
	}
	count := 0
	for _, d := range m.daily {
		if d.ActivityDate.Equal(date) && active[d.MasterActivityID] {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) Materialize(ctx context.Context, date time.Time, masterIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materializeCalls++
	created := 0
	for position, masterID := range masterIDs {
		exists := false
		for _, d := range m.daily {
			if d.MasterActivityID == masterID && d.ActivityDate.Equal(date) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		now := m.tick()
		m.daily = append(m.daily, models.DailyActivity{
			ID:               uuid.NewString(),
			MasterActivityID: masterID,
			ActivityDate:     models.Date{Time: date},
			Status:           models.ActivityStatusPending,
			Position:         position,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		created++
	}
	return created, nil
}

func (m *memoryStore) record(d models.DailyActivity) models.DailyActivityRecord {
	rec := models.DailyActivityRecord{DailyActivity: d}
	for _, master := range m.masters {
		if master.ID == d.MasterActivityID {
			rec.Title = master.Title
			rec.Description = master.Description
		}
	}
	return rec
}

func (m *memoryStore) ListByDate(ctx context.Context, date time.Time) ([]models.DailyActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []models.DailyActivityRecord
	for _, d := range m.daily {
		if d.ActivityDate.Equal(date) {
			rows = append(rows, m.record(d))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows, nil
}

func (m *memoryStore) FindByID(ctx context.Context, id string) (*models.DailyActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.daily {
		if d.ID == id {
			rec := m.record(d)
			return &rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) ApplyMove(ctx context.Context, id string, date time.Time, status models.ActivityStatus, position int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.daily {
		if m.daily[i].ID == id && m.daily[i].ActivityDate.Equal(date) {
			m.daily[i].Status = status
			m.daily[i].Position = position
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) Append(ctx context.Context, update *models.ActivityUpdate) (*models.ActivityUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i := range m.daily {
		if m.daily[i].ID == update.DailyActivityID {
			idx = i
		}
	}
	if idx < 0 {
		return nil, sql.ErrNoRows
	}
	stored := *update
	stored.ID = uuid.NewString()
	now := m.tick()
	if m.appendNow != nil {
		now = m.appendNow()
	}
	for _, u := range m.updates {
		if u.DailyActivityID == stored.DailyActivityID && !now.After(u.CreatedAt) {
			now = u.CreatedAt.Add(time.Microsecond)
		}
	}
	stored.CreatedAt = now
	for _, u := range m.users {
		if u.ID == stored.UserID {
			stored.UserName = u.Name
		}
	}
	m.updates = append(m.updates, stored)
	m.daily[idx].Status = stored.Status
	if stored.Remark != nil {
		m.daily[idx].Remark = stored.Remark
	}
	return &stored, nil
}

func (m *memoryStore) ListByDailyActivity(ctx context.Context, dailyActivityID string) ([]models.ActivityUpdate, error) {
	return m.ListForDailyActivities(ctx, []string{dailyActivityID})
}

func (m *memoryStore) ListForDailyActivities(ctx context.Context, ids []string) ([]models.ActivityUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var rows []models.ActivityUpdate
	for i := len(m.updates) - 1; i >= 0; i-- {
		if want[m.updates[i].DailyActivityID] {
			rows = append(rows, m.updates[i])
		}
	}
	return rows, nil
}

func (m *memoryStore) ActivityRows(ctx context.Context, filter models.ReportFilter) ([]models.ReportActivityRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []models.ReportActivityRow
	for _, d := range m.daily {
		if d.ActivityDate.Before(filter.From) || d.ActivityDate.After(filter.To) {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		if filter.UserID != "" && !m.updatedBy(d.ID, filter.UserID) {
			continue
		}
		rec := m.record(d)
		rows = append(rows, models.ReportActivityRow{
			DailyActivityID:  d.ID,
			MasterActivityID: d.MasterActivityID,
			Title:            rec.Title,
			ActivityDate:     d.ActivityDate.Time,
			Status:           d.Status,
		})
	}
	return rows, nil
}

func (m *memoryStore) updatedBy(dailyID, userID string) bool {
	for _, u := range m.updates {
		if u.DailyActivityID == dailyID && u.UserID == userID {
			return true
		}
	}
	return false
}

func (m *memoryStore) UpdateRows(ctx context.Context, filter models.ReportFilter) ([]models.ReportUpdateRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := make(map[string]models.DailyActivity, len(m.daily))
	for _, d := range m.daily {
		byID[d.ID] = d
	}
	var rows []models.ReportUpdateRow
	for _, u := range m.updates {
		d := byID[u.DailyActivityID]
		if d.ActivityDate.Before(filter.From) || d.ActivityDate.After(filter.To) {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		if filter.UserID != "" && u.UserID != filter.UserID {
			continue
		}
		rows = append(rows, models.ReportUpdateRow{DailyActivityID: u.DailyActivityID, UserID: u.UserID, Status: u.Status, ActivityDate: d.ActivityDate.Time})
	}
	return rows, nil
}

func (m *memoryStore) ListActive(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []models.User
	for _, u := range m.users {
		if u.Active {
			users = append(users, u)
		}
	}
	return users, nil
}

// memoryCache is a CacheRepository that keeps JSON payloads in a map.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, pattern)
	c.entries = map[string][]byte{}
	return nil
}
