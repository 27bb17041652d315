package models

import "time"

// ActivityStatus enumerates the lifecycle of a daily activity.
type ActivityStatus string

const (
	ActivityStatusPending    ActivityStatus = "pending"
	ActivityStatusInProgress ActivityStatus = "in_progress"
	ActivityStatusDone       ActivityStatus = "done"
)

// ActivityStatuses lists statuses in board column order.
var ActivityStatuses = []ActivityStatus{ActivityStatusPending, ActivityStatusInProgress, ActivityStatusDone}

// Valid returns true when the status is a supported value.
func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityStatusPending, ActivityStatusInProgress, ActivityStatusDone:
		return true
	default:
		return false
	}
}

// DateLayout is the calendar date wire format.
const DateLayout = "2006-01-02"

// MasterActivity is a reusable recurring checklist item.
type MasterActivity struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty"`
	CreatorName *string   `db:"creator_name" json:"creator_name,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MasterActivityFilter scopes master activity listings.
type MasterActivityFilter struct {
	Search string
	Active *bool
}

// DailyActivity is one calendar-day occurrence of a master activity.
type DailyActivity struct {
	ID               string         `db:"id" json:"id"`
	MasterActivityID string         `db:"master_activity_id" json:"master_activity_id"`
	ActivityDate     Date           `db:"activity_date" json:"activity_date"`
	Status           ActivityStatus `db:"status" json:"status"`
	Position         int            `db:"position" json:"position"`
	Remark           *string        `db:"remark" json:"remark,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// DailyActivityRecord extends the row with master activity metadata.
type DailyActivityRecord struct {
	DailyActivity
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description,omitempty"`
}

// ActivityUpdate is an immutable status/remark entry against a daily activity.
type ActivityUpdate struct {
	ID              string         `db:"id" json:"id"`
	DailyActivityID string         `db:"daily_activity_id" json:"daily_activity_id"`
	UserID          string         `db:"user_id" json:"user_id"`
	UserName        string         `db:"user_name" json:"user_name,omitempty"`
	Status          ActivityStatus `db:"status" json:"status"`
	Remark          *string        `db:"remark" json:"remark,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// MasterActivityUpdate is an update joined with the occurrence it belongs to.
type MasterActivityUpdate struct {
	ActivityUpdate
	ActivityDate Date `db:"activity_date" json:"activity_date"`
}
