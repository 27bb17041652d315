package models

import "time"

// ReportFilter scopes report aggregation to an inclusive date window.
type ReportFilter struct {
	From   time.Time
	To     time.Time
	UserID string
	Status *ActivityStatus
}

// ReportActivityRow is a daily activity in the report window.
type ReportActivityRow struct {
	DailyActivityID  string         `db:"daily_activity_id"`
	MasterActivityID string         `db:"master_activity_id"`
	Title            string         `db:"title"`
	ActivityDate     time.Time      `db:"activity_date"`
	Status           ActivityStatus `db:"status"`
}

// ReportUpdateRow is an update whose daily activity falls in the report window.
type ReportUpdateRow struct {
	DailyActivityID string         `db:"daily_activity_id"`
	UserID          string         `db:"user_id"`
	Status          ActivityStatus `db:"status"`
	ActivityDate    time.Time      `db:"activity_date"`
}
