package dto

// ReportRequest holds raw report query parameters.
type ReportRequest struct {
	From   string  `json:"start_date"`
	To     string  `json:"end_date"`
	UserID string  `json:"user_id"`
	Status *string `json:"status"`
}

// ReportFilters echoes the resolved filters.
type ReportFilters struct {
	From   string  `json:"start_date"`
	To     string  `json:"end_date"`
	UserID string  `json:"user_id,omitempty"`
	Status *string `json:"status,omitempty"`
}

// ReportStats holds the headline numbers.
type ReportStats struct {
	TotalActivities     int     `json:"total_activities"`
	CompletedActivities int     `json:"completed_activities"`
	TotalUpdates        int     `json:"total_updates"`
	CompletedUpdates    int     `json:"completed_updates"`
	CompletionRate      float64 `json:"completion_rate"`
	AvgDailyUpdates     float64 `json:"avg_daily_updates"`
}

// TeamPerformanceRow reports one user's updates in the window.
type TeamPerformanceRow struct {
	UserID           string  `json:"id"`
	Name             string  `json:"name"`
	Position         *string `json:"position,omitempty"`
	Department       *string `json:"department,omitempty"`
	TotalUpdates     int     `json:"total_updates"`
	CompletedUpdates int     `json:"completed_updates"`
	CompletionRate   float64 `json:"completion_rate"`
	Avatar           string  `json:"avatar"`
}

// ActivityBreakdownRow reports one master activity's occurrences in the window.
type ActivityBreakdownRow struct {
	MasterActivityID    string  `json:"master_activity_id"`
	Title               string  `json:"title"`
	TotalActivities     int     `json:"total_activities"`
	CompletedActivities int     `json:"completed_activities"`
	TotalUpdates        int     `json:"total_updates"`
	CompletionRate      float64 `json:"completion_rate"`
}

// DailyTrendBucket is one calendar day of the window.
type DailyTrendBucket struct {
	Date           string  `json:"date"`
	Label          string  `json:"label"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Updates        int     `json:"updates"`
	CompletionRate float64 `json:"completion_rate"`
}

// ReportResponse is the aggregated report payload.
type ReportResponse struct {
	Filters            ReportFilters          `json:"filters"`
	Stats              ReportStats            `json:"stats"`
	StatusDistribution map[string]int         `json:"status_distribution"`
	TeamPerformance    []TeamPerformanceRow   `json:"team_performance"`
	ActivityBreakdown  []ActivityBreakdownRow `json:"activity_breakdown"`
	DailyTrend         []DailyTrendBucket     `json:"daily_trend"`
}
