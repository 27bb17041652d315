package dto

import "github.com/noah-isme/activity-tracker-api/internal/models"

// MaterializeRequest asks for daily activities to be generated for a date.
type MaterializeRequest struct {
	Date string `json:"date"`
}

// MaterializeResult summarises one materialization pass.
type MaterializeResult struct {
	Date     string `json:"date"`
	Masters  int    `json:"masters"`
	Created  int    `json:"created"`
	Existing int    `json:"existing"`
}

// RecordUpdateRequest is a status/remark submission against a daily activity.
type RecordUpdateRequest struct {
	Status string  `json:"status" validate:"required,activity_status"`
	Remark *string `json:"remark" validate:"omitempty,max=5000"`
}

// DailyActivityDetail returns one occurrence with its full update history.
type DailyActivityDetail struct {
	Activity     models.DailyActivityRecord `json:"activity"`
	LatestUpdate *models.ActivityUpdate     `json:"latest_update,omitempty"`
	Updates      []models.ActivityUpdate    `json:"updates"`
}
