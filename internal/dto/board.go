package dto

import "github.com/noah-isme/activity-tracker-api/internal/models"

// BoardItem is a card in a board column.
type BoardItem struct {
	models.DailyActivityRecord
	LatestUpdate *models.ActivityUpdate `json:"latest_update,omitempty"`
	UpdateCount  int                    `json:"update_count"`
}

// BoardResponse groups a date's daily activities by status column.
type BoardResponse struct {
	Date    string                                `json:"date"`
	Columns map[models.ActivityStatus][]BoardItem `json:"columns"`
}

// ReorderRequest is the drag-and-drop payload: column status to ordered IDs.
type ReorderRequest struct {
	Date    string              `json:"date"`
	Columns map[string][]string `json:"columns" validate:"required,min=1"`
}

// ReorderResult acknowledges a reorder.
type ReorderResult struct {
	Date    string   `json:"date"`
	Applied int      `json:"applied"`
	Skipped []string `json:"skipped"`
}
