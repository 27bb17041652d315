package dto

// MasterActivityListRequest captures query params for listing master activities.
type MasterActivityListRequest struct {
	Search string `json:"search"`
	Active *bool  `json:"active"`
}

// CreateMasterActivityRequest is the admin payload for a new master activity.
type CreateMasterActivityRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

// UpdateMasterActivityRequest replaces a master activity's editable fields.
type UpdateMasterActivityRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}
