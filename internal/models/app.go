package models

import "time"

// App statuses are admin-controlled.
const (
	AppStatusActive   = "active"
	AppStatusPaused   = "paused"
	AppStatusDisabled = "disabled"
)

// App is an Android application registered with the backend. PackageName is
// the stable client-facing key; deletion cascades to owned entities.
type App struct {
	ID          string    `json:"id"`
	PackageName string    `json:"package_name"`
	AppName     string    `json:"app_name"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateAppRequest struct {
	PackageName string  `json:"package_name" validate:"required"`
	AppName     string  `json:"app_name" validate:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=active paused disabled"`
}

type UpdateAppRequest struct {
	AppName     *string `json:"app_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active paused disabled"`
}
