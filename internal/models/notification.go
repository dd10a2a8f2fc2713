package models

import "time"

// Notification statuses. "active" and "sent" both mark a notification as
// deliverable; "scheduled" notifications are promoted to "sent" by the
// scheduler once their start date arrives.
const (
	NotificationStatusDraft     = "draft"
	NotificationStatusScheduled = "scheduled"
	NotificationStatusActive    = "active"
	NotificationStatusSent      = "sent"
	NotificationStatusCompleted = "completed"
)

// Notification is an admin-authored message targeted at a subset of an
// app's devices. Empty target slices mean "all"; nil MinAndroidVersion means
// no floor. Title, message, type, priority and the content fields are opaque
// presentation data passed through to clients unmodified.
type Notification struct {
	ID      string `json:"id"`
	AppID   string `json:"app_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	// Priority is presentation metadata ("low"/"normal"/"high"), unrelated
	// to AdmobAccount.Priority.
	Priority string `json:"priority"`
	Status   string `json:"status"`

	TargetCountries   []string `json:"target_countries"`
	TargetAppVersions []string `json:"target_app_versions"`
	MinAndroidVersion *int     `json:"min_android_version"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	ImageURL         *string `json:"image_url"`
	ActionButtonText *string `json:"action_button_text"`
	ActionType       *string `json:"action_type"`
	ActionValue      *string `json:"action_value"`
	Cancelable       bool    `json:"cancelable"`

	MaxDisplays          int  `json:"max_displays"`
	DisplayIntervalHours int  `json:"display_interval_hours"`
	ShowOnAppLaunch      bool `json:"show_on_app_launch"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLive reports whether the notification is currently deliverable.
func (n Notification) IsLive() bool {
	return n.Status == NotificationStatusActive || n.Status == NotificationStatusSent
}

type CreateNotificationRequest struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=popup toast banner fullscreen"`
	// Priority values other than low/normal/high are rejected at the edge.
	Priority string `json:"priority" validate:"omitempty,oneof=low normal high"`
	Status   string `json:"status" validate:"omitempty,oneof=draft scheduled active sent completed"`

	TargetCountries   []string `json:"target_countries"`
	TargetAppVersions []string `json:"target_app_versions"`
	MinAndroidVersion *int     `json:"min_android_version" validate:"omitempty,gte=1"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	ImageURL         *string `json:"image_url"`
	ActionButtonText *string `json:"action_button_text"`
	ActionType       *string `json:"action_type"`
	ActionValue      *string `json:"action_value"`
	Cancelable       *bool   `json:"cancelable"`

	MaxDisplays          *int  `json:"max_displays" validate:"omitempty,gte=1"`
	DisplayIntervalHours *int  `json:"display_interval_hours" validate:"omitempty,gte=0"`
	ShowOnAppLaunch      *bool `json:"show_on_app_launch"`
}

type UpdateNotificationRequest struct {
	Title    *string `json:"title,omitempty"`
	Message  *string `json:"message,omitempty"`
	Type     *string `json:"type,omitempty" validate:"omitempty,oneof=popup toast banner fullscreen"`
	Priority *string `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=draft scheduled active sent completed"`

	TargetCountries   *[]string `json:"target_countries,omitempty"`
	TargetAppVersions *[]string `json:"target_app_versions,omitempty"`
	MinAndroidVersion *int      `json:"min_android_version,omitempty" validate:"omitempty,gte=1"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	ImageURL         *string `json:"image_url,omitempty"`
	ActionButtonText *string `json:"action_button_text,omitempty"`
	ActionType       *string `json:"action_type,omitempty"`
	ActionValue      *string `json:"action_value,omitempty"`
	Cancelable       *bool   `json:"cancelable,omitempty"`

	MaxDisplays          *int  `json:"max_displays,omitempty" validate:"omitempty,gte=1"`
	DisplayIntervalHours *int  `json:"display_interval_hours,omitempty" validate:"omitempty,gte=0"`
	ShowOnAppLaunch      *bool `json:"show_on_app_launch,omitempty"`
}
