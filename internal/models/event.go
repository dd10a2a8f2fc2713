package models

import "time"

// Notification event types recorded by the tracking endpoint.
const (
	EventDisplayed = "displayed"
	EventClicked   = "clicked"
	EventDismissed = "dismissed"
)

// NotificationEvent records one display/click/dismiss occurrence. Append
// only; the eligibility engine reads the "displayed" subset for the
// frequency-cap check.
type NotificationEvent struct {
	ID             string    `json:"id"`
	NotificationID string    `json:"notification_id"`
	DeviceID       *string   `json:"device_id"`
	EventType      string    `json:"event_type"`
	Timestamp      time.Time `json:"timestamp"`
}

type TrackNotificationRequest struct {
	NotificationID string  `json:"notification_id" validate:"required,uuid4"`
	DeviceID       *string `json:"device_id" validate:"omitempty,uuid4"`
	EventType      string  `json:"event_type" validate:"required,oneof=displayed clicked dismissed"`
}

// AnalyticsEvent records an ad-lifecycle event (impression, click, ...)
// reported by a client for one app and optionally one account.
type AnalyticsEvent struct {
	ID        string    `json:"id"`
	AppID     string    `json:"app_id"`
	AccountID *string   `json:"account_id"`
	EventType string    `json:"event_type"`
	AdType    *string   `json:"ad_type"`
	Value     *int      `json:"value"`
	Country   *string   `json:"country"`
	Timestamp time.Time `json:"timestamp"`
}

type TrackAnalyticsRequest struct {
	PackageName string  `json:"package_name" validate:"required"`
	Event       string  `json:"event" validate:"required"`
	AccountID   *string `json:"account_id" validate:"omitempty,uuid4"`
	AdType      *string `json:"ad_type"`
	Value       *int    `json:"value"`
	Country     *string `json:"country"`
}

// AnalyticsSummary aggregates an app's analytics events for the admin view.
type AnalyticsSummary struct {
	TotalEvents int            `json:"total_events"`
	Impressions int            `json:"impressions"`
	Clicks      int            `json:"clicks"`
	ByAdType    map[string]int `json:"by_ad_type"`
	ByCountry   map[string]int `json:"by_country"`
}
