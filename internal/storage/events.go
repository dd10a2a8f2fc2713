package storage

import (
	"context"
	"fmt"
	"time"

	"admob-switch/internal/models"
)

func (s *Store) InsertNotificationEvent(ctx context.Context, e models.NotificationEvent) (models.NotificationEvent, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO notification_events (id, notification_id, device_id, event_type, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, notification_id, device_id, event_type, timestamp`,
		e.ID, e.NotificationID, e.DeviceID, e.EventType, e.Timestamp)
	var out models.NotificationEvent
	if err := row.Scan(&out.ID, &out.NotificationID, &out.DeviceID, &out.EventType, &out.Timestamp); err != nil {
		return models.NotificationEvent{}, fmt.Errorf("insert notification event: %w", err)
	}
	return out, nil
}

// DisplayCount counts prior "displayed" events for one (notification,
// device) pair, feeding the eligibility engine's frequency cap.
func (s *Store) DisplayCount(ctx context.Context, notificationID, deviceID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM notification_events
		WHERE notification_id = $1 AND device_id = $2 AND event_type = 'displayed'`,
		notificationID, deviceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("display count: %w", err)
	}
	return count, nil
}

// LastDisplayedAt returns the most recent "displayed" timestamp for the
// pair, or nil when there is none.
func (s *Store) LastDisplayedAt(ctx context.Context, notificationID, deviceID string) (*time.Time, error) {
	var last *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT max(timestamp) FROM notification_events
		WHERE notification_id = $1 AND device_id = $2 AND event_type = 'displayed'`,
		notificationID, deviceID).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("last displayed at: %w", err)
	}
	return last, nil
}

func (s *Store) InsertAnalyticsEvent(ctx context.Context, e models.AnalyticsEvent) (models.AnalyticsEvent, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO analytics_events (id, app_id, account_id, event_type, ad_type, value, country, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, app_id, account_id, event_type, ad_type, value, country, timestamp`,
		e.ID, e.AppID, e.AccountID, e.EventType, e.AdType, e.Value, e.Country, e.Timestamp)
	var out models.AnalyticsEvent
	if err := row.Scan(&out.ID, &out.AppID, &out.AccountID, &out.EventType,
		&out.AdType, &out.Value, &out.Country, &out.Timestamp); err != nil {
		return models.AnalyticsEvent{}, fmt.Errorf("insert analytics event: %w", err)
	}
	return out, nil
}

// AnalyticsSummary aggregates an app's events, optionally bounded by a time
// range.
func (s *Store) AnalyticsSummary(ctx context.Context, appID string, from, to *time.Time) (models.AnalyticsSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT event_type, ad_type, country FROM analytics_events
		WHERE app_id = $1
		  AND ($2::timestamptz IS NULL OR timestamp >= $2)
		  AND ($3::timestamptz IS NULL OR timestamp <= $3)`,
		appID, from, to)
	if err != nil {
		return models.AnalyticsSummary{}, fmt.Errorf("analytics summary: %w", err)
	}
	defer rows.Close()

	summary := models.AnalyticsSummary{
		ByAdType:  map[string]int{},
		ByCountry: map[string]int{},
	}
	for rows.Next() {
		var eventType string
		var adType, country *string
		if err := rows.Scan(&eventType, &adType, &country); err != nil {
			return models.AnalyticsSummary{}, fmt.Errorf("scan analytics event: %w", err)
		}
		summary.TotalEvents++
		switch eventType {
		case "impression":
			summary.Impressions++
		case "click":
			summary.Clicks++
		}
		if adType != nil {
			summary.ByAdType[*adType]++
		}
		if country != nil {
			summary.ByCountry[*country]++
		}
	}
	return summary, rows.Err()
}
