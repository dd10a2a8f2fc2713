package storage

import (
	"context"
	"fmt"
	"time"

	"admob-switch/internal/models"
)

// target_countries/target_app_versions are nullable jsonb; coalescing to an
// empty array keeps "absent" and "empty" identical, which is exactly the
// match-all semantics the eligibility engine wants.
const notificationColumns = `id, app_id, title, message, type, priority, status,
	COALESCE(target_countries, '[]'::jsonb), COALESCE(target_app_versions, '[]'::jsonb),
	min_android_version, start_date, end_date,
	image_url, action_button_text, action_type, action_value, cancelable,
	max_displays, display_interval_hours, show_on_app_launch,
	created_at, updated_at`

func scanNotification(row interface{ Scan(...any) error }) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.AppID, &n.Title, &n.Message, &n.Type, &n.Priority, &n.Status,
		&n.TargetCountries, &n.TargetAppVersions,
		&n.MinAndroidVersion, &n.StartDate, &n.EndDate,
		&n.ImageURL, &n.ActionButtonText, &n.ActionType, &n.ActionValue, &n.Cancelable,
		&n.MaxDisplays, &n.DisplayIntervalHours, &n.ShowOnAppLaunch,
		&n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (s *Store) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, app_id, title, message, type, priority, status,
			target_countries, target_app_versions, min_android_version,
			start_date, end_date, image_url, action_button_text, action_type,
			action_value, cancelable, max_displays, display_interval_hours, show_on_app_launch)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING `+notificationColumns,
		n.ID, n.AppID, n.Title, n.Message, n.Type, n.Priority, n.Status,
		n.TargetCountries, n.TargetAppVersions, n.MinAndroidVersion,
		n.StartDate, n.EndDate, n.ImageURL, n.ActionButtonText, n.ActionType,
		n.ActionValue, n.Cancelable, n.MaxDisplays, n.DisplayIntervalHours, n.ShowOnAppLaunch)
	out, err := scanNotification(row)
	if err != nil {
		return models.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return out, nil
}

func (s *Store) GetNotification(ctx context.Context, id string) (models.Notification, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		return models.Notification{}, notFound(err)
	}
	return n, nil
}

func (s *Store) listNotifications(ctx context.Context, query string, args ...any) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Store) ListNotificationsByApp(ctx context.Context, appID string) ([]models.Notification, error) {
	return s.listNotifications(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE app_id = $1 ORDER BY created_at, id`, appID)
}

// LiveNotifications returns the deliverable set in insertion order, which
// PendingFor preserves.
func (s *Store) LiveNotifications(ctx context.Context, appID string) ([]models.Notification, error) {
	return s.listNotifications(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE app_id = $1 AND status IN ('active', 'sent')
		 ORDER BY created_at, id`, appID)
}

// ScheduleLiveNotifications returns live notifications whose schedule window
// contains now, for the config endpoint.
func (s *Store) ScheduleLiveNotifications(ctx context.Context, appID string, now time.Time) ([]models.Notification, error) {
	return s.listNotifications(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE app_id = $1 AND status IN ('active', 'sent')
		   AND (start_date IS NULL OR start_date <= $2)
		   AND (end_date IS NULL OR end_date >= $2)
		 ORDER BY created_at, id`, appID, now)
}

func (s *Store) UpdateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE notifications
		SET title = $2, message = $3, type = $4, priority = $5, status = $6,
			target_countries = $7, target_app_versions = $8, min_android_version = $9,
			start_date = $10, end_date = $11, image_url = $12,
			action_button_text = $13, action_type = $14, action_value = $15,
			cancelable = $16, max_displays = $17, display_interval_hours = $18,
			show_on_app_launch = $19, updated_at = now()
		WHERE id = $1
		RETURNING `+notificationColumns,
		n.ID, n.Title, n.Message, n.Type, n.Priority, n.Status,
		n.TargetCountries, n.TargetAppVersions, n.MinAndroidVersion,
		n.StartDate, n.EndDate, n.ImageURL,
		n.ActionButtonText, n.ActionType, n.ActionValue,
		n.Cancelable, n.MaxDisplays, n.DisplayIntervalHours,
		n.ShowOnAppLaunch)
	out, err := scanNotification(row)
	if err != nil {
		return models.Notification{}, notFound(err)
	}
	return out, nil
}

func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PromoteScheduledNotifications flips scheduled notifications whose start
// date has arrived to sent. Returns the number promoted.
func (s *Store) PromoteScheduledNotifications(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'sent', updated_at = now()
		WHERE status = 'scheduled' AND start_date IS NOT NULL AND start_date <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("promote scheduled notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ExpireEndedNotifications completes live notifications whose end date has
// passed. Returns the number expired.
func (s *Store) ExpireEndedNotifications(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'completed', updated_at = now()
		WHERE status IN ('active', 'sent') AND end_date IS NOT NULL AND end_date < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("expire ended notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
