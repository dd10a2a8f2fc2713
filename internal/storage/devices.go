package storage

import (
	"context"
	"fmt"
	"time"

	"admob-switch/internal/models"
)

const deviceColumns = `id, app_id, fcm_token, country, app_version, android_version,
	device_manufacturer, device_model, last_seen, created_at`

func scanDevice(row interface{ Scan(...any) error }) (models.Device, error) {
	var d models.Device
	err := row.Scan(&d.ID, &d.AppID, &d.FCMToken, &d.Country, &d.AppVersion, &d.AndroidVersion,
		&d.DeviceManufacturer, &d.DeviceModel, &d.LastSeen, &d.CreatedAt)
	return d, err
}

// UpsertDevice registers a device keyed by (app_id, fcm_token).
// Re-registration refreshes last_seen and overwrites attributes only when
// the new value is present, so a sparse re-registration never erases known
// targeting data.
func (s *Store) UpsertDevice(ctx context.Context, d models.Device) (models.Device, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO devices (id, app_id, fcm_token, country, app_version,
			android_version, device_manufacturer, device_model, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (app_id, fcm_token) DO UPDATE SET
			country = COALESCE(EXCLUDED.country, devices.country),
			app_version = COALESCE(EXCLUDED.app_version, devices.app_version),
			android_version = COALESCE(EXCLUDED.android_version, devices.android_version),
			device_manufacturer = COALESCE(EXCLUDED.device_manufacturer, devices.device_manufacturer),
			device_model = COALESCE(EXCLUDED.device_model, devices.device_model),
			last_seen = now()
		RETURNING `+deviceColumns,
		d.ID, d.AppID, d.FCMToken, d.Country, d.AppVersion,
		d.AndroidVersion, d.DeviceManufacturer, d.DeviceModel)
	out, err := scanDevice(row)
	if err != nil {
		return models.Device{}, fmt.Errorf("upsert device: %w", err)
	}
	return out, nil
}

func (s *Store) GetDevice(ctx context.Context, id string) (models.Device, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id)
	d, err := scanDevice(row)
	if err != nil {
		return models.Device{}, notFound(err)
	}
	return d, nil
}

// DeviceTokensByApp lists FCM tokens for push fan-out.
func (s *Store) DeviceTokensByApp(ctx context.Context, appID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT fcm_token FROM devices WHERE app_id = $1`, appID)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *Store) CountActiveDevices(ctx context.Context, appID string, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM devices WHERE app_id = $1 AND last_seen >= $2`, appID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active devices: %w", err)
	}
	return count, nil
}
