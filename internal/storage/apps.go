package storage

import (
	"context"
	"fmt"

	"admob-switch/internal/models"
)

const appColumns = `id, package_name, app_name, description, status, created_at, updated_at`

func scanApp(row interface{ Scan(...any) error }) (models.App, error) {
	var a models.App
	err := row.Scan(&a.ID, &a.PackageName, &a.AppName, &a.Description, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Store) CreateApp(ctx context.Context, a models.App) (models.App, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO apps (id, package_name, app_name, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+appColumns,
		a.ID, a.PackageName, a.AppName, a.Description, a.Status)
	out, err := scanApp(row)
	if err != nil {
		return models.App{}, fmt.Errorf("create app: %w", err)
	}
	return out, nil
}

func (s *Store) GetApp(ctx context.Context, id string) (models.App, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM apps WHERE id = $1`, id)
	a, err := scanApp(row)
	if err != nil {
		return models.App{}, notFound(err)
	}
	return a, nil
}

func (s *Store) GetAppByPackageName(ctx context.Context, packageName string) (models.App, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM apps WHERE package_name = $1`, packageName)
	a, err := scanApp(row)
	if err != nil {
		return models.App{}, notFound(err)
	}
	return a, nil
}

func (s *Store) ListApps(ctx context.Context) ([]models.App, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT `+appColumns+` FROM apps ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	defer rows.Close()

	var apps []models.App
	for rows.Next() {
		a, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan app: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (s *Store) UpdateApp(ctx context.Context, a models.App) (models.App, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE apps
		SET app_name = $2, description = $3, status = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+appColumns,
		a.ID, a.AppName, a.Description, a.Status)
	out, err := scanApp(row)
	if err != nil {
		return models.App{}, notFound(err)
	}
	return out, nil
}

// DeleteApp removes the app; owned accounts, rules, notifications and
// devices go with it via FK cascade.
func (s *Store) DeleteApp(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM apps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete app: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DashboardCounts aggregates entity totals for the admin dashboard.
type DashboardCounts struct {
	Apps          int `json:"apps"`
	Accounts      int `json:"admob_accounts"`
	Devices       int `json:"devices"`
	Notifications int `json:"notifications"`
}

func (s *Store) CountAll(ctx context.Context) (DashboardCounts, error) {
	var c DashboardCounts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM apps),
			(SELECT count(*) FROM admob_accounts),
			(SELECT count(*) FROM devices),
			(SELECT count(*) FROM notifications)
	`).Scan(&c.Apps, &c.Accounts, &c.Devices, &c.Notifications)
	if err != nil {
		return DashboardCounts{}, fmt.Errorf("dashboard counts: %w", err)
	}
	return c, nil
}
