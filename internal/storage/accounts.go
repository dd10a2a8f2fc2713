package storage

import (
	"context"
	"fmt"

	"admob-switch/internal/models"
)

const accountColumns = `id, app_id, account_name, status, priority, weight,
	banner_id, interstitial_id, rewarded_id, app_open_id, native_id,
	created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (models.AdmobAccount, error) {
	var a models.AdmobAccount
	err := row.Scan(&a.ID, &a.AppID, &a.AccountName, &a.Status, &a.Priority, &a.Weight,
		&a.BannerID, &a.InterstitialID, &a.RewardedID, &a.AppOpenID, &a.NativeID,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Store) CreateAccount(ctx context.Context, a models.AdmobAccount) (models.AdmobAccount, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO admob_accounts (id, app_id, account_name, status, priority, weight,
			banner_id, interstitial_id, rewarded_id, app_open_id, native_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+accountColumns,
		a.ID, a.AppID, a.AccountName, a.Status, a.Priority, a.Weight,
		a.BannerID, a.InterstitialID, a.RewardedID, a.AppOpenID, a.NativeID)
	out, err := scanAccount(row)
	if err != nil {
		return models.AdmobAccount{}, fmt.Errorf("create account: %w", err)
	}
	return out, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (models.AdmobAccount, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM admob_accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil {
		return models.AdmobAccount{}, notFound(err)
	}
	return a, nil
}

func (s *Store) listAccounts(ctx context.Context, query string, args ...any) ([]models.AdmobAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.AdmobAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) ListAccountsByApp(ctx context.Context, appID string) ([]models.AdmobAccount, error) {
	return s.listAccounts(ctx,
		`SELECT `+accountColumns+` FROM admob_accounts WHERE app_id = $1 ORDER BY created_at, id`, appID)
}

// ActiveAccountsByApp returns the selection input set in stable insertion
// order. The selector's determinism depends on this ordering.
func (s *Store) ActiveAccountsByApp(ctx context.Context, appID string) ([]models.AdmobAccount, error) {
	return s.listAccounts(ctx,
		`SELECT `+accountColumns+` FROM admob_accounts
		 WHERE app_id = $1 AND status = 'active'
		 ORDER BY created_at, id`, appID)
}

func (s *Store) UpdateAccount(ctx context.Context, a models.AdmobAccount) (models.AdmobAccount, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE admob_accounts
		SET account_name = $2, status = $3, priority = $4, weight = $5,
			banner_id = $6, interstitial_id = $7, rewarded_id = $8,
			app_open_id = $9, native_id = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		a.ID, a.AccountName, a.Status, a.Priority, a.Weight,
		a.BannerID, a.InterstitialID, a.RewardedID, a.AppOpenID, a.NativeID)
	out, err := scanAccount(row)
	if err != nil {
		return models.AdmobAccount{}, notFound(err)
	}
	return out, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM admob_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
