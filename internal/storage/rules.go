package storage

import (
	"context"
	"fmt"

	"admob-switch/internal/models"
)

const ruleColumns = `id, app_id, strategy, rotation_interval, fallback_enabled,
	ab_testing_enabled, geographic_rules, updated_at`

func scanRule(row interface{ Scan(...any) error }) (models.SwitchingRule, error) {
	var r models.SwitchingRule
	err := row.Scan(&r.ID, &r.AppID, &r.Strategy, &r.RotationInterval,
		&r.FallbackEnabled, &r.ABTestingEnabled, &r.GeographicRules, &r.UpdatedAt)
	return r, err
}

func (s *Store) GetRuleByApp(ctx context.Context, appID string) (models.SwitchingRule, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM switching_rules WHERE app_id = $1`, appID)
	r, err := scanRule(row)
	if err != nil {
		return models.SwitchingRule{}, notFound(err)
	}
	return r, nil
}

// UpsertRule creates or replaces the app's single switching rule; the
// uniqueness invariant lives in the schema.
func (s *Store) UpsertRule(ctx context.Context, r models.SwitchingRule) (models.SwitchingRule, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO switching_rules (id, app_id, strategy, rotation_interval,
			fallback_enabled, ab_testing_enabled, geographic_rules)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (app_id) DO UPDATE SET
			strategy = EXCLUDED.strategy,
			rotation_interval = EXCLUDED.rotation_interval,
			fallback_enabled = EXCLUDED.fallback_enabled,
			ab_testing_enabled = EXCLUDED.ab_testing_enabled,
			geographic_rules = EXCLUDED.geographic_rules,
			updated_at = now()
		RETURNING `+ruleColumns,
		r.ID, r.AppID, r.Strategy, r.RotationInterval,
		r.FallbackEnabled, r.ABTestingEnabled, r.GeographicRules)
	out, err := scanRule(row)
	if err != nil {
		return models.SwitchingRule{}, fmt.Errorf("upsert rule: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteRuleByApp(ctx context.Context, appID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM switching_rules WHERE app_id = $1`, appID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
