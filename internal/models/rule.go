package models

import (
	"encoding/json"
	"time"
)

// Selection strategies. Unrecognized values fall back to first-active-account
// in the selector, never an error.
const (
	StrategyWeightedRandom = "weighted_random"
	StrategyRotation       = "rotation"
	StrategyPriority       = "priority"
	StrategyABTesting      = "ab_testing"
)

// Rotation intervals. Unknown values fall back to the daily bucket.
const (
	IntervalHourly  = "hourly"
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
)

// SwitchingRule configures account selection for one app (at most one rule
// per app, enforced by a uniqueness constraint). FallbackEnabled and
// ABTestingEnabled are informational flags; GeographicRules is raw structured
// data for a future strategy and is not evaluated.
type SwitchingRule struct {
	ID               string          `json:"id"`
	AppID            string          `json:"app_id"`
	Strategy         string          `json:"strategy"`
	RotationInterval string          `json:"rotation_interval"`
	FallbackEnabled  bool            `json:"fallback_enabled"`
	ABTestingEnabled bool            `json:"ab_testing_enabled"`
	GeographicRules  json.RawMessage `json:"geographic_rules,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type UpsertRuleRequest struct {
	Strategy         string          `json:"strategy" validate:"required,oneof=weighted_random rotation priority ab_testing"`
	RotationInterval string          `json:"rotation_interval" validate:"omitempty,oneof=hourly daily weekly monthly"`
	FallbackEnabled  *bool           `json:"fallback_enabled,omitempty"`
	ABTestingEnabled *bool           `json:"ab_testing_enabled,omitempty"`
	GeographicRules  json.RawMessage `json:"geographic_rules,omitempty"`
}
