package targeting

import (
	"context"

	"admob-switch/internal/models"
)

// Payload is the client-facing shape of an eligible notification. Content
// fields are passed through verbatim.
type Payload struct {
	NotificationID string         `json:"notification_id"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Type           string         `json:"type"`
	Priority       string         `json:"priority"`
	Content        PayloadContent `json:"content"`
	DisplayRules   DisplayRules   `json:"display_rules"`
}

type PayloadContent struct {
	ImageURL         *string `json:"image_url"`
	ActionButtonText *string `json:"action_button_text"`
	ActionType       *string `json:"action_type"`
	ActionValue      *string `json:"action_value"`
	Cancelable       bool    `json:"cancelable"`
}

type DisplayRules struct {
	MaxDisplays          int  `json:"max_displays"`
	DisplayIntervalHours int  `json:"display_interval_hours"`
	ShowOnAppLaunch      bool `json:"show_on_app_launch"`
}

// PendingFor filters the device's app's live notifications through Eligible
// and formats the survivors. Output preserves the source order; no priority
// re-sort is applied.
func (e *Evaluator) PendingFor(ctx context.Context, device models.Device) ([]Payload, error) {
	notifications, err := e.source.LiveNotifications(ctx, device.AppID)
	if err != nil {
		return nil, err
	}

	pending := make([]Payload, 0, len(notifications))
	for _, n := range notifications {
		v, err := e.Eligible(ctx, n, device)
		if err != nil {
			return nil, err
		}
		if v.Eligible {
			pending = append(pending, format(n))
		}
	}
	return pending, nil
}

func format(n models.Notification) Payload {
	return Payload{
		NotificationID: n.ID,
		Title:          n.Title,
		Message:        n.Message,
		Type:           n.Type,
		Priority:       n.Priority,
		Content: PayloadContent{
			ImageURL:         n.ImageURL,
			ActionButtonText: n.ActionButtonText,
			ActionType:       n.ActionType,
			ActionValue:      n.ActionValue,
			Cancelable:       n.Cancelable,
		},
		DisplayRules: DisplayRules{
			MaxDisplays:          n.MaxDisplays,
			DisplayIntervalHours: n.DisplayIntervalHours,
			ShowOnAppLaunch:      n.ShowOnAppLaunch,
		},
	}
}
