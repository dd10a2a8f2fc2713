package models

import "time"

const (
	AccountStatusActive   = "active"
	AccountStatusPaused   = "paused"
	AccountStatusDisabled = "disabled"
)

// AdmobAccount holds one AdMob configuration for an app. Only accounts with
// status "active" participate in selection. Weight is a relative traffic
// share in [0,100]; Priority is an arbitrary total order key (duplicates
// allowed). The five ad-unit ids are opaque pass-through strings.
type AdmobAccount struct {
	ID             string    `json:"id"`
	AppID          string    `json:"app_id"`
	AccountName    string    `json:"account_name"`
	Status         string    `json:"status"`
	Priority       int       `json:"priority"`
	Weight         int       `json:"weight"`
	BannerID       *string   `json:"banner_id"`
	InterstitialID *string   `json:"interstitial_id"`
	RewardedID     *string   `json:"rewarded_id"`
	AppOpenID      *string   `json:"app_open_id"`
	NativeID       *string   `json:"native_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsActive reports whether the account participates in selection.
func (a AdmobAccount) IsActive() bool { return a.Status == AccountStatusActive }

type CreateAccountRequest struct {
	AccountName    string  `json:"account_name" validate:"required"`
	Status         string  `json:"status" validate:"omitempty,oneof=active paused disabled"`
	Priority       int     `json:"priority"`
	Weight         int     `json:"weight" validate:"gte=0,lte=100"`
	BannerID       *string `json:"banner_id"`
	InterstitialID *string `json:"interstitial_id"`
	RewardedID     *string `json:"rewarded_id"`
	AppOpenID      *string `json:"app_open_id"`
	NativeID       *string `json:"native_id"`
}

type UpdateAccountRequest struct {
	AccountName    *string `json:"account_name,omitempty"`
	Status         *string `json:"status,omitempty" validate:"omitempty,oneof=active paused disabled"`
	Priority       *int    `json:"priority,omitempty"`
	Weight         *int    `json:"weight,omitempty" validate:"omitempty,gte=0,lte=100"`
	BannerID       *string `json:"banner_id,omitempty"`
	InterstitialID *string `json:"interstitial_id,omitempty"`
	RewardedID     *string `json:"rewarded_id,omitempty"`
	AppOpenID      *string `json:"app_open_id,omitempty"`
	NativeID       *string `json:"native_id,omitempty"`
}
