package models

import "time"

// Device is one registered client installation. FCMToken is unique per
// (app, device); re-registration updates the existing record. Country,
// AppVersion and AndroidVersion are the eligibility inputs and may be absent.
type Device struct {
	ID                 string    `json:"id"`
	AppID              string    `json:"app_id"`
	FCMToken           string    `json:"fcm_token"`
	Country            *string   `json:"country"`
	AppVersion         *string   `json:"app_version"`
	AndroidVersion     *int      `json:"android_version"`
	DeviceManufacturer *string   `json:"device_manufacturer"`
	DeviceModel        *string   `json:"device_model"`
	LastSeen           time.Time `json:"last_seen"`
	CreatedAt          time.Time `json:"created_at"`
}

type RegisterDeviceRequest struct {
	PackageName        string  `json:"package_name" validate:"required"`
	FCMToken           string  `json:"fcm_token" validate:"required"`
	Country            *string `json:"country"`
	AppVersion         *string `json:"app_version"`
	AndroidVersion     *int    `json:"android_version" validate:"omitempty,gte=1"`
	DeviceManufacturer *string `json:"device_manufacturer"`
	DeviceModel        *string `json:"device_model"`
}
