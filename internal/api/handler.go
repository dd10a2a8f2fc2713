// Package api serves the public v1 endpoints consumed by Android clients:
// config resolution, device registration, pending notifications, and event
// tracking.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"admob-switch/internal/models"
	"admob-switch/internal/storage"
	"admob-switch/internal/targeting"
)

// Store is the persistence surface the public API needs. *storage.Store
// satisfies it; tests substitute a mock.
type Store interface {
	GetAppByPackageName(ctx context.Context, packageName string) (models.App, error)
	ActiveAccountsByApp(ctx context.Context, appID string) ([]models.AdmobAccount, error)
	GetRuleByApp(ctx context.Context, appID string) (models.SwitchingRule, error)
	ScheduleLiveNotifications(ctx context.Context, appID string, now time.Time) ([]models.Notification, error)
	UpsertDevice(ctx context.Context, d models.Device) (models.Device, error)
	GetDevice(ctx context.Context, id string) (models.Device, error)
	InsertNotificationEvent(ctx context.Context, e models.NotificationEvent) (models.NotificationEvent, error)
	InsertAnalyticsEvent(ctx context.Context, e models.AnalyticsEvent) (models.AnalyticsEvent, error)
}

// AccountPicker selects one account for a config response.
type AccountPicker interface {
	Select(accounts []models.AdmobAccount, rule *models.SwitchingRule) *models.AdmobAccount
}

// Eligibility filters an app's live notifications for one device.
type Eligibility interface {
	PendingFor(ctx context.Context, device models.Device) ([]targeting.Payload, error)
}

type Handler struct {
	store       Store
	selector    AccountPicker
	eligibility Eligibility
	validate    *validator.Validate
	now         func() time.Time
	onSelection func(strategy string)
}

type Option func(*Handler)

// WithClock fixes the handler's notion of now. Tests use it.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithSelectionHook is called with the strategy label after every successful
// account selection. The server wires a metrics counter here.
func WithSelectionHook(fn func(strategy string)) Option {
	return func(h *Handler) { h.onSelection = fn }
}

func NewHandler(store Store, picker AccountPicker, eligibility Eligibility, opts ...Option) *Handler {
	h := &Handler{
		store:       store,
		selector:    picker,
		eligibility: eligibility,
		validate:    validator.New(),
		now:         time.Now,
		onSelection: func(string) {},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// fkViolation reports whether err is a foreign-key violation, which on the
// tracking endpoints means the client referenced an unknown entity.
func fkViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

type accountConfig struct {
	AccountName    string  `json:"account_name"`
	Status         string  `json:"status"`
	BannerID       *string `json:"banner_id"`
	InterstitialID *string `json:"interstitial_id"`
	RewardedID     *string `json:"rewarded_id"`
	AppOpenID      *string `json:"app_open_id"`
	NativeID       *string `json:"native_id"`
}

type appConfig struct {
	ID          string `json:"id"`
	PackageName string `json:"package_name"`
	AppName     string `json:"app_name"`
	Status      string `json:"status"`
}

type ruleConfig struct {
	Strategy         string `json:"strategy"`
	RotationInterval string `json:"rotation_interval,omitempty"`
	FallbackEnabled  bool   `json:"fallback_enabled"`
	ABTestingEnabled bool   `json:"ab_testing_enabled"`
}

type configBody struct {
	App           appConfig             `json:"app"`
	AdmobAccounts []accountConfig       `json:"admob_accounts"`
	SwitchingRule *ruleConfig           `json:"switching_rule,omitempty"`
	Notifications []models.Notification `json:"notifications"`
	Message       string                `json:"message,omitempty"`
}

// GetConfig resolves everything a client needs on launch: the account chosen
// by the app's switching rule and the notifications live right now.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := h.store.GetAppByPackageName(ctx, chi.URLParam(r, "packageName"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "App not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load config")
		return
	}

	accounts, err := h.store.ActiveAccountsByApp(ctx, app.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load config")
		return
	}

	var rule *models.SwitchingRule
	switch ruleRow, err := h.store.GetRuleByApp(ctx, app.ID); {
	case err == nil:
		rule = &ruleRow
	case errors.Is(err, storage.ErrNotFound):
		// no rule configured, selector defaults to first active
	default:
		writeError(w, http.StatusInternalServerError, "Failed to load config")
		return
	}

	body := configBody{
		App: appConfig{
			ID:          app.ID,
			PackageName: app.PackageName,
			AppName:     app.AppName,
			Status:      app.Status,
		},
		AdmobAccounts: []accountConfig{},
	}

	if selected := h.selector.Select(accounts, rule); selected != nil {
		strategy := "default"
		if rule != nil && rule.Strategy != "" {
			strategy = rule.Strategy
		}
		h.onSelection(strategy)
		body.AdmobAccounts = append(body.AdmobAccounts, accountConfig{
			AccountName:    selected.AccountName,
			Status:         selected.Status,
			BannerID:       selected.BannerID,
			InterstitialID: selected.InterstitialID,
			RewardedID:     selected.RewardedID,
			AppOpenID:      selected.AppOpenID,
			NativeID:       selected.NativeID,
		})
	} else {
		body.Message = "No active AdMob accounts found"
	}

	if rule != nil {
		body.SwitchingRule = &ruleConfig{
			Strategy:         rule.Strategy,
			RotationInterval: rule.RotationInterval,
			FallbackEnabled:  rule.FallbackEnabled,
			ABTestingEnabled: rule.ABTestingEnabled,
		}
	}

	notifications, err := h.store.ScheduleLiveNotifications(ctx, app.ID, h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load config")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	body.Notifications = notifications

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "config": body})
}

// RegisterDevice upserts a device record keyed by (app, fcm_token).
// Re-registration refreshes last_seen and any attributes the client sent.
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	app, err := h.store.GetAppByPackageName(ctx, req.PackageName)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "App not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register device")
		return
	}

	device, err := h.store.UpsertDevice(ctx, models.Device{
		ID:                 uuid.NewString(),
		AppID:              app.ID,
		FCMToken:           req.FCMToken,
		Country:            req.Country,
		AppVersion:         req.AppVersion,
		AndroidVersion:     req.AndroidVersion,
		DeviceManufacturer: req.DeviceManufacturer,
		DeviceModel:        req.DeviceModel,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "device_id": device.ID})
}

// PendingNotifications runs the eligibility chain for one device. Clients
// that have not registered pass their attributes as query parameters and get
// evaluated as an anonymous device with no display history.
func (h *Handler) PendingNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	app, err := h.store.GetAppByPackageName(ctx, q.Get("package_name"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "App not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load notifications")
		return
	}

	var device models.Device
	if id := q.Get("device_id"); id != "" {
		device, err = h.store.GetDevice(ctx, id)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && device.AppID != app.ID) {
			writeError(w, http.StatusNotFound, "Device not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load notifications")
			return
		}
	} else {
		device = models.Device{AppID: app.ID}
		if v := q.Get("country"); v != "" {
			device.Country = &v
		}
		if v := q.Get("app_version"); v != "" {
			device.AppVersion = &v
		}
		if v := q.Get("android_version"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid android_version")
				return
			}
			device.AndroidVersion = &n
		}
	}

	pending, err := h.eligibility.PendingFor(ctx, device)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"notifications": pending,
		"count":         len(pending),
	})
}

// TrackNotification appends a displayed/clicked/dismissed event. Displayed
// events feed the frequency-cap predicate on subsequent pending calls.
func (h *Handler) TrackNotification(w http.ResponseWriter, r *http.Request) {
	var req models.TrackNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.store.InsertNotificationEvent(r.Context(), models.NotificationEvent{
		ID:             uuid.NewString(),
		NotificationID: req.NotificationID,
		DeviceID:       req.DeviceID,
		EventType:      req.EventType,
		Timestamp:      h.now(),
	})
	if fkViolation(err) {
		writeError(w, http.StatusBadRequest, "Unknown notification or device")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to track event")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "event_id": event.ID})
}

// TrackAnalytics appends an ad-lifecycle event reported by a client.
func (h *Handler) TrackAnalytics(w http.ResponseWriter, r *http.Request) {
	var req models.TrackAnalyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	app, err := h.store.GetAppByPackageName(ctx, req.PackageName)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "App not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to track event")
		return
	}

	event, err := h.store.InsertAnalyticsEvent(ctx, models.AnalyticsEvent{
		ID:        uuid.NewString(),
		AppID:     app.ID,
		AccountID: req.AccountID,
		EventType: req.Event,
		AdType:    req.AdType,
		Value:     req.Value,
		Country:   req.Country,
		Timestamp: h.now(),
	})
	if fkViolation(err) {
		writeError(w, http.StatusBadRequest, "Unknown account")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to track event")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "event_id": event.ID})
}
