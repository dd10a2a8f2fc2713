// Package admin serves the dashboard API: authentication, CRUD for apps,
// accounts, switching rules and notifications, and aggregate views.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"

	"admob-switch/internal/models"
	"admob-switch/internal/push"
	"admob-switch/internal/storage"
)

// Store is the persistence surface the admin API needs.
type Store interface {
	GetAdminByUsername(ctx context.Context, username string) (models.AdminUser, error)

	CreateApp(ctx context.Context, a models.App) (models.App, error)
	GetApp(ctx context.Context, id string) (models.App, error)
	ListApps(ctx context.Context) ([]models.App, error)
	UpdateApp(ctx context.Context, a models.App) (models.App, error)
	DeleteApp(ctx context.Context, id string) error
	CountAll(ctx context.Context) (storage.DashboardCounts, error)

	CreateAccount(ctx context.Context, a models.AdmobAccount) (models.AdmobAccount, error)
	GetAccount(ctx context.Context, id string) (models.AdmobAccount, error)
	ListAccountsByApp(ctx context.Context, appID string) ([]models.AdmobAccount, error)
	UpdateAccount(ctx context.Context, a models.AdmobAccount) (models.AdmobAccount, error)
	DeleteAccount(ctx context.Context, id string) error

	GetRuleByApp(ctx context.Context, appID string) (models.SwitchingRule, error)
	UpsertRule(ctx context.Context, r models.SwitchingRule) (models.SwitchingRule, error)
	DeleteRuleByApp(ctx context.Context, appID string) error

	CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error)
	GetNotification(ctx context.Context, id string) (models.Notification, error)
	ListNotificationsByApp(ctx context.Context, appID string) ([]models.Notification, error)
	UpdateNotification(ctx context.Context, n models.Notification) (models.Notification, error)
	DeleteNotification(ctx context.Context, id string) error

	DeviceTokensByApp(ctx context.Context, appID string) ([]string, error)
	CountActiveDevices(ctx context.Context, appID string, since time.Time) (int, error)
	AnalyticsSummary(ctx context.Context, appID string, from, to *time.Time) (models.AnalyticsSummary, error)
}

// Pusher fans a notification out to device tokens. *push.Client satisfies it.
type Pusher interface {
	SendToTokens(ctx context.Context, tokens []string, msg push.Message, data map[string]string) push.SendResult
}

type Handler struct {
	store     Store
	push      Pusher
	jwtSecret string
	tokenTTL  time.Duration
	validate  *validator.Validate
	now       func() time.Time
}

func NewHandler(store Store, pusher Pusher, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		store:     store,
		push:      pusher,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		validate:  validator.New(),
		now:       time.Now,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{"error": code, "message": message})
}

func decodeValid[T any](h *Handler, w http.ResponseWriter, r *http.Request, req *T) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}
	return true
}

func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// storeError maps common storage failures to a response. Returns true when
// it wrote one.
func storeError(w http.ResponseWriter, err error, notFoundWhat string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, storage.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", notFoundWhat+" not found")
	case uniqueViolation(err):
		writeJSONError(w, http.StatusConflict, "conflict", "Resource already exists")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Operation failed")
	}
	return true
}
