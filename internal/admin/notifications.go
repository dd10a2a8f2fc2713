package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"admob-switch/internal/models"
	"admob-switch/internal/push"
)

func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNotificationRequest
	if !decodeValid(h, w, r, &req) {
		return
	}

	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}

	n := models.Notification{
		ID:                   uuid.NewString(),
		AppID:                app.ID,
		Title:                req.Title,
		Message:              req.Message,
		Type:                 req.Type,
		Priority:             req.Priority,
		Status:               req.Status,
		TargetCountries:      req.TargetCountries,
		TargetAppVersions:    req.TargetAppVersions,
		MinAndroidVersion:    req.MinAndroidVersion,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		ImageURL:             req.ImageURL,
		ActionButtonText:     req.ActionButtonText,
		ActionType:           req.ActionType,
		ActionValue:          req.ActionValue,
		Cancelable:           true,
		MaxDisplays:          1,
		DisplayIntervalHours: 24,
	}
	if n.Type == "" {
		n.Type = "popup"
	}
	if n.Priority == "" {
		n.Priority = "normal"
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusDraft
	}
	if req.Cancelable != nil {
		n.Cancelable = *req.Cancelable
	}
	if req.MaxDisplays != nil {
		n.MaxDisplays = *req.MaxDisplays
	}
	if req.DisplayIntervalHours != nil {
		n.DisplayIntervalHours = *req.DisplayIntervalHours
	}
	if req.ShowOnAppLaunch != nil {
		n.ShowOnAppLaunch = *req.ShowOnAppLaunch
	}

	created, err := h.store.CreateNotification(ctx, n)
	if storeError(w, err, "Notification") {
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}

	notifications, err := h.store.ListNotificationsByApp(ctx, app.ID)
	if storeError(w, err, "Notification") {
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *Handler) UpdateNotification(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateNotificationRequest
	if !decodeValid(h, w, r, &req) {
		return
	}

	ctx := r.Context()
	n, err := h.store.GetNotification(ctx, chi.URLParam(r, "notificationID"))
	if storeError(w, err, "Notification") {
		return
	}

	if req.Title != nil {
		n.Title = *req.Title
	}
	if req.Message != nil {
		n.Message = *req.Message
	}
	if req.Type != nil {
		n.Type = *req.Type
	}
	if req.Priority != nil {
		n.Priority = *req.Priority
	}
	if req.Status != nil {
		n.Status = *req.Status
	}
	if req.TargetCountries != nil {
		n.TargetCountries = *req.TargetCountries
	}
	if req.TargetAppVersions != nil {
		n.TargetAppVersions = *req.TargetAppVersions
	}
	if req.MinAndroidVersion != nil {
		n.MinAndroidVersion = req.MinAndroidVersion
	}
	if req.StartDate != nil {
		n.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		n.EndDate = req.EndDate
	}
	if req.ImageURL != nil {
		n.ImageURL = req.ImageURL
	}
	if req.ActionButtonText != nil {
		n.ActionButtonText = req.ActionButtonText
	}
	if req.ActionType != nil {
		n.ActionType = req.ActionType
	}
	if req.ActionValue != nil {
		n.ActionValue = req.ActionValue
	}
	if req.Cancelable != nil {
		n.Cancelable = *req.Cancelable
	}
	if req.MaxDisplays != nil {
		n.MaxDisplays = *req.MaxDisplays
	}
	if req.DisplayIntervalHours != nil {
		n.DisplayIntervalHours = *req.DisplayIntervalHours
	}
	if req.ShowOnAppLaunch != nil {
		n.ShowOnAppLaunch = *req.ShowOnAppLaunch
	}

	updated, err := h.store.UpdateNotification(ctx, n)
	if storeError(w, err, "Notification") {
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if storeError(w, h.store.DeleteNotification(r.Context(), chi.URLParam(r, "notificationID")), "Notification") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// SendNotification fans a notification out over FCM to every registered
// device of the app. Best effort: per-token failures are counted, not
// retried.
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}
	n, err := h.store.GetNotification(ctx, chi.URLParam(r, "notificationID"))
	if storeError(w, err, "Notification") {
		return
	}
	if n.AppID != app.ID {
		writeJSONError(w, http.StatusNotFound, "not_found", "Notification not found")
		return
	}

	tokens, err := h.store.DeviceTokensByApp(ctx, app.ID)
	if storeError(w, err, "App") {
		return
	}

	msg := push.Message{Title: n.Title, Body: n.Message}
	if n.ImageURL != nil {
		msg.Image = *n.ImageURL
	}
	result := h.push.SendToTokens(ctx, tokens, msg, map[string]string{
		"notification_id": n.ID,
		"type":            n.Type,
	})

	if n.Status == models.NotificationStatusDraft || n.Status == models.NotificationStatusScheduled {
		n.Status = models.NotificationStatusSent
		if _, err := h.store.UpdateNotification(ctx, n); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "internal_error", "Sent but failed to update status")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": len(tokens),
		"success": result.Success,
		"failed":  result.Failed,
	})
}
