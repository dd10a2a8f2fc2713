package admin

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"admob-switch/internal/models"
)

func (h *Handler) CreateApp(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAppRequest
	if !decodeValid(h, w, r, &req) {
		return
	}

	status := req.Status
	if status == "" {
		status = models.AppStatusActive
	}

	app, err := h.store.CreateApp(r.Context(), models.App{
		ID:          uuid.NewString(),
		PackageName: req.PackageName,
		AppName:     req.AppName,
		Description: req.Description,
		Status:      status,
	})
	if uniqueViolation(err) {
		writeJSONError(w, http.StatusConflict, "conflict", "Package name already registered")
		return
	}
	if storeError(w, err, "App") {
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *Handler) ListApps(w http.ResponseWriter, r *http.Request) {
	apps, err := h.store.ListApps(r.Context())
	if storeError(w, err, "App") {
		return
	}
	if apps == nil {
		apps = []models.App{}
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *Handler) GetApp(w http.ResponseWriter, r *http.Request) {
	app, err := h.store.GetApp(r.Context(), chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) UpdateApp(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAppRequest
	if !decodeValid(h, w, r, &req) {
		return
	}

	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}

	if req.AppName != nil {
		app.AppName = *req.AppName
	}
	if req.Description != nil {
		app.Description = req.Description
	}
	if req.Status != nil {
		app.Status = *req.Status
	}

	updated, err := h.store.UpdateApp(ctx, app)
	if storeError(w, err, "App") {
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteApp(w http.ResponseWriter, r *http.Request) {
	if storeError(w, h.store.DeleteApp(r.Context(), chi.URLParam(r, "id")), "App") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// Dashboard returns entity totals for the landing view.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CountAll(r.Context())
	if storeError(w, err, "Dashboard") {
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Analytics summarizes one app's ad events plus its active device count.
// Optional from/to query params (RFC 3339) bound the window.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}

	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid from timestamp")
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid to timestamp")
			return
		}
		to = &t
	}

	summary, err := h.store.AnalyticsSummary(ctx, app.ID, from, to)
	if storeError(w, err, "App") {
		return
	}
	activeDevices, err := h.store.CountActiveDevices(ctx, app.ID, h.now().AddDate(0, 0, -30))
	if storeError(w, err, "App") {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":        summary,
		"active_devices": activeDevices,
	})
}
