package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"admob-switch/internal/models"
)

func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}

	rule, err := h.store.GetRuleByApp(ctx, app.ID)
	if storeError(w, err, "Rule") {
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// PutRule creates or replaces the app's switching rule.
func (h *Handler) PutRule(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertRuleRequest
	if !decodeValid(h, w, r, &req) {
		return
	}

	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}

	interval := req.RotationInterval
	if interval == "" {
		interval = models.IntervalDaily
	}
	fallback := true
	if req.FallbackEnabled != nil {
		fallback = *req.FallbackEnabled
	}
	abTesting := req.Strategy == models.StrategyABTesting
	if req.ABTestingEnabled != nil {
		abTesting = *req.ABTestingEnabled
	}

	rule, err := h.store.UpsertRule(ctx, models.SwitchingRule{
		ID:               uuid.NewString(),
		AppID:            app.ID,
		Strategy:         req.Strategy,
		RotationInterval: interval,
		FallbackEnabled:  fallback,
		ABTestingEnabled: abTesting,
		GeographicRules:  req.GeographicRules,
	})
	if storeError(w, err, "Rule") {
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}
	if storeError(w, h.store.DeleteRuleByApp(ctx, app.ID), "Rule") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
