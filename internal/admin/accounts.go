package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"admob-switch/internal/models"
)

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if !decodeValid(h, w, r, &req) {
		return
	}

	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}

	status := req.Status
	if status == "" {
		status = models.AccountStatusActive
	}

	account, err := h.store.CreateAccount(ctx, models.AdmobAccount{
		ID:             uuid.NewString(),
		AppID:          app.ID,
		AccountName:    req.AccountName,
		Status:         status,
		Priority:       req.Priority,
		Weight:         req.Weight,
		BannerID:       req.BannerID,
		InterstitialID: req.InterstitialID,
		RewardedID:     req.RewardedID,
		AppOpenID:      req.AppOpenID,
		NativeID:       req.NativeID,
	})
	if storeError(w, err, "Account") {
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.store.GetApp(ctx, chi.URLParam(r, "id"))
	if storeError(w, err, "App") {
		return
	}

	accounts, err := h.store.ListAccountsByApp(ctx, app.ID)
	if storeError(w, err, "Account") {
		return
	}
	if accounts == nil {
		accounts = []models.AdmobAccount{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAccountRequest
	if !decodeValid(h, w, r, &req) {
		return
	}

	ctx := r.Context()
	account, err := h.store.GetAccount(ctx, chi.URLParam(r, "accountID"))
	if storeError(w, err, "Account") {
		return
	}

	if req.AccountName != nil {
		account.AccountName = *req.AccountName
	}
	if req.Status != nil {
		account.Status = *req.Status
	}
	if req.Priority != nil {
		account.Priority = *req.Priority
	}
	if req.Weight != nil {
		account.Weight = *req.Weight
	}
	if req.BannerID != nil {
		account.BannerID = req.BannerID
	}
	if req.InterstitialID != nil {
		account.InterstitialID = req.InterstitialID
	}
	if req.RewardedID != nil {
		account.RewardedID = req.RewardedID
	}
	if req.AppOpenID != nil {
		account.AppOpenID = req.AppOpenID
	}
	if req.NativeID != nil {
		account.NativeID = req.NativeID
	}

	updated, err := h.store.UpdateAccount(ctx, account)
	if storeError(w, err, "Account") {
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if storeError(w, h.store.DeleteAccount(r.Context(), chi.URLParam(r, "accountID")), "Account") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
