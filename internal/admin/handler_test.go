package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"admob-switch/internal/models"
	"admob-switch/internal/push"
	"admob-switch/internal/storage"
)

type fakeStore struct {
	admins        map[string]models.AdminUser
	apps          map[string]models.App
	accounts      map[string]models.AdmobAccount
	rules         map[string]models.SwitchingRule
	notifications map[string]models.Notification
	tokens        map[string][]string

	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		admins:        map[string]models.AdminUser{},
		apps:          map[string]models.App{},
		accounts:      map[string]models.AdmobAccount{},
		rules:         map[string]models.SwitchingRule{},
		notifications: map[string]models.Notification{},
		tokens:        map[string][]string{},
	}
}

func (f *fakeStore) GetAdminByUsername(_ context.Context, username string) (models.AdminUser, error) {
	u, ok := f.admins[username]
	if !ok {
		return models.AdminUser{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateApp(_ context.Context, a models.App) (models.App, error) {
	for _, existing := range f.apps {
		if existing.PackageName == a.PackageName {
			return models.App{}, errDuplicate
		}
	}
	f.apps[a.ID] = a
	return a, nil
}

func (f *fakeStore) GetApp(_ context.Context, id string) (models.App, error) {
	a, ok := f.apps[id]
	if !ok {
		return models.App{}, storage.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) ListApps(context.Context) ([]models.App, error) {
	var out []models.App
	for _, a := range f.apps {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) UpdateApp(_ context.Context, a models.App) (models.App, error) {
	if _, ok := f.apps[a.ID]; !ok {
		return models.App{}, storage.ErrNotFound
	}
	f.apps[a.ID] = a
	return a, nil
}

func (f *fakeStore) DeleteApp(_ context.Context, id string) error {
	if _, ok := f.apps[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.apps, id)
	return nil
}

func (f *fakeStore) CountAll(context.Context) (storage.DashboardCounts, error) {
	return storage.DashboardCounts{
		Apps:          len(f.apps),
		Accounts:      len(f.accounts),
		Notifications: len(f.notifications),
	}, nil
}

func (f *fakeStore) CreateAccount(_ context.Context, a models.AdmobAccount) (models.AdmobAccount, error) {
	f.accounts[a.ID] = a
	return a, nil
}

func (f *fakeStore) GetAccount(_ context.Context, id string) (models.AdmobAccount, error) {
	a, ok := f.accounts[id]
	if !ok {
		return models.AdmobAccount{}, storage.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) ListAccountsByApp(_ context.Context, appID string) ([]models.AdmobAccount, error) {
	var out []models.AdmobAccount
	for _, a := range f.accounts {
		if a.AppID == appID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAccount(_ context.Context, a models.AdmobAccount) (models.AdmobAccount, error) {
	if _, ok := f.accounts[a.ID]; !ok {
		return models.AdmobAccount{}, storage.ErrNotFound
	}
	f.accounts[a.ID] = a
	return a, nil
}

func (f *fakeStore) DeleteAccount(_ context.Context, id string) error {
	if _, ok := f.accounts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeStore) GetRuleByApp(_ context.Context, appID string) (models.SwitchingRule, error) {
	r, ok := f.rules[appID]
	if !ok {
		return models.SwitchingRule{}, storage.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) UpsertRule(_ context.Context, r models.SwitchingRule) (models.SwitchingRule, error) {
	f.rules[r.AppID] = r
	return r, nil
}

func (f *fakeStore) DeleteRuleByApp(_ context.Context, appID string) error {
	if _, ok := f.rules[appID]; !ok {
		return storage.ErrNotFound
	}
	delete(f.rules, appID)
	return nil
}

func (f *fakeStore) CreateNotification(_ context.Context, n models.Notification) (models.Notification, error) {
	f.notifications[n.ID] = n
	return n, nil
}

func (f *fakeStore) GetNotification(_ context.Context, id string) (models.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return models.Notification{}, storage.ErrNotFound
	}
	return n, nil
}

func (f *fakeStore) ListNotificationsByApp(_ context.Context, appID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.AppID == appID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateNotification(_ context.Context, n models.Notification) (models.Notification, error) {
	if _, ok := f.notifications[n.ID]; !ok {
		return models.Notification{}, storage.ErrNotFound
	}
	f.notifications[n.ID] = n
	return n, nil
}

func (f *fakeStore) DeleteNotification(_ context.Context, id string) error {
	if _, ok := f.notifications[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.notifications, id)
	return nil
}

func (f *fakeStore) DeviceTokensByApp(_ context.Context, appID string) ([]string, error) {
	return f.tokens[appID], nil
}

func (f *fakeStore) CountActiveDevices(_ context.Context, appID string, _ time.Time) (int, error) {
	return len(f.tokens[appID]), nil
}

func (f *fakeStore) AnalyticsSummary(context.Context, string, *time.Time, *time.Time) (models.AnalyticsSummary, error) {
	return models.AnalyticsSummary{TotalEvents: 3, Impressions: 2, Clicks: 1}, nil
}

var errDuplicate = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

type fakePusher struct {
	sentTokens []string
	lastMsg    push.Message
	lastData   map[string]string
}

func (p *fakePusher) SendToTokens(_ context.Context, tokens []string, msg push.Message, data map[string]string) push.SendResult {
	p.sentTokens = tokens
	p.lastMsg = msg
	p.lastData = data
	return push.SendResult{Success: len(tokens)}
}

const (
	testSecret   = "test-secret"
	testPassword = "hunter22"
)

func newTestServer(t *testing.T) (*fakeStore, *fakePusher, http.Handler) {
	t.Helper()
	store := newFakeStore()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	store.admins["root"] = models.AdminUser{ID: "adm-1", Username: "root", PasswordHash: string(hash), Role: "admin"}

	pusher := &fakePusher{}
	h := NewHandler(store, pusher, testSecret, time.Hour)
	return store, pusher, Routes(h)
}

func login(t *testing.T, router http.Handler) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": "root", "password": testPassword})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token, _ := resp["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginWrongPassword(t *testing.T) {
	_, _, router := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "root", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, _, router := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/apps", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAppAndDuplicate(t *testing.T) {
	_, _, router := newTestServer(t)
	token := login(t, router)

	payload := map[string]any{"package_name": "com.example.game", "app_name": "Game"}
	w := doJSON(t, router, http.MethodPost, "/apps", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var app models.App
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &app))
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.AppStatusActive, app.Status)

	w = doJSON(t, router, http.MethodPost, "/apps", token, payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateAppPatchesOnlyGivenFields(t *testing.T) {
	store, _, router := newTestServer(t)
	token := login(t, router)

	desc := "a game"
	store.apps["app-1"] = models.App{ID: "app-1", PackageName: "com.example.game", AppName: "Game", Description: &desc, Status: models.AppStatusActive}

	w := doJSON(t, router, http.MethodPut, "/apps/app-1", token, map[string]any{"status": "paused"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var app models.App
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &app))
	assert.Equal(t, models.AppStatusPaused, app.Status)
	assert.Equal(t, "Game", app.AppName)
	require.NotNil(t, app.Description)
	assert.Equal(t, "a game", *app.Description)
}

func TestCreateAccountUnderUnknownApp(t *testing.T) {
	_, _, router := newTestServer(t)
	token := login(t, router)

	w := doJSON(t, router, http.MethodPost, "/apps/missing/accounts", token,
		map[string]any{"account_name": "primary"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutRuleDefaults(t *testing.T) {
	store, _, router := newTestServer(t)
	token := login(t, router)
	store.apps["app-1"] = models.App{ID: "app-1", PackageName: "com.example.game"}

	w := doJSON(t, router, http.MethodPut, "/apps/app-1/rule", token,
		map[string]any{"strategy": "rotation"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rule models.SwitchingRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
	assert.Equal(t, models.StrategyRotation, rule.Strategy)
	assert.Equal(t, models.IntervalDaily, rule.RotationInterval)
	assert.True(t, rule.FallbackEnabled)
	assert.False(t, rule.ABTestingEnabled)
}

func TestPutRuleRejectsUnknownStrategy(t *testing.T) {
	store, _, router := newTestServer(t)
	token := login(t, router)
	store.apps["app-1"] = models.App{ID: "app-1"}

	w := doJSON(t, router, http.MethodPut, "/apps/app-1/rule", token,
		map[string]any{"strategy": "coin_flip"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateNotificationDefaults(t *testing.T) {
	store, _, router := newTestServer(t)
	token := login(t, router)
	store.apps["app-1"] = models.App{ID: "app-1"}

	w := doJSON(t, router, http.MethodPost, "/apps/app-1/notifications", token,
		map[string]any{"title": "Update available", "message": "Get 2.0"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var n models.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &n))
	assert.Equal(t, models.NotificationStatusDraft, n.Status)
	assert.Equal(t, "popup", n.Type)
	assert.Equal(t, "normal", n.Priority)
	assert.Equal(t, 1, n.MaxDisplays)
	assert.Equal(t, 24, n.DisplayIntervalHours)
	assert.True(t, n.Cancelable)
	assert.False(t, n.ShowOnAppLaunch)
}

func TestSendNotificationFansOut(t *testing.T) {
	store, pusher, router := newTestServer(t)
	token := login(t, router)

	store.apps["app-1"] = models.App{ID: "app-1"}
	store.notifications["n-1"] = models.Notification{
		ID: "n-1", AppID: "app-1", Title: "Hello", Message: "World",
		Status: models.NotificationStatusDraft,
	}
	store.tokens["app-1"] = []string{"tok-1", "tok-2", "tok-3"}

	w := doJSON(t, router, http.MethodPost, "/apps/app-1/notifications/n-1/send", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["devices"])
	assert.Equal(t, float64(3), resp["success"])

	assert.Equal(t, []string{"tok-1", "tok-2", "tok-3"}, pusher.sentTokens)
	assert.Equal(t, "Hello", pusher.lastMsg.Title)
	assert.Equal(t, "n-1", pusher.lastData["notification_id"])

	assert.Equal(t, models.NotificationStatusSent, store.notifications["n-1"].Status)
}

func TestSendNotificationWrongApp(t *testing.T) {
	store, _, router := newTestServer(t)
	token := login(t, router)

	store.apps["app-1"] = models.App{ID: "app-1"}
	store.notifications["n-1"] = models.Notification{ID: "n-1", AppID: "other-app"}

	w := doJSON(t, router, http.MethodPost, "/apps/app-1/notifications/n-1/send", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardCounts(t *testing.T) {
	store, _, router := newTestServer(t)
	token := login(t, router)

	store.apps["app-1"] = models.App{ID: "app-1"}
	store.apps["app-2"] = models.App{ID: "app-2"}

	w := doJSON(t, router, http.MethodGet, "/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var counts storage.DashboardCounts
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
	assert.Equal(t, 2, counts.Apps)
}

func TestAnalyticsRejectsBadWindow(t *testing.T) {
	store, _, router := newTestServer(t)
	token := login(t, router)
	store.apps["app-1"] = models.App{ID: "app-1"}

	w := doJSON(t, router, http.MethodGet, "/apps/app-1/analytics?from=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
