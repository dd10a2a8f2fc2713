package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"admob-switch/internal/config"
	"admob-switch/internal/models"
)

type mockAdminStore struct {
	count   int
	created *models.AdminUser
}

func (m *mockAdminStore) CountAdmins(context.Context) (int, error) {
	return m.count, nil
}

func (m *mockAdminStore) CreateAdmin(_ context.Context, u models.AdminUser) (models.AdminUser, error) {
	m.created = &u
	return u, nil
}

func bootstrapConfig(username, password string) config.Config {
	var cfg config.Config
	cfg.Auth.BootstrapUsername = username
	cfg.Auth.BootstrapPassword = password
	return cfg
}

func TestBootstrapAdminSkipsWhenAdminsExist(t *testing.T) {
	store := &mockAdminStore{count: 2}
	err := bootstrapAdmin(context.Background(), store, bootstrapConfig("admin", "secret"))
	require.NoError(t, err)
	assert.Nil(t, store.created)
}

func TestBootstrapAdminSkipsWithoutPassword(t *testing.T) {
	store := &mockAdminStore{}
	err := bootstrapAdmin(context.Background(), store, bootstrapConfig("admin", ""))
	require.NoError(t, err)
	assert.Nil(t, store.created)
}

func TestBootstrapAdminCreatesFirstUser(t *testing.T) {
	store := &mockAdminStore{}
	err := bootstrapAdmin(context.Background(), store, bootstrapConfig("root", "hunter22"))
	require.NoError(t, err)

	require.NotNil(t, store.created)
	assert.Equal(t, "root", store.created.Username)
	assert.Equal(t, "admin", store.created.Role)
	assert.NotEmpty(t, store.created.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(store.created.PasswordHash), []byte("hunter22")))
}
