package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"akun/internal/config"
	"akun/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewApp(t *testing.T) {
	cfg := &config.Config{
		Environment: "test",
		JWTSecret:   "test_jwt_secret",
	}
	db, err := gorm.Open(sqlite.Open("file:main_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	app, err := NewApp(cfg, db, new(services.MockMailer), new(services.MockImageStore))
	require.NoError(t, err)

	// Health endpoint is public.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Protected routes are gated.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/account", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Admin routes sit behind the same gate.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestOpenDatabase(t *testing.T) {
	// Empty DSN falls back to in-memory sqlite.
	db, err := openDatabase("")
	require.NoError(t, err)
	assert.NotNil(t, db)

	// A sqlite path is treated as sqlite.
	db, err = openDatabase("file:open_db_test?mode=memory&cache=shared")
	require.NoError(t, err)
	assert.NotNil(t, db)
}
