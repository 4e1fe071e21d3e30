package app_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dynamicapp/internal/app"
	"dynamicapp/internal/database"
	"dynamicapp/internal/database/testhelper"
	"dynamicapp/internal/repositories"
	"dynamicapp/internal/services"
	"dynamicapp/pkg/metrics"
)

func newDeps(t *testing.T, db *gorm.DB) *app.Dependencies {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := metrics.NewRegistry()
	service := services.NewEntityService(
		repositories.NewGORMEntityRepository(db),
		log,
		services.WithMetrics(metrics.NewEntityMetrics(reg)),
	)
	return &app.Dependencies{
		DB:                db,
		Service:           service,
		Registry:          reg,
		Logger:            log,
		DisableRequestLog: true,
	}
}

func TestHealth(t *testing.T) {
	db := testhelper.OpenSQLite(t)
	fiberApp := app.NewApp(*newDeps(t, db))

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	db := testhelper.OpenSQLite(t)
	fiberApp := app.NewApp(*newDeps(t, db))
	require.NoError(t, database.Close(db))

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	db := testhelper.OpenSQLite(t)
	fiberApp := app.NewApp(*newDeps(t, db))

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/api/v1/entities", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = fiberApp.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `dynamicapp_entity_operations_total{operation="list_all",outcome="success"} 1`)
}

func TestStoreFailureIsInternalError(t *testing.T) {
	db := testhelper.OpenSQLite(t)
	fiberApp := app.NewApp(*newDeps(t, db))
	require.NoError(t, database.Close(db))

	resp, err := fiberApp.Test(httptest.NewRequest(http.MethodGet, "/api/v1/entities/categories", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
