package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynamicapp/internal/database/testhelper"
	"dynamicapp/internal/handlers"
	"dynamicapp/internal/models"
	"dynamicapp/internal/repositories"
	"dynamicapp/internal/seed"
	"dynamicapp/internal/services"
)

// setupApp sets up a Fiber app backed by an in-memory SQLite store.
func setupApp(t *testing.T, seeded bool) *fiber.App {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := repositories.NewGORMEntityRepository(testhelper.OpenSQLite(t))
	if seeded {
		_, err := seed.Run(context.Background(), repo, log)
		require.NoError(t, err)
	}

	service := services.NewEntityService(repo, log)

	app := fiber.New()
	handlers.NewEntityHandler(service, log).RegisterRoutes(app.Group("/api/v1"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestEntityEndpoints_CRUDLifecycle(t *testing.T) {
	app := setupApp(t, false)

	// --- Create ---
	resp := doJSON(t, app, http.MethodPost, "/api/v1/entities", map[string]interface{}{
		"name":     "Widget",
		"category": "Tools",
		"price":    9.99,
		"quantity": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.DynamicEntity
	decode(t, resp, &created)
	assert.Greater(t, created.ID, 0)
	assert.True(t, created.IsActive)
	assert.Nil(t, created.ModifiedDate)
	assert.False(t, created.CreatedDate.IsZero())

	// --- Get ---
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/entities/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.DynamicEntity
	decode(t, resp, &fetched)
	assert.Equal(t, "Widget", fetched.Name)
	assert.True(t, fetched.Price.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, 5, fetched.Quantity)
	assert.True(t, fetched.IsActive)
	assert.Nil(t, fetched.ModifiedDate)

	// --- Update ---
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/entities/%d", created.ID), map[string]interface{}{
		"name":      "Widget Pro",
		"category":  "Tools",
		"price":     "12.50",
		"quantity":  3,
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.DynamicEntity
	decode(t, resp, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Widget Pro", updated.Name)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.ModifiedDate)
	assert.True(t, updated.CreatedDate.Equal(created.CreatedDate))

	// --- Delete ---
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/entities/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleteResp map[string]string
	decode(t, resp, &deleteResp)
	assert.Contains(t, deleteResp["message"], "deleted successfully")

	// Verify deletion
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/entities/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/entities/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEntityEndpoints_ListAndCategories(t *testing.T) {
	app := setupApp(t, true)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/entities", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entities []models.DynamicEntity
	decode(t, resp, &entities)
	require.Len(t, entities, 5)
	assert.Equal(t, "Coffee Maker", entities[0].Name)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/entities/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []string
	decode(t, resp, &categories)
	assert.Equal(t, []string{"Appliances", "Electronics", "Furniture", "Lighting", "Stationery"}, categories)
}

func TestEntityEndpoints_EmptyListIsArray(t *testing.T) {
	app := setupApp(t, false)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/entities", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestEntityEndpoints_ValidationFailure(t *testing.T) {
	app := setupApp(t, false)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/entities", map[string]interface{}{
		"name":     strings.Repeat("x", 101),
		"price":    0,
		"quantity": -1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, "Name cannot exceed 100 characters", body.Errors["name"])
	assert.Equal(t, "Category is required", body.Errors["category"])
	assert.Equal(t, "Price is required", body.Errors["price"])
	assert.Equal(t, "Quantity must be between 0 and 10,000", body.Errors["quantity"])
}

func TestEntityEndpoints_UpdateMissing(t *testing.T) {
	app := setupApp(t, false)

	resp := doJSON(t, app, http.MethodPut, "/api/v1/entities/999", map[string]interface{}{
		"name":     "Ghost",
		"category": "None",
		"price":    1,
		"quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEntityEndpoints_BadRequests(t *testing.T) {
	app := setupApp(t, false)

	for _, path := range []string{"/api/v1/entities/abc", "/api/v1/entities/0", "/api/v1/entities/-3"} {
		resp := doJSON(t, app, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entities", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
