package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"productapi/internal/app"
	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

var (
	lenient = validation.Policy{Mode: validation.Lenient, Errors: validation.FirstError}
	strict  = validation.Policy{Mode: validation.Strict, Errors: validation.FirstError}
)

// setupApp builds the full pipeline over a seeded in-memory store.
func setupApp(t *testing.T, createPolicy, updatePolicy validation.Policy) *fiber.App {
	t.Helper()

	apiKeys, err := services.NewAPIKeyService(testAPIKey, "")
	require.NoError(t, err)

	repo := repositories.NewMemoryProductRepository(repositories.NewSequenceIDGenerator())
	repo.Seed(app.DefaultProducts()...)

	return app.New(app.Dependencies{
		Products:         services.NewProductService(repo),
		APIKeys:          apiKeys,
		CreateValidation: createPolicy,
		UpdateValidation: updatePolicy,
		AccessLog:        io.Discard,
	})
}

func doRequest(t *testing.T, a *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			jsonBody, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(jsonBody)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-api-key", testAPIKey)

	resp, err := a.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func messageOf(t *testing.T, data []byte) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestProductEndpointsWithoutAuth(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/products"},
		{http.MethodGet, "/api/products/1"},
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/1"},
		{http.MethodDelete, "/api/products/1"},
	}

	for _, r := range routes {
		req := httptest.NewRequest(r.method, r.path, strings.NewReader(`{"name":"X","price":1}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := a.Test(req, -1)
		require.NoError(t, err)
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", r.method, r.path)
		assert.Equal(t, "Unauthorized: API Key missing", messageOf(t, data))

		req = httptest.NewRequest(r.method, r.path, strings.NewReader(`{"name":"X","price":1}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", "wrong-key")
		resp, err = a.Test(req, -1)
		require.NoError(t, err)
		data, _ = io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", r.method, r.path)
		assert.Equal(t, "Forbidden: Invalid API Key", messageOf(t, data))
	}

	// The product with ID 1 survived every rejected request.
	resp, _ := doRequest(t, a, http.MethodGet, "/api/products/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPublicRoutes(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello, World!", string(data))

	resp, err = a.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	data, _ = io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"status":"healthy"`)
}

func TestGetProducts(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	resp, data := doRequest(t, a, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.Unmarshal(data, &products))
	require.Len(t, products, 4)
	for i, want := range []string{"1", "2", "3", "4"} {
		assert.Equal(t, want, products[i].ID)
	}
	assert.Equal(t, "Laptop", products[0].Name)
	assert.False(t, products[2].InStock)
}

func TestGetProductByIDIsIdempotent(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	resp, first := doRequest(t, a, http.MethodGet, "/api/products/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, second := doRequest(t, a, http.MethodGet, "/api/products/2", nil)

	assert.Equal(t, first, second)
	assert.JSONEq(t, `{"id":"2","name":"Mouse","description":"Wireless optical mouse","price":25,"category":"Electronics","inStock":true}`, string(first))
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	newProduct := map[string]any{
		"id":          "1",
		"name":        "Smartphone",
		"description": "Latest model smartphone",
		"price":       799.99,
		"category":    "Electronics",
		"inStock":     true,
	}
	resp, data := doRequest(t, a, http.MethodPost, "/api/products", newProduct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Product
	require.NoError(t, json.Unmarshal(data, &created))
	assert.NotEmpty(t, created.ID)
	assert.NotContains(t, []string{"1", "2", "3", "4"}, created.ID, "the id is new and never client supplied")
	assert.Equal(t, "Smartphone", created.Name)
	assert.Equal(t, 799.99, created.Price)

	resp, data = doRequest(t, a, http.MethodGet, "/api/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	require.NoError(t, json.Unmarshal(data, &fetched))
	assert.Equal(t, created, fetched)
}

func TestCreateWithOnlyRequiredFields(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	resp, data := doRequest(t, a, http.MethodPost, "/api/products", map[string]any{"name": "Cable", "price": 0})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":"5","name":"Cable","description":"","price":0,"category":"","inStock":false}`, string(data))
}

func TestCreateValidation(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"negative price", map[string]any{"name": "Lamp", "price": -1}, "Product price is required and must be a non-negative number."},
		{"missing name", map[string]any{"price": 10}, "Product name is required and must be a non-empty string."},
		{"empty body", "", "Product name is required and must be a non-empty string."},
		{"wrong inStock type", map[string]any{"name": "Lamp", "price": 1, "inStock": "yes"}, "Product inStock must be a boolean."},
		{"malformed json", `{"name": "Lamp",`, "Invalid JSON payload"},
		{"json array", `[1,2]`, "Request body must be a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doRequest(t, a, http.MethodPost, "/api/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.message, messageOf(t, data))
		})
	}

	resp, data := doRequest(t, a, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	require.NoError(t, json.Unmarshal(data, &products))
	assert.Len(t, products, 4, "rejected payloads never reach the store")
}

func TestStrictValidationRejectsZeroPrice(t *testing.T) {
	a := setupApp(t, strict, strict)

	resp, data := doRequest(t, a, http.MethodPost, "/api/products", map[string]any{
		"name": "Lamp", "price": 0, "description": "Desk lamp", "category": "Home", "inStock": true,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, messageOf(t, data), "price")

	resp, data = doRequest(t, a, http.MethodPut, "/api/products/1", map[string]any{"name": "Laptop", "price": 10})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Product description is required and must be a string.", messageOf(t, data))
}

func TestCollectAllValidationErrors(t *testing.T) {
	all := validation.Policy{Mode: validation.Lenient, Errors: validation.AllErrors}
	a := setupApp(t, all, all)

	resp, data := doRequest(t, a, http.MethodPost, "/api/products", map[string]any{"price": -5, "category": 3})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "Product name is required and must be a non-empty string.", body.Message)
	assert.Equal(t, []string{
		"Product name is required and must be a non-empty string.",
		"Product price is required and must be a non-negative number.",
		"Product category must be a string.",
	}, body.Errors)
}

func TestUpdatePreservesIdentity(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	resp, data := doRequest(t, a, http.MethodPut, "/api/products/1", map[string]any{
		"id":    "42",
		"name":  "Laptop Pro",
		"price": 1500,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Product
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "1", updated.ID)
	assert.Equal(t, "Laptop Pro", updated.Name)
	assert.Equal(t, 1500.0, updated.Price)
	// Fields absent from the payload keep their values.
	assert.Equal(t, "Powerful laptop for work and gaming", updated.Description)
	assert.Equal(t, "Electronics", updated.Category)
	assert.True(t, updated.InStock)

	resp, data = doRequest(t, a, http.MethodGet, "/api/products/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	require.NoError(t, json.Unmarshal(data, &fetched))
	assert.Equal(t, updated, fetched)

	resp, _ = doRequest(t, a, http.MethodGet, "/api/products/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteIsTerminal(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	resp, data := doRequest(t, a, http.MethodDelete, "/api/products/3", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, data)

	resp, data = doRequest(t, a, http.MethodGet, "/api/products/3", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product with ID 3 not found", messageOf(t, data))

	resp, _ = doRequest(t, a, http.MethodDelete, "/api/products/3", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A new product never reuses the deleted id.
	resp, data = doRequest(t, a, http.MethodPost, "/api/products", map[string]any{"name": "Tablet", "price": 300})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	require.NoError(t, json.Unmarshal(data, &created))
	assert.NotEqual(t, "3", created.ID)
	assert.NotEqual(t, "4", created.ID)
}

func TestUnknownIDReturnsNotFound(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	requests := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]any{"name": "Ghost", "price": 1}},
		{http.MethodDelete, nil},
	}
	for _, r := range requests {
		resp, data := doRequest(t, a, r.method, "/api/products/999", r.body)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, r.method)
		assert.Contains(t, string(data), "999", r.method)
		assert.Equal(t, "Product with ID 999 not found", messageOf(t, data))
	}
}

func TestUpdateValidationRunsBeforeLookup(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	// An invalid payload is rejected with 400 even for an unknown id.
	resp, data := doRequest(t, a, http.MethodPut, "/api/products/999", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Product name is required and must be a non-empty string.", messageOf(t, data))
}

func TestAPIKeyGuardStaysOnProductRoutes(t *testing.T) {
	a := setupApp(t, lenient, lenient)

	for _, path := range []string{"/api/productsfoo", "/api/products-archive/1"} {
		resp, err := a.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.NotEqual(t, "Unauthorized: API Key missing", messageOf(t, data), path)
	}

	// A trailing slash still reaches the guarded list route.
	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/api/products/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReadTimeoutCutsReadDelayShort(t *testing.T) {
	apiKeys, err := services.NewAPIKeyService(testAPIKey, "")
	require.NoError(t, err)

	repo := repositories.NewMemoryProductRepository(nil)
	repo.Seed(app.DefaultProducts()...)

	a := app.New(app.Dependencies{
		Products:         services.NewProductService(repo, services.WithReadDelay(2*time.Second)),
		APIKeys:          apiKeys,
		CreateValidation: lenient,
		UpdateValidation: lenient,
		ReadTimeout:      30 * time.Millisecond,
		AccessLog:        io.Discard,
	})

	start := time.Now()
	resp, data := doRequest(t, a, http.MethodGet, "/api/products/1", nil)
	assert.Less(t, time.Since(start), time.Second, "the delay is abandoned at the deadline")
	assert.Equal(t, http.StatusRequestTimeout, resp.StatusCode)
	assert.Equal(t, "Request Timeout", messageOf(t, data))

	// Routes without a read delay are unaffected.
	resp, _ = doRequest(t, a, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
