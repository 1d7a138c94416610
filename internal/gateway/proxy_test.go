package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardToStripsPrefix(t *testing.T) {
	var gotPath, gotAuth, gotQuery string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer backend.Close()

	app := fiber.New()
	app.All("/api/*", NewServiceProxy().ForwardTo(backend.URL, "/api"))

	req := httptest.NewRequest(http.MethodGet, "/api/games/3498?lang=ru", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "/games/3498", gotPath)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "lang=ru", gotQuery)

	// Status and body pass through untouched.
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"ok": true}`, string(body))
}

func TestForwardToForwardsBody(t *testing.T) {
	var gotBody string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	app := fiber.New()
	app.All("/api/*", NewServiceProxy().ForwardTo(backend.URL, "/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"login": "alice"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"login": "alice"}`, gotBody)
}

func TestForwardToDownstreamUnreachable(t *testing.T) {
	app := fiber.New()
	// Nothing listens here.
	app.All("/api/*", NewServiceProxy().ForwardTo("http://127.0.0.1:1", "/api"))

	req := httptest.NewRequest(http.MethodGet, "/api/games", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestDealsSearchForcesJSONResponse(t *testing.T) {
	var gotQuery map[string][]string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"result": []}`))
	}))
	defer upstream.Close()

	app := fiber.New()
	app.Get("/api/deals", NewDealsHandler(upstream.URL).Search)

	req := httptest.NewRequest(http.MethodGet, "/api/deals?query=witcher&pagesize=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, []string{"witcher"}, gotQuery["query"])
	assert.Equal(t, []string{"json"}, gotQuery["response"])
	assert.Equal(t, []string{"5"}, gotQuery["pagesize"])
}

func TestDealsSearchRequiresQuery(t *testing.T) {
	app := fiber.New()
	app.Get("/api/deals", NewDealsHandler("http://example.invalid").Search)

	req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "query")
}
