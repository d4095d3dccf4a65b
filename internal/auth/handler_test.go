package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/catalog_api/internal/identity"
	"github.com/shopfront/catalog_api/internal/logging"
)

func setupAccountApp(t *testing.T, repo identity.Repository) *fiber.App {
	t.Helper()
	svc, _ := newTestService(t, repo)
	h := NewHandler(svc, logging.Discard())
	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func TestRegisterHandler(t *testing.T) {
	app := setupAccountApp(t, identity.NewMemoryRepository())

	resp, body := postJSON(t, app, "/register", `{"name":"Ada","email":"ada@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result, ok := body["result"].(map[string]any)
	require.True(t, ok, "result should be the user object: %v", body)
	assert.Equal(t, "Ada", result["name"])
	assert.NotEmpty(t, result["_id"])
	assert.NotContains(t, result, "password")
	assert.NotEmpty(t, body["auth"])
}

func TestRegisterHandlerSoftFailure(t *testing.T) {
	app := setupAccountApp(t, failingRepo{})

	resp, body := postJSON(t, app, "/register", `{"name":"Ada","email":"ada@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, msgTryAgain, body["result"])
	assert.NotContains(t, body, "auth")
}

func TestLoginHandler(t *testing.T) {
	app := setupAccountApp(t, identity.NewMemoryRepository())
	postJSON(t, app, "/register", `{"name":"Ada","email":"ada@example.com","password":"secret"}`)

	resp, body := postJSON(t, app, "/login", `{"email":"ada@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotEmpty(t, body["auth"])
}

func TestLoginHandlerStatuses(t *testing.T) {
	app := setupAccountApp(t, identity.NewMemoryRepository())
	postJSON(t, app, "/register", `{"name":"Ada","email":"ada@example.com","password":"secret"}`)

	resp, _ := postJSON(t, app, "/login", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, app, "/login", ``)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, app, "/login", `{"email":"ada@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	failing := setupAccountApp(t, failingRepo{})
	resp, _ = postJSON(t, failing, "/login", `{"email":"ada@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRegisterHandlerUnknownContentTypeIsEmptyBody(t *testing.T) {
	app := setupAccountApp(t, identity.NewMemoryRepository())

	req := httptest.NewRequest(fiber.MethodPost, "/register", strings.NewReader(`{"name":"Ada"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	result, ok := body["result"].(map[string]any)
	require.True(t, ok, "result should be the user object: %v", body)
	assert.Equal(t, "", result["name"])
	assert.NotEmpty(t, result["_id"])
	assert.NotEmpty(t, body["auth"])
}

func TestRegisterHandlerMalformedJSON(t *testing.T) {
	app := setupAccountApp(t, identity.NewMemoryRepository())

	resp, body := postJSON(t, app, "/register", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, body["auth"])
}
