package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/catalog_api/internal/auth"
	"github.com/shopfront/catalog_api/internal/identity"
	"github.com/shopfront/catalog_api/internal/logging"
)

func setupAuthApp(t *testing.T) (*fiber.App, *auth.Tokens) {
	t.Helper()
	tokens, err := auth.NewTokens("gateway-secret")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/whoami", Authenticate(tokens, logging.Discard()), func(c *fiber.Ctx) error {
		id, ok := auth.CallerFrom(c.UserContext())
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		local, _ := c.Locals(callerIDLocal).(string)
		return c.SendString(id + "|" + local)
	})
	return app, tokens
}

func get(t *testing.T, app *fiber.App, authz string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	if authz != "" {
		req.Header.Set(fiber.HeaderAuthorization, authz)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	app, _ := setupAuthApp(t)

	status, body := get(t, app, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, msgTokenMissing, body)
}

func TestAuthenticateInvalidTokens(t *testing.T) {
	app, _ := setupAuthApp(t)

	other, err := auth.NewTokens("someone-else")
	require.NoError(t, err)
	forged, err := other.Issue(identity.PublicUser{ID: "user-1"})
	require.NoError(t, err)

	for _, authz := range []string{
		"Bearer",
		"Bearer ",
		"Bearer not-a-token",
		"Token abc.def.ghi",
		"Bearer " + forged,
	} {
		status, body := get(t, app, authz)
		assert.Equal(t, http.StatusUnauthorized, status, authz)
		assert.Equal(t, msgTokenInvalid, body, authz)
	}
}

func TestAuthenticateAttachesCaller(t *testing.T) {
	app, tokens := setupAuthApp(t)

	token, err := tokens.Issue(identity.PublicUser{ID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)

	status, body := get(t, app, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user-1|user-1", body)

	status, _ = get(t, app, "bearer "+token)
	assert.Equal(t, http.StatusOK, status)
}
