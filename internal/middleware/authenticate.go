package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shopfront/catalog_api/internal/auth"
)

const (
	callerIDLocal = "user_id"

	msgTokenMissing = "Token not found, please add token with header!"
	msgTokenInvalid = "Please provide valid token!"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Authenticate guards a route with a bearer token. A missing Authorization header
// yields 403, a malformed, forged or expired token 401. On success the caller
// identity from the token is stored in the request context and in Locals.
func Authenticate(tokens TokenVerifier, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authz == "" {
			return fiber.NewError(http.StatusForbidden, msgTokenMissing)
		}
		scheme, token, ok := strings.Cut(authz, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			return fiber.NewError(http.StatusUnauthorized, msgTokenInvalid)
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			logger.Debug("token rejected", slog.Any("error", err))
			return fiber.NewError(http.StatusUnauthorized, msgTokenInvalid)
		}

		id := claims.CallerID()
		c.Locals(callerIDLocal, id)
		c.SetUserContext(auth.WithCaller(c.UserContext(), id))
		return c.Next()
	}
}
