package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopfront/catalog_api/internal/auth"
)

// RegisterAccountRoutes wires the unauthenticated register and login endpoints.
func RegisterAccountRoutes(r fiber.Router, h *auth.Handler) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}
