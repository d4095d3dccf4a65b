package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopfront/catalog_api/internal/product"
)

// RegisterProductRoutes wires the product endpoints, each preceded by guards.
func RegisterProductRoutes(r fiber.Router, h *product.Handler, guards ...fiber.Handler) {
	chain := func(handler fiber.Handler) []fiber.Handler {
		out := make([]fiber.Handler, 0, len(guards)+1)
		return append(append(out, guards...), handler)
	}
	r.Post("/add-product", chain(h.Create)...)
	r.Get("/products", chain(h.List)...)
	r.Get("/product/:id", chain(h.Get)...)
	r.Put("/product/:id", chain(h.Update)...)
	r.Delete("/product/:id", chain(h.Delete)...)
	r.Get("/search/:key", chain(h.Search)...)
}
