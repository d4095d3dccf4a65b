package product

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/shopfront/catalog_api/internal/auth"
)

const (
	msgNoProducts  = "No Products Found."
	msgNoRecord    = "No Record Found."
	msgInternal    = "Internal server error"
	msgInvalidBody = "Invalid request body"
	msgNoCaller    = "Please provide valid token!"
)

// Handler exposes product HTTP endpoints. Every route must sit behind the
// authentication middleware; the owner always comes from the request context.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler builds a product HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Create stores the request body as a new product owned by the caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}
	fields, err := decodeFields(c)
	if err != nil {
		return err
	}
	p, err := h.service.Create(c.UserContext(), owner, fields)
	if err != nil {
		return h.internal("create product", err)
	}
	return c.Status(http.StatusOK).JSON(p)
}

// List returns the caller's products, or a sentinel body when there are none.
func (h *Handler) List(c *fiber.Ctx) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}
	products, err := h.service.List(c.UserContext(), owner)
	if err != nil {
		return h.internal("list products", err)
	}
	if len(products) == 0 {
		return c.Status(http.StatusOK).JSON(fiber.Map{"result": msgNoProducts})
	}
	return c.Status(http.StatusOK).JSON(products)
}

// Get returns one of the caller's products, or a sentinel body.
func (h *Handler) Get(c *fiber.Ctx) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.UserContext(), owner, c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(http.StatusOK).JSON(fiber.Map{"result": msgNoRecord})
		}
		return h.internal("get product", err)
	}
	return c.Status(http.StatusOK).JSON(p)
}

// Update applies a partial field update to one of the caller's products.
func (h *Handler) Update(c *fiber.Ctx) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}
	patch, err := decodeFields(c)
	if err != nil {
		return err
	}
	res, err := h.service.Update(c.UserContext(), owner, c.Params("id"), patch)
	if err != nil {
		return h.internal("update product", err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"acknowledged":  true,
		"matchedCount":  res.Matched,
		"modifiedCount": res.Modified,
	})
}

// Delete removes one of the caller's products.
func (h *Handler) Delete(c *fiber.Ctx) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}
	res, err := h.service.Delete(c.UserContext(), owner, c.Params("id"))
	if err != nil {
		return h.internal("delete product", err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"acknowledged": true,
		"deletedCount": res.Deleted,
	})
}

// Search returns the caller's products matching the key, possibly none.
func (h *Handler) Search(c *fiber.Ctx) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}
	products, err := h.service.Search(c.UserContext(), owner, c.Params("key"))
	if err != nil {
		return h.internal("search products", err)
	}
	return c.Status(http.StatusOK).JSON(products)
}

func (h *Handler) internal(op string, err error) error {
	h.logger.Error(op+" failed", slog.Any("error", err))
	return fiber.NewError(http.StatusInternalServerError, msgInternal)
}

func caller(c *fiber.Ctx) (string, error) {
	owner, ok := auth.CallerFrom(c.UserContext())
	if !ok {
		return "", fiber.NewError(http.StatusUnauthorized, msgNoCaller)
	}
	return owner, nil
}

func decodeFields(c *fiber.Ctx) (map[string]any, error) {
	fields := map[string]any{}
	if len(c.Body()) == 0 {
		return fields, nil
	}
	if err := c.BodyParser(&fields); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, msgInvalidBody)
	}
	return fields, nil
}
