package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/shopfront/catalog_api/internal/identity"
)

const (
	msgTryAgain       = "Something went wrong, Please try after some time"
	msgCredentialsReq = "Email and password are required"
	msgUserNotFound   = "User not found"
	msgInternal       = "Internal server error"
	msgInvalidBody    = "Invalid request body"
)

// Handler exposes the register and login endpoints.
type Handler struct {
	svc      *Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Result identity.PublicUser `json:"result"`
	Auth   string              `json:"auth"`
}

// Register creates a user and returns it with a bearer token. Failures are
// reported as a 200 retry message. A body in a content type the parser does not
// understand registers empty fields, like a missing body.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			if !errors.Is(err, fiber.ErrUnprocessableEntity) {
				return fiber.NewError(http.StatusBadRequest, msgInvalidBody)
			}
			req = registerRequest{}
		}
	}
	session, err := h.svc.Register(c.UserContext(), identity.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		h.logger.Error("register failed", slog.Any("error", err))
		return c.Status(http.StatusOK).JSON(fiber.Map{"result": msgTryAgain})
	}
	return c.Status(http.StatusOK).JSON(registerResponse{Result: session.User, Auth: session.Token})
}

type loginRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User identity.PublicUser `json:"user"`
	Auth string              `json:"auth"`
}

// Login looks the user up by exact credential match and returns a bearer token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, msgInvalidBody)
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, msgCredentialsReq)
	}

	session, err := h.svc.Login(c.UserContext(), identity.Credentials{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrMissingCredentials):
			return fiber.NewError(http.StatusBadRequest, msgCredentialsReq)
		case errors.Is(err, identity.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, msgUserNotFound)
		case errors.Is(err, ErrSigning):
			h.logger.Error("login token signing failed", slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, msgTryAgain)
		default:
			h.logger.Error("login failed", slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, msgInternal)
		}
	}
	return c.Status(http.StatusOK).JSON(loginResponse{User: session.User, Auth: session.Token})
}
