package handlers

import (
	"foodgram/internal/middleware"
	"foodgram/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile, password and subscription requests.
type UserHandler struct {
	users         *services.UserService
	subscriptions *services.RelationSet
	authService   *services.AuthService
	validate      *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, subscriptions *services.RelationSet, authService *services.AuthService, validate *validator.Validate) *UserHandler {
	return &UserHandler{
		users:         users,
		subscriptions: subscriptions,
		authService:   authService,
		validate:      validate,
	}
}

// RegisterRoutes registers the user routes. auth guards the routes that
// need a signed-in user.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.ListUsers)
	userRoutes.Get("/me", auth, h.Me)
	userRoutes.Post("/set_password", auth, h.SetPassword)
	userRoutes.Get("/subscriptions", auth, h.ListSubscriptions)
	userRoutes.Get("/:id", h.GetUser)
	userRoutes.Post("/:id/subscribe", auth, h.Subscribe)
	userRoutes.Delete("/:id/subscribe", auth, h.Unsubscribe)
}

// ListUsers handles GET /users?page=&limit=.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page, err := h.users.List(c.UserContext(), middleware.CallerFrom(c), pageFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// SetPasswordRequest represents the request body for a password change.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

func (h *UserHandler) SetPassword(c *fiber.Ctx) error {
	var req SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}
	if err := h.authService.SetPassword(c.UserContext(), middleware.CallerFrom(c), req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.Me(c.UserContext(), middleware.CallerFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.Profile(c.UserContext(), middleware.CallerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// ListSubscriptions handles GET /users/subscriptions?page=&limit=&recipes_limit=.
func (h *UserHandler) ListSubscriptions(c *fiber.Ctx) error {
	page, err := h.users.Subscriptions(c.UserContext(), middleware.CallerFrom(c), pageFrom(c), c.QueryInt("recipes_limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *UserHandler) Subscribe(c *fiber.Ctx) error {
	caller := middleware.CallerFrom(c)
	authorID := c.Params("id")
	if err := h.subscriptions.Add(c.UserContext(), caller, authorID); err != nil {
		return respondError(c, err)
	}
	view, err := h.users.Subscription(c.UserContext(), caller, authorID, c.QueryInt("recipes_limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *UserHandler) Unsubscribe(c *fiber.Ctx) error {
	if err := h.subscriptions.Remove(c.UserContext(), middleware.CallerFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
