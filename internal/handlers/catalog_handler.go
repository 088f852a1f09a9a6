package handlers

import (
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the ingredient and tag catalog.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/tags", h.ListTags)
	router.Get("/tags/:id", h.GetTag)
	router.Get("/ingredients", h.ListIngredients)
	router.Get("/ingredients/:id", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tags)
}

func (h *CatalogHandler) GetTag(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(c, services.NotFoundError("tag", c.Params("id")))
	}
	tag, err := h.service.GetTag(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tag)
}

// ListIngredients handles GET /ingredients?name=<prefix>.
func (h *CatalogHandler) ListIngredients(c *fiber.Ctx) error {
	ingredients, err := h.service.ListIngredients(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ingredients)
}

func (h *CatalogHandler) GetIngredient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(c, services.NotFoundError("ingredient", c.Params("id")))
	}
	ingredient, err := h.service.GetIngredient(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ingredient)
}
