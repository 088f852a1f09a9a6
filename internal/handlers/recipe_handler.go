package handlers

import (
	"strings"

	"foodgram/internal/middleware"
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RecipeHandler handles HTTP requests for recipes and the caller's
// favorites and shopping cart.
type RecipeHandler struct {
	recipes      *services.RecipeService
	favorites    *services.RelationSet
	cart         *services.RelationSet
	shoppingList *services.ShoppingListService
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipes *services.RecipeService, favorites, cart *services.RelationSet, shoppingList *services.ShoppingListService) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		favorites:    favorites,
		cart:         cart,
		shoppingList: shoppingList,
	}
}

// RegisterRoutes registers the recipe routes. auth guards the routes that
// need a signed-in user.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	recipeRoutes := router.Group("/recipes")
	recipeRoutes.Get("/", h.ListRecipes)
	recipeRoutes.Post("/", auth, h.CreateRecipe)
	recipeRoutes.Get("/download_shopping_cart", auth, h.DownloadShoppingCart)
	recipeRoutes.Get("/:id", h.GetRecipe)
	recipeRoutes.Patch("/:id", auth, h.UpdateRecipe)
	recipeRoutes.Delete("/:id", auth, h.DeleteRecipe)
	recipeRoutes.Post("/:id/favorite", auth, h.relationAdd(h.favorites))
	recipeRoutes.Delete("/:id/favorite", auth, h.relationRemove(h.favorites))
	recipeRoutes.Post("/:id/shopping_cart", auth, h.relationAdd(h.cart))
	recipeRoutes.Delete("/:id/shopping_cart", auth, h.relationRemove(h.cart))
}

// tagSlugs collects ?tags=a&tags=b and ?tags=a,b forms.
func tagSlugs(c *fiber.Ctx) []string {
	var slugs []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("tags") {
		for _, slug := range strings.Split(string(raw), ",") {
			if slug = strings.TrimSpace(slug); slug != "" {
				slugs = append(slugs, slug)
			}
		}
	}
	return slugs
}

func pageFrom(c *fiber.Ctx) services.Page {
	return services.Page{
		Number: c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", services.DefaultPageLimit),
	}
}

// ListRecipes handles GET /recipes with filtering, ordering and pagination.
func (h *RecipeHandler) ListRecipes(c *fiber.Ctx) error {
	filter := services.RecipeFilter{
		AuthorID:      c.Query("author"),
		TagSlugs:      tagSlugs(c),
		FavoritedOnly: c.QueryBool("is_favorited"),
		InCartOnly:    c.QueryBool("is_in_shopping_cart"),
		OrderBy:       c.Query("ordering"),
	}
	page, err := h.recipes.List(c.UserContext(), middleware.CallerFrom(c), filter, pageFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *RecipeHandler) GetRecipe(c *fiber.Ctx) error {
	recipe, err := h.recipes.Get(c.UserContext(), middleware.CallerFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

func (h *RecipeHandler) CreateRecipe(c *fiber.Ctx) error {
	var input services.RecipeInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadBody(c, err)
	}
	recipe, err := h.recipes.Create(c.UserContext(), middleware.CallerFrom(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	var input services.RecipeInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadBody(c, err)
	}
	recipe, err := h.recipes.Update(c.UserContext(), middleware.CallerFrom(c), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	if err := h.recipes.Delete(c.UserContext(), middleware.CallerFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// relationAdd adds the recipe to the caller's relation and responds with
// the compact recipe.
func (h *RecipeHandler) relationAdd(relation *services.RelationSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := relation.Add(c.UserContext(), middleware.CallerFrom(c), id); err != nil {
			return respondError(c, err)
		}
		recipe, err := h.recipes.Short(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(recipe)
	}
}

func (h *RecipeHandler) relationRemove(relation *services.RelationSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := relation.Remove(c.UserContext(), middleware.CallerFrom(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadShoppingCart sends the caller's shopping list as a text file.
func (h *RecipeHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	list, err := h.shoppingList.Build(c.UserContext(), middleware.CallerFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment("shopping-list.txt")
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(list.Text())
}
