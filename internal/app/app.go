package app

import (
	"time"

	"foodgram/internal/handlers"
	"foodgram/internal/middleware"
	"foodgram/internal/repositories"
	"foodgram/internal/services"
	"foodgram/internal/storage"
	"foodgram/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Options configures the HTTP application.
type Options struct {
	DB           *gorm.DB
	JWTSecret    string
	Images       storage.ImageStore
	Publisher    services.EventPublisher // nil disables events
	RateLimitMax int                     // requests per second per client; <= 0 disables
	AccessLog    bool
	MediaRoot    string // served at MediaURL when set
	MediaURL     string
}

// Services is every service the application wires together.
type Services struct {
	Auth          *services.AuthService
	Catalog       *services.CatalogService
	Recipes       *services.RecipeService
	Users         *services.UserService
	ShoppingList  *services.ShoppingListService
	Favorites     *services.RelationSet
	ShoppingCart  *services.RelationSet
	Subscriptions *services.RelationSet
}

// NewServices builds the repositories and services over db.
func NewServices(opts Options) *Services {
	userRepo := repositories.NewGORMUserRepository(opts.DB)
	recipeRepo := repositories.NewGORMRecipeRepository(opts.DB)
	ingredientRepo := repositories.NewGORMIngredientRepository(opts.DB)
	tagRepo := repositories.NewGORMTagRepository(opts.DB)

	favorites := services.NewFavoriteRelation(repositories.NewFavoriteSet(opts.DB), recipeRepo, opts.Publisher)
	cart := services.NewShoppingCartRelation(repositories.NewShoppingCartSet(opts.DB), recipeRepo, opts.Publisher)
	subscriptions := services.NewSubscriptionRelation(repositories.NewSubscriptionSet(opts.DB), userRepo, opts.Publisher)

	return &Services{
		Auth:    services.NewAuthService(userRepo, opts.JWTSecret),
		Catalog: services.NewCatalogService(ingredientRepo, tagRepo),
		Recipes: services.NewRecipeService(services.RecipeServiceDeps{
			Recipes:       recipeRepo,
			Ingredients:   ingredientRepo,
			Tags:          tagRepo,
			Images:        opts.Images,
			Favorites:     favorites,
			Cart:          cart,
			Subscriptions: subscriptions,
			Publisher:     opts.Publisher,
		}),
		Users:         services.NewUserService(userRepo, recipeRepo, subscriptions),
		ShoppingList:  services.NewShoppingListService(cart, recipeRepo),
		Favorites:     favorites,
		ShoppingCart:  cart,
		Subscriptions: subscriptions,
	}
}

// New builds the Fiber application with every route registered.
func New(opts Options) (*fiber.App, *Services) {
	svc := NewServices(opts)
	validate := validation.New()

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // base64 images
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	if opts.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: 1 * time.Second,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": opts.Publisher != nil,
		})
	})
	if opts.MediaRoot != "" && opts.MediaURL != "" {
		app.Static(opts.MediaURL, opts.MediaRoot)
	}

	apiV1 := app.Group("/api/v1", middleware.OptionalAuth(svc.Auth))
	auth := middleware.AuthRequired(svc.Auth)

	handlers.NewAuthHandler(svc.Auth, validate).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(svc.Catalog).RegisterRoutes(apiV1)
	handlers.NewRecipeHandler(svc.Recipes, svc.Favorites, svc.ShoppingCart, svc.ShoppingList).RegisterRoutes(apiV1, auth)
	handlers.NewUserHandler(svc.Users, svc.Subscriptions, svc.Auth, validate).RegisterRoutes(apiV1, auth)

	return app, svc
}
