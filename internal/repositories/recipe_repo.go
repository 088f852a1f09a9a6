package repositories

import (
	"context"

	"foodgram/internal/models"
)

// Recipe orderings accepted by RecipeQuery.OrderBy. A leading "-" sorts
// descending.
const (
	OrderByName          = "name"
	OrderByNameDesc      = "-name"
	OrderByCreatedAt     = "created_at"
	OrderByCreatedAtDesc = "-created_at"
)

var recipeOrderings = map[string]string{
	OrderByName:          "recipes.name ASC",
	OrderByNameDesc:      "recipes.name DESC",
	OrderByCreatedAt:     "recipes.created_at ASC",
	OrderByCreatedAtDesc: "recipes.created_at DESC",
}

// ValidRecipeOrdering reports whether key is an accepted OrderBy value.
func ValidRecipeOrdering(key string) bool {
	_, ok := recipeOrderings[key]
	return ok
}

// RecipeQuery selects recipes. Every non-empty field narrows the result, so
// combined filters intersect.
type RecipeQuery struct {
	AuthorID    string
	TagSlugs    []string // any of
	FavoritedBy string
	InCartOf    string
	OrderBy     string
}

// RecipeRepository defines the interface for recipe data access.
type RecipeRepository interface {
	// Create stores the recipe together with its TagLinks and Ingredients
	// in one transaction.
	Create(ctx context.Context, recipe *models.Recipe) error
	// Update overwrites the recipe's fields and replaces its TagLinks and
	// Ingredients in one transaction.
	Update(ctx context.Context, recipe *models.Recipe) error
	// Delete removes the recipe with everything that refers to it.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	// GetByIDs returns the recipes in the order of ids, skipping missing ones.
	GetByIDs(ctx context.Context, ids []string) ([]models.Recipe, error)
	Exists(ctx context.Context, id string) (bool, error)
	ExistsByAuthorAndName(ctx context.Context, authorID, name string) (bool, error)
	FindIDs(ctx context.Context, query RecipeQuery) ([]string, error)
	// IngredientRows returns the ingredient amounts of the recipes with the
	// catalog ingredient loaded.
	IngredientRows(ctx context.Context, recipeIDs []string) ([]models.RecipeIngredient, error)
	// ListByAuthor returns the author's newest recipes; limit <= 0 means all.
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Recipe, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
}
