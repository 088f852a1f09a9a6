package repositories

import (
	"context"

	"foodgram/internal/models"
)

// IngredientRepository defines the interface for ingredient catalog access.
type IngredientRepository interface {
	// List returns ingredients whose name starts with prefix, compared
	// case-insensitively, ordered by lower-cased name.
	List(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error)
	// CreateIfMissing inserts the ingredient unless one with the same name
	// exists. It reports whether a row was created.
	CreateIfMissing(ctx context.Context, ingredient *models.Ingredient) (bool, error)
}

// TagRepository defines the interface for tag catalog access.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	CreateIfMissing(ctx context.Context, tag *models.Tag) (bool, error)
}
