package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodgram/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{
		db: db,
	}
}

func withRecipeDetails(db *gorm.DB) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }
	return db.
		Preload("Author").
		Preload("TagLinks", byPosition).
		Preload("TagLinks.Tag").
		Preload("Ingredients", byPosition).
		Preload("Ingredients.Ingredient")
}

// Create stores a new recipe with its tag and ingredient links.
func (r *GORMRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	recipe.NameKey = strings.ToLower(recipe.Name)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", translateError(err))
		}
		return insertRecipeLinks(tx, recipe)
	})
}

// Update overwrites an existing recipe. Tag and ingredient links are
// cleared and rebuilt inside the same transaction, so a failure at any step
// leaves the previous links in place.
func (r *GORMRecipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	recipe.NameKey = strings.ToLower(recipe.Name)
	recipe.UpdatedAt = time.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"name":         recipe.Name,
			"name_key":     recipe.NameKey,
			"image":        recipe.Image,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
			"updated_at":   recipe.UpdatedAt,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update recipe: %w", translateError(res.Error))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recipe with ID %s not found for update: %w", recipe.ID, ErrNotFound)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		return insertRecipeLinks(tx, recipe)
	})
}

func insertRecipeLinks(tx *gorm.DB, recipe *models.Recipe) error {
	for i := range recipe.TagLinks {
		recipe.TagLinks[i].RecipeID = recipe.ID
		recipe.TagLinks[i].Position = i
	}
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].ID = 0
		recipe.Ingredients[i].RecipeID = recipe.ID
		recipe.Ingredients[i].Position = i
	}
	if len(recipe.TagLinks) > 0 {
		if err := tx.Omit(clause.Associations).Create(&recipe.TagLinks).Error; err != nil {
			return fmt.Errorf("failed to link recipe tags: %w", translateError(err))
		}
	}
	if len(recipe.Ingredients) > 0 {
		if err := tx.Omit(clause.Associations).Create(&recipe.Ingredients).Error; err != nil {
			return fmt.Errorf("failed to link recipe ingredients: %w", translateError(err))
		}
	}
	return nil
}

// Delete removes a recipe, its links and every favorite or cart entry
// pointing at it.
func (r *GORMRecipeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.RecipeTag{},
			&models.RecipeIngredient{},
			&models.Favorite{},
			&models.ShoppingCartItem{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return fmt.Errorf("failed to delete recipe %s dependents: %w", id, err)
			}
		}
		res := tx.Delete(&models.Recipe{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recipe with ID %s not found for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
}

// GetByID retrieves a recipe with its author, tags and ingredients.
func (r *GORMRecipeRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withRecipeDetails(r.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recipe by ID %s: %w", id, err)
	}
	return &recipe, nil
}

// GetByIDs retrieves recipes with details, keeping the order of ids.
func (r *GORMRecipeRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}
	var found []models.Recipe
	if err := withRecipeDetails(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to get recipes: %w", err)
	}
	byID := make(map[string]models.Recipe, len(found))
	for _, recipe := range found {
		byID[recipe.ID] = recipe
	}
	recipes := make([]models.Recipe, 0, len(found))
	for _, id := range ids {
		if recipe, ok := byID[id]; ok {
			recipes = append(recipes, recipe)
		}
	}
	return recipes, nil
}

// Exists reports whether a recipe with the ID exists.
func (r *GORMRecipeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check recipe %s: %w", id, err)
	}
	return count > 0, nil
}

// ExistsByAuthorAndName reports whether the author already has a recipe
// whose name equals name ignoring case.
func (r *GORMRecipeRepository) ExistsByAuthorAndName(ctx context.Context, authorID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ? AND name_key = ?", authorID, strings.ToLower(name)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check recipe name %q: %w", name, err)
	}
	return count > 0, nil
}

// FindIDs returns the IDs of recipes matching every set field of query.
func (r *GORMRecipeRepository) FindIDs(ctx context.Context, query RecipeQuery) ([]string, error) {
	orderBy := query.OrderBy
	if orderBy == "" {
		orderBy = OrderByCreatedAtDesc
	}
	order, ok := recipeOrderings[orderBy]
	if !ok {
		return nil, fmt.Errorf("unsupported recipe ordering %q", orderBy)
	}

	q := r.db.WithContext(ctx).Model(&models.Recipe{})
	if query.AuthorID != "" {
		q = q.Where("recipes.author_id = ?", query.AuthorID)
	}
	if len(query.TagSlugs) > 0 {
		tagged := r.db.Model(&models.RecipeTag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", query.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if query.FavoritedBy != "" {
		favorited := r.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", query.FavoritedBy)
		q = q.Where("recipes.id IN (?)", favorited)
	}
	if query.InCartOf != "" {
		inCart := r.db.Model(&models.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", query.InCartOf)
		q = q.Where("recipes.id IN (?)", inCart)
	}

	ids := []string{}
	if err := q.Order(order).Order("recipes.id ASC").Pluck("recipes.id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	return ids, nil
}

// IngredientRows returns every ingredient amount of the listed recipes.
func (r *GORMRecipeRepository) IngredientRows(ctx context.Context, recipeIDs []string) ([]models.RecipeIngredient, error) {
	rows := []models.RecipeIngredient{}
	if len(recipeIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Where("recipe_id IN ?", recipeIDs).
		Order("recipe_id ASC").Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe ingredients: %w", err)
	}
	return rows, nil
}

// ListByAuthor retrieves the author's recipes, newest first.
func (r *GORMRecipeRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("created_at DESC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes of %s: %w", authorID, err)
	}
	return recipes, nil
}

// CountByAuthor counts the author's recipes.
func (r *GORMRecipeRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recipes of %s: %w", authorID, err)
	}
	return count, nil
}
