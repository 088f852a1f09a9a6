package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// GORMIngredientRepository is a GORM implementation of IngredientRepository.
type GORMIngredientRepository struct {
	db *gorm.DB
}

// NewGORMIngredientRepository creates a new instance of GORMIngredientRepository.
func NewGORMIngredientRepository(db *gorm.DB) *GORMIngredientRepository {
	return &GORMIngredientRepository{db: db}
}

// List retrieves ingredients matching a case-insensitive name prefix.
func (r *GORMIngredientRepository) List(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	q := r.db.WithContext(ctx).Model(&models.Ingredient{})
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}
	if err := q.Order("LOWER(name) ASC").Order("id ASC").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// GetByID retrieves a single ingredient.
func (r *GORMIngredientRepository) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ingredient with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ingredient by ID %d: %w", id, err)
	}
	return &ingredient, nil
}

// GetByIDs retrieves every listed ingredient. Missing IDs are skipped.
func (r *GORMIngredientRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to get ingredients: %w", err)
	}
	return ingredients, nil
}

// CreateIfMissing inserts the ingredient unless its name is taken.
func (r *GORMIngredientRepository) CreateIfMissing(ctx context.Context, ingredient *models.Ingredient) (bool, error) {
	res := r.db.WithContext(ctx).
		Where(models.Ingredient{Name: ingredient.Name}).
		Attrs(models.Ingredient{MeasurementUnit: ingredient.MeasurementUnit}).
		FirstOrCreate(ingredient)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create ingredient %s: %w", ingredient.Name, translateError(res.Error))
	}
	return res.RowsAffected > 0, nil
}

// GORMTagRepository is a GORM implementation of TagRepository.
type GORMTagRepository struct {
	db *gorm.DB
}

// NewGORMTagRepository creates a new instance of GORMTagRepository.
func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{db: db}
}

// List retrieves all tags ordered by name.
func (r *GORMTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// GetByID retrieves a single tag.
func (r *GORMTagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tag with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag by ID %d: %w", id, err)
	}
	return &tag, nil
}

// GetByIDs retrieves every listed tag. Missing IDs are skipped.
func (r *GORMTagRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	return tags, nil
}

// CreateIfMissing inserts the tag unless its slug is taken.
func (r *GORMTagRepository) CreateIfMissing(ctx context.Context, tag *models.Tag) (bool, error) {
	res := r.db.WithContext(ctx).
		Where(models.Tag{Slug: tag.Slug}).
		Attrs(models.Tag{Name: tag.Name, Color: tag.Color}).
		FirstOrCreate(tag)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create tag %s: %w", tag.Slug, translateError(res.Error))
	}
	return res.RowsAffected > 0, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
