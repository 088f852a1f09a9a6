package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// CatalogService exposes the read-only ingredient and tag catalog.
type CatalogService struct {
	ingredients repositories.IngredientRepository
	tags        repositories.TagRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(ingredients repositories.IngredientRepository, tags repositories.TagRepository) *CatalogService {
	return &CatalogService{ingredients: ingredients, tags: tags}
}

// ListIngredients searches ingredients by case-insensitive name prefix.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	return s.ingredients.List(ctx, prefix)
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	ingredient, err := s.ingredients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFoundError("ingredient", strconv.FormatUint(uint64(id), 10))
		}
		return nil, fmt.Errorf("failed to get ingredient %d: %w", id, err)
	}
	return ingredient, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFoundError("tag", strconv.FormatUint(uint64(id), 10))
		}
		return nil, fmt.Errorf("failed to get tag %d: %w", id, err)
	}
	return tag, nil
}
