package services

import (
	"context"
	"fmt"

	"foodgram/internal/repositories"
)

// DefaultRecipeOrdering lists the newest recipes first.
const DefaultRecipeOrdering = repositories.OrderByCreatedAtDesc

// RecipeFilter narrows a recipe listing. All set criteria must hold.
type RecipeFilter struct {
	AuthorID      string
	TagSlugs      []string
	FavoritedOnly bool
	InCartOnly    bool
	OrderBy       string
}

// RecipeQueryService resolves recipe filters into ordered id lists.
type RecipeQueryService struct {
	recipes repositories.RecipeRepository
}

// NewRecipeQueryService creates a new RecipeQueryService.
func NewRecipeQueryService(recipes repositories.RecipeRepository) *RecipeQueryService {
	return &RecipeQueryService{recipes: recipes}
}

// Filter returns the ids of matching recipes. The personal flags are
// ignored for anonymous callers.
func (s *RecipeQueryService) Filter(ctx context.Context, caller Caller, filter RecipeFilter) ([]string, error) {
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = DefaultRecipeOrdering
	}
	if !repositories.ValidRecipeOrdering(orderBy) {
		return nil, ValidationError("ordering", RuleInvalidOrdering,
			fmt.Sprintf("unknown ordering %q", orderBy))
	}

	query := repositories.RecipeQuery{
		AuthorID: filter.AuthorID,
		TagSlugs: filter.TagSlugs,
		OrderBy:  orderBy,
	}
	if caller.Authenticated() {
		if filter.FavoritedOnly {
			query.FavoritedBy = caller.UserID
		}
		if filter.InCartOnly {
			query.InCartOf = caller.UserID
		}
	}

	ids, err := s.recipes.FindIDs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter recipes: %w", err)
	}
	return ids, nil
}
