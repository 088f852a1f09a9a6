package services

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/repositories"
)

// UserService serves user profiles and subscription listings.
type UserService struct {
	users         repositories.UserRepository
	recipes       repositories.RecipeRepository
	subscriptions *RelationSet
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, recipes repositories.RecipeRepository, subscriptions *RelationSet) *UserService {
	return &UserService{users: users, recipes: recipes, subscriptions: subscriptions}
}

// Profile returns the user with id as seen by the caller.
func (s *UserService) Profile(ctx context.Context, caller Caller, id string) (*UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFoundError("user", id)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	subscribed, err := s.subscriptions.Exists(ctx, caller, user.ID)
	if err != nil {
		return nil, err
	}
	view := newUserView(user, subscribed)
	return &view, nil
}

// List returns one page of users ordered by username, each flagged with
// whether the caller follows them.
func (s *UserService) List(ctx context.Context, caller Caller, page Page) (*UserPage, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	start, end := page.bounds(int(total))
	result := &UserPage{Count: int(total), Results: []UserView{}}
	if start == end {
		return result, nil
	}

	users, err := s.users.List(ctx, start, end-start)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	subscribed, err := s.subscriptions.Contains(ctx, caller, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		result.Results = append(result.Results, newUserView(&users[i], subscribed[users[i].ID]))
	}
	return result, nil
}

// Me returns the caller's own profile.
func (s *UserService) Me(ctx context.Context, caller Caller) (*UserView, error) {
	if !caller.Authenticated() {
		return nil, errAuthenticationRequired()
	}
	return s.Profile(ctx, caller, caller.UserID)
}

// Subscription returns one followed author with up to recipesLimit of
// their newest recipes; recipesLimit <= 0 includes all of them.
func (s *UserService) Subscription(ctx context.Context, caller Caller, authorID string, recipesLimit int) (*SubscriptionView, error) {
	author, err := s.Profile(ctx, caller, authorID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes.ListByAuthor(ctx, authorID, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes of %s: %w", authorID, err)
	}
	count, err := s.recipes.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes of %s: %w", authorID, err)
	}

	view := &SubscriptionView{
		UserView:     *author,
		Recipes:      make([]RecipeShortView, 0, len(recipes)),
		RecipesCount: count,
	}
	for i := range recipes {
		view.Recipes = append(view.Recipes, newRecipeShortView(&recipes[i]))
	}
	return view, nil
}

// Subscriptions lists the authors the caller follows, oldest subscription
// first.
func (s *UserService) Subscriptions(ctx context.Context, caller Caller, page Page, recipesLimit int) (*SubscriptionPage, error) {
	authorIDs, err := s.subscriptions.Targets(ctx, caller)
	if err != nil {
		return nil, err
	}
	start, end := page.bounds(len(authorIDs))
	result := &SubscriptionPage{Count: len(authorIDs), Results: []SubscriptionView{}}
	for _, authorID := range authorIDs[start:end] {
		view, err := s.Subscription(ctx, caller, authorID, recipesLimit)
		if err != nil {
			return nil, err
		}
		result.Results = append(result.Results, *view)
	}
	return result, nil
}
