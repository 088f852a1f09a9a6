package services

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/repositories"
)

// Relation names, also used as event routing key prefixes.
const (
	RelationFavorite     = "favorite"
	RelationShoppingCart = "shopping_cart"
	RelationSubscription = "subscription"
)

// RelationSet manages one kind of user -> target relation: favorites and
// shopping cart entries point at recipes, subscriptions point at users.
type RelationSet struct {
	name         string
	targetEntity string
	forbidSelf   bool
	pairs        repositories.PairSet
	targetExists func(ctx context.Context, id string) (bool, error)
	publisher    EventPublisher
}

// NewFavoriteRelation creates the favorites relation.
func NewFavoriteRelation(pairs repositories.PairSet, recipes repositories.RecipeRepository, publisher EventPublisher) *RelationSet {
	return &RelationSet{
		name:         RelationFavorite,
		targetEntity: "recipe",
		pairs:        pairs,
		targetExists: recipes.Exists,
		publisher:    publisher,
	}
}

// NewShoppingCartRelation creates the shopping cart relation.
func NewShoppingCartRelation(pairs repositories.PairSet, recipes repositories.RecipeRepository, publisher EventPublisher) *RelationSet {
	return &RelationSet{
		name:         RelationShoppingCart,
		targetEntity: "recipe",
		pairs:        pairs,
		targetExists: recipes.Exists,
		publisher:    publisher,
	}
}

// NewSubscriptionRelation creates the author subscription relation. Users
// cannot subscribe to themselves.
func NewSubscriptionRelation(pairs repositories.PairSet, users repositories.UserRepository, publisher EventPublisher) *RelationSet {
	return &RelationSet{
		name:         RelationSubscription,
		targetEntity: "user",
		forbidSelf:   true,
		pairs:        pairs,
		targetExists: users.Exists,
		publisher:    publisher,
	}
}

// Name returns the relation name.
func (s *RelationSet) Name() string {
	return s.name
}

func (s *RelationSet) ensureTarget(ctx context.Context, target string) error {
	ok, err := s.targetExists(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to look up %s %s: %w", s.targetEntity, target, err)
	}
	if !ok {
		return NotFoundError(s.targetEntity, target)
	}
	return nil
}

// Add relates the caller to target.
func (s *RelationSet) Add(ctx context.Context, caller Caller, target string) error {
	if !caller.Authenticated() {
		return errAuthenticationRequired()
	}
	if s.forbidSelf && caller.UserID == target {
		return SelfReferenceError(RuleSelfSubscription, "you cannot subscribe to yourself")
	}
	if err := s.ensureTarget(ctx, target); err != nil {
		return err
	}

	exists, err := s.pairs.Exists(ctx, caller.UserID, target)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", s.name, err)
	}
	if exists {
		return s.alreadyExists()
	}

	// A concurrent Add can slip past the check above; the storage
	// constraint still rejects the second insert.
	if err := s.pairs.Add(ctx, caller.UserID, target); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return s.alreadyExists()
		case errors.Is(err, repositories.ErrConstraint):
			return SelfReferenceError(RuleSelfSubscription, "you cannot subscribe to yourself")
		}
		return fmt.Errorf("failed to add %s: %w", s.name, err)
	}

	publishEvent(s.publisher, s.name+".added", caller.UserID, target)
	return nil
}

func (s *RelationSet) alreadyExists() *Error {
	return ConflictError(RuleAlreadyExists, fmt.Sprintf("%s %s already exists", s.targetEntity, s.name))
}

// Remove deletes the caller's relation to target.
func (s *RelationSet) Remove(ctx context.Context, caller Caller, target string) error {
	if !caller.Authenticated() {
		return errAuthenticationRequired()
	}
	if err := s.ensureTarget(ctx, target); err != nil {
		return err
	}
	if err := s.pairs.Remove(ctx, caller.UserID, target); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &Error{
				Kind:    ErrNotFound,
				Rule:    "not_found",
				Message: fmt.Sprintf("%s %s does not exist", s.targetEntity, s.name),
			}
		}
		return fmt.Errorf("failed to remove %s: %w", s.name, err)
	}

	publishEvent(s.publisher, s.name+".removed", caller.UserID, target)
	return nil
}

// Exists reports whether the caller is related to target. Anonymous callers
// are related to nothing.
func (s *RelationSet) Exists(ctx context.Context, caller Caller, target string) (bool, error) {
	if !caller.Authenticated() {
		return false, nil
	}
	ok, err := s.pairs.Exists(ctx, caller.UserID, target)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", s.name, err)
	}
	return ok, nil
}

// Contains reports which targets the caller is related to.
func (s *RelationSet) Contains(ctx context.Context, caller Caller, targets []string) (map[string]bool, error) {
	if !caller.Authenticated() || len(targets) == 0 {
		return map[string]bool{}, nil
	}
	found, err := s.pairs.Contains(ctx, caller.UserID, targets)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", s.name, err)
	}
	return found, nil
}

// Targets lists the caller's related targets, oldest first.
func (s *RelationSet) Targets(ctx context.Context, caller Caller) ([]string, error) {
	if !caller.Authenticated() {
		return nil, errAuthenticationRequired()
	}
	ids, err := s.pairs.Rights(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.name, err)
	}
	return ids, nil
}
