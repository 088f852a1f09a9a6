package repositories

import (
	"context"
	"fmt"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// PairSet is a uniqueness-constrained set of (left, right) key pairs.
// Favorites, shopping carts and subscriptions are all PairSets; only the
// table and column names differ.
type PairSet interface {
	// Add inserts the pair. It returns ErrDuplicate if the pair is present.
	Add(ctx context.Context, left, right string) error
	// Remove deletes the pair. It returns ErrNotFound if the pair is absent.
	Remove(ctx context.Context, left, right string) error
	Exists(ctx context.Context, left, right string) (bool, error)
	// Contains returns which of rights are paired with left.
	Contains(ctx context.Context, left string, rights []string) (map[string]bool, error)
	// Rights lists every right key paired with left, oldest first.
	Rights(ctx context.Context, left string) ([]string, error)
}

// PairColumns names the two key columns of a pair table.
type PairColumns struct {
	Left  string
	Right string
}

// GORMPairSet is a GORM implementation of PairSet for any row type T whose
// primary key is the (Left, Right) column pair.
type GORMPairSet[T any] struct {
	db    *gorm.DB
	cols  PairColumns
	build func(left, right string) *T
}

// NewGORMPairSet creates a PairSet over the table backing T.
func NewGORMPairSet[T any](db *gorm.DB, cols PairColumns, build func(left, right string) *T) *GORMPairSet[T] {
	return &GORMPairSet[T]{
		db:    db,
		cols:  cols,
		build: build,
	}
}

// NewFavoriteSet returns the user -> recipe favorites set.
func NewFavoriteSet(db *gorm.DB) *GORMPairSet[models.Favorite] {
	return NewGORMPairSet(db, PairColumns{Left: "user_id", Right: "recipe_id"}, func(left, right string) *models.Favorite {
		return &models.Favorite{UserID: left, RecipeID: right}
	})
}

// NewShoppingCartSet returns the user -> recipe shopping cart set.
func NewShoppingCartSet(db *gorm.DB) *GORMPairSet[models.ShoppingCartItem] {
	return NewGORMPairSet(db, PairColumns{Left: "user_id", Right: "recipe_id"}, func(left, right string) *models.ShoppingCartItem {
		return &models.ShoppingCartItem{UserID: left, RecipeID: right}
	})
}

// NewSubscriptionSet returns the follower -> author subscription set.
func NewSubscriptionSet(db *gorm.DB) *GORMPairSet[models.Subscription] {
	return NewGORMPairSet(db, PairColumns{Left: "user_id", Right: "author_id"}, func(left, right string) *models.Subscription {
		return &models.Subscription{UserID: left, AuthorID: right}
	})
}

func (s *GORMPairSet[T]) pairCondition() string {
	return fmt.Sprintf("%s = ? AND %s = ?", s.cols.Left, s.cols.Right)
}

// Add inserts the pair. The primary key constraint, not a prior lookup,
// decides whether the pair already exists.
func (s *GORMPairSet[T]) Add(ctx context.Context, left, right string) error {
	if err := s.db.WithContext(ctx).Create(s.build(left, right)).Error; err != nil {
		return fmt.Errorf("failed to add pair (%s, %s): %w", left, right, translateError(err))
	}
	return nil
}

// Remove deletes the pair.
func (s *GORMPairSet[T]) Remove(ctx context.Context, left, right string) error {
	res := s.db.WithContext(ctx).Where(s.pairCondition(), left, right).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("failed to remove pair (%s, %s): %w", left, right, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pair (%s, %s): %w", left, right, ErrNotFound)
	}
	return nil
}

// Exists reports whether the pair is present.
func (s *GORMPairSet[T]) Exists(ctx context.Context, left, right string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where(s.pairCondition(), left, right).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check pair (%s, %s): %w", left, right, err)
	}
	return count > 0, nil
}

// Contains returns the subset of rights paired with left.
func (s *GORMPairSet[T]) Contains(ctx context.Context, left string, rights []string) (map[string]bool, error) {
	found := make(map[string]bool, len(rights))
	if len(rights) == 0 {
		return found, nil
	}
	var ids []string
	err := s.db.WithContext(ctx).Model(new(T)).
		Where(s.cols.Left+" = ? AND "+s.cols.Right+" IN ?", left, rights).
		Pluck(s.cols.Right, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up pairs for %s: %w", left, err)
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// Rights lists the right keys paired with left in insertion order.
func (s *GORMPairSet[T]) Rights(ctx context.Context, left string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(new(T)).
		Where(s.cols.Left+" = ?", left).
		Order("created_at ASC").
		Order(s.cols.Right + " ASC").
		Pluck(s.cols.Right, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs for %s: %w", left, err)
	}
	return ids, nil
}
