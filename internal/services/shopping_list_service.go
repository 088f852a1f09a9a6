package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"foodgram/internal/repositories"
)

// ShoppingListHeader opens every rendered shopping list.
const ShoppingListHeader = "Shopping list from Foodgram:"

// ShoppingListLine is the total amount of one ingredient.
type ShoppingListLine struct {
	IngredientID uint   `json:"ingredient_id"`
	Name         string `json:"name"`
	Amount       int64  `json:"amount"`
	Unit         string `json:"measurement_unit"`
}

// ShoppingList sums the ingredients of every recipe in a cart.
type ShoppingList struct {
	Header string             `json:"header"`
	Lines  []ShoppingListLine `json:"lines"`
}

// Text renders the list as plain text: the header, a blank line, then one
// ingredient per line.
func (l *ShoppingList) Text() string {
	var b strings.Builder
	b.WriteString(l.Header)
	b.WriteString("\n\n")
	for _, line := range l.Lines {
		fmt.Fprintf(&b, "%s, %d %s\n", line.Name, line.Amount, line.Unit)
	}
	return b.String()
}

// ShoppingListService builds shopping lists from shopping carts.
type ShoppingListService struct {
	cart    *RelationSet
	recipes repositories.RecipeRepository
}

// NewShoppingListService creates a new ShoppingListService.
func NewShoppingListService(cart *RelationSet, recipes repositories.RecipeRepository) *ShoppingListService {
	return &ShoppingListService{cart: cart, recipes: recipes}
}

// Build aggregates the caller's cart. Amounts of the same ingredient are
// summed; lines are ordered by name, then unit, then ingredient id.
func (s *ShoppingListService) Build(ctx context.Context, caller Caller) (*ShoppingList, error) {
	recipeIDs, err := s.cart.Targets(ctx, caller)
	if err != nil {
		return nil, err
	}

	list := &ShoppingList{Header: ShoppingListHeader, Lines: []ShoppingListLine{}}
	if len(recipeIDs) == 0 {
		return list, nil
	}

	rows, err := s.recipes.IngredientRows(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart ingredients: %w", err)
	}

	byIngredient := make(map[uint]*ShoppingListLine)
	for _, row := range rows {
		line, ok := byIngredient[row.IngredientID]
		if !ok {
			line = &ShoppingListLine{IngredientID: row.IngredientID}
			if row.Ingredient != nil {
				line.Name = row.Ingredient.Name
				line.Unit = row.Ingredient.MeasurementUnit
			}
			byIngredient[row.IngredientID] = line
		}
		line.Amount += int64(row.Amount)
	}

	for _, line := range byIngredient {
		list.Lines = append(list.Lines, *line)
	}
	sort.Slice(list.Lines, func(i, j int) bool {
		a, b := list.Lines[i], list.Lines[j]
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		return a.IngredientID < b.IngredientID
	})
	return list, nil
}
