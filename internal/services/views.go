package services

import (
	"time"

	"foodgram/internal/models"
)

// UserView is a user as seen by a particular caller.
type UserView struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func newUserView(user *models.User, subscribed bool) UserView {
	return UserView{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

// RecipeIngredientView is one ingredient line of a recipe.
type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is a full recipe with the caller's flags.
type RecipeView struct {
	ID               string                 `json:"id"`
	Author           UserView               `json:"author"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
	Tags             []models.Tag           `json:"tags"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	CreatedAt        time.Time              `json:"created_at"`
}

// RecipeShortView is the compact recipe form used in relation responses and
// subscription listings.
type RecipeShortView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func newRecipeShortView(recipe *models.Recipe) RecipeShortView {
	return RecipeShortView{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

// RecipeFlags are the caller-specific flags of one recipe view.
type RecipeFlags struct {
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// NewRecipeView builds a recipe view from a recipe loaded with its details.
// Flags are passed explicitly so that views never depend on request state.
func NewRecipeView(recipe *models.Recipe, flags RecipeFlags) RecipeView {
	view := RecipeView{
		ID:               recipe.ID,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		Tags:             make([]models.Tag, 0, len(recipe.TagLinks)),
		Ingredients:      make([]RecipeIngredientView, 0, len(recipe.Ingredients)),
		IsFavorited:      flags.IsFavorited,
		IsInShoppingCart: flags.IsInShoppingCart,
		CreatedAt:        recipe.CreatedAt,
	}
	if recipe.Author != nil {
		view.Author = newUserView(recipe.Author, flags.AuthorSubscribed)
	} else {
		view.Author = UserView{ID: recipe.AuthorID, IsSubscribed: flags.AuthorSubscribed}
	}
	for _, link := range recipe.TagLinks {
		if link.Tag != nil {
			view.Tags = append(view.Tags, *link.Tag)
		}
	}
	for _, row := range recipe.Ingredients {
		line := RecipeIngredientView{ID: row.IngredientID, Amount: row.Amount}
		if row.Ingredient != nil {
			line.Name = row.Ingredient.Name
			line.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		view.Ingredients = append(view.Ingredients, line)
	}
	return view
}

// SubscriptionView is a followed author with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []RecipeShortView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// Page selects a window of a listing. Number starts at 1.
type Page struct {
	Number int
	Limit  int
}

// DefaultPageLimit is used when a listing is requested without a limit.
const DefaultPageLimit = 6

// MaxPageLimit caps the page size a client can ask for.
const MaxPageLimit = 100

// bounds returns the [start, end) window of the page over total items.
// Pages past the end are empty.
func (p Page) bounds(total int) (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	number := p.Number
	if number < 1 {
		number = 1
	}
	if number-1 > total/limit {
		return total, total
	}
	start := (number - 1) * limit
	if start > total {
		start = total
	}
	end := total
	if limit < total-start {
		end = start + limit
	}
	return start, end
}

// RecipePage is one page of a recipe listing.
type RecipePage struct {
	Count   int          `json:"count"`
	Results []RecipeView `json:"results"`
}

// UserPage is one page of the user listing.
type UserPage struct {
	Count   int        `json:"count"`
	Results []UserView `json:"results"`
}

// SubscriptionPage is one page of a subscription listing.
type SubscriptionPage struct {
	Count   int                `json:"count"`
	Results []SubscriptionView `json:"results"`
}
