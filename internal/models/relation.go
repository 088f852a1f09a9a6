package models

import "time"

// Favorite marks a recipe as favorited by a user. Existence is membership.
type Favorite struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	RecipeID  string    `json:"recipe_id" gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoppingCartItem puts a recipe into a user's shopping cart.
type ShoppingCartItem struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	RecipeID  string    `json:"recipe_id" gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscription records that UserID follows AuthorID.
type Subscription struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;type:varchar(36);check:chk_subscription_not_self,user_id <> author_id"`
	AuthorID  string    `json:"author_id" gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt time.Time `json:"created_at"`
}

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&RecipeIngredient{},
		&RecipeTag{},
		&Favorite{},
		&ShoppingCartItem{},
		&Subscription{},
	}
}
