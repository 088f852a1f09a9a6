package models

import "time"

// Recipe is a user-authored dish description. Tags and ingredient amounts
// are owned by the recipe and rebuilt wholesale whenever it is updated.
type Recipe struct {
	ID          string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AuthorID    string             `json:"author_id" gorm:"type:varchar(36);not null;index;uniqueIndex:idx_recipe_author_name"`
	Author      *User              `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Name        string             `json:"name" gorm:"type:varchar(200);not null"`
	NameKey     string             `json:"-" gorm:"type:varchar(200);not null;uniqueIndex:idx_recipe_author_name"` // lower-cased Name
	Image       string             `json:"image"`
	Text        string             `json:"text" gorm:"type:text"`
	CookingTime int                `json:"cooking_time" gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1"`
	CreatedAt   time.Time          `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time          `json:"updated_at"`
	TagLinks    []RecipeTag        `json:"-" gorm:"foreignKey:RecipeID"`
	Ingredients []RecipeIngredient `json:"-" gorm:"foreignKey:RecipeID"`
}

// RecipeIngredient links a recipe to a catalog ingredient with an amount.
type RecipeIngredient struct {
	ID           uint        `json:"-" gorm:"primaryKey"`
	RecipeID     string      `json:"recipe_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint        `json:"ingredient_id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Ingredient   *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
	Amount       int         `json:"amount" gorm:"not null;check:chk_recipe_ingredient_amount,amount >= 1"`
	Position     int         `json:"-" gorm:"not null;default:0"`
}

// RecipeTag links a recipe to a tag, keeping the order the author chose.
type RecipeTag struct {
	RecipeID string `gorm:"primaryKey;type:varchar(36)"`
	TagID    uint   `gorm:"primaryKey"`
	Tag      *Tag   `gorm:"foreignKey:TagID"`
	Position int    `gorm:"not null;default:0"`
}
