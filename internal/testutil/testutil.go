package testutil

import (
	"fmt"
	"strings"
	"testing"

	"foodgram/internal/database"
	"foodgram/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Password is the plain password of every seeded user.
const Password = "secret-password"

// DB returns a freshly migrated in-memory SQLite database private to tb.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open("sqlite", dsn)
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	db.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedUser stores a user with the given username and role.
func SeedUser(tb testing.TB, db *gorm.DB, username, role string) *models.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		ID:        uuid.New().String(),
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
		Password:  string(hash),
		Role:      role,
	}
	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func SeedIngredient(tb testing.TB, db *gorm.DB, name, unit string) *models.Ingredient {
	tb.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		tb.Fatalf("failed to seed ingredient %s: %v", name, err)
	}
	return ingredient
}

func SeedTag(tb testing.TB, db *gorm.DB, name, slug, color string) *models.Tag {
	tb.Helper()
	tag := &models.Tag{Name: name, Slug: slug, Color: color}
	if err := db.Create(tag).Error; err != nil {
		tb.Fatalf("failed to seed tag %s: %v", slug, err)
	}
	return tag
}

// SeedRecipe stores a recipe by author with the given ingredient amounts
// and tags.
func SeedRecipe(tb testing.TB, db *gorm.DB, author *models.User, name string, amounts map[*models.Ingredient]int, tags ...*models.Tag) *models.Recipe {
	tb.Helper()
	recipe := &models.Recipe{
		ID:          uuid.New().String(),
		AuthorID:    author.ID,
		Name:        name,
		NameKey:     strings.ToLower(name),
		Image:       "/media/recipes/images/" + name + ".png",
		Text:        "Mix everything and cook until done.",
		CookingTime: 15,
	}
	if err := db.Omit("TagLinks", "Ingredients", "Author").Create(recipe).Error; err != nil {
		tb.Fatalf("failed to seed recipe %s: %v", name, err)
	}
	position := 0
	for ingredient, amount := range amounts {
		row := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ingredient.ID, Amount: amount, Position: position}
		if err := db.Omit("Ingredient").Create(row).Error; err != nil {
			tb.Fatalf("failed to seed recipe ingredient: %v", err)
		}
		position++
	}
	for i, tag := range tags {
		link := &models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID, Position: i}
		if err := db.Omit("Tag").Create(link).Error; err != nil {
			tb.Fatalf("failed to seed recipe tag: %v", err)
		}
	}
	return recipe
}
