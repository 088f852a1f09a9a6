package services_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/color"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
	"foodgram/internal/services"
	"foodgram/internal/storage"
	"foodgram/internal/testutil"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recipeFixture struct {
	db        *gorm.DB
	service   *services.RecipeService
	favorites *services.RelationSet
	cart      *services.RelationSet
	publisher *recordingPublisher
	author    *models.User
	stranger  *models.User
	admin     *models.User
	flour     *models.Ingredient
	sugar     *models.Ingredient
	lunch     *models.Tag
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()
	db := testutil.DB(t)
	recipeRepo := repositories.NewGORMRecipeRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	publisher := &recordingPublisher{}

	f := &recipeFixture{
		db:        db,
		publisher: publisher,
		favorites: services.NewFavoriteRelation(repositories.NewFavoriteSet(db), recipeRepo, nil),
		cart:      services.NewShoppingCartRelation(repositories.NewShoppingCartSet(db), recipeRepo, nil),
		author:    testutil.SeedUser(t, db, "author", models.RoleUser),
		stranger:  testutil.SeedUser(t, db, "stranger", models.RoleUser),
		admin:     testutil.SeedUser(t, db, "admin", models.RoleAdmin),
		flour:     testutil.SeedIngredient(t, db, "flour", "g"),
		sugar:     testutil.SeedIngredient(t, db, "sugar", "g"),
		lunch:     testutil.SeedTag(t, db, "Lunch", "lunch", "#49B64E"),
	}
	f.service = services.NewRecipeService(services.RecipeServiceDeps{
		Recipes:       recipeRepo,
		Ingredients:   repositories.NewGORMIngredientRepository(db),
		Tags:          repositories.NewGORMTagRepository(db),
		Images:        storage.NewLocalStore(t.TempDir(), "/media/"),
		Favorites:     f.favorites,
		Cart:          f.cart,
		Subscriptions: services.NewSubscriptionRelation(repositories.NewSubscriptionSet(db), userRepo, nil),
		Publisher:     publisher,
	})
	return f
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(1, 1, color.White), imaging.PNG))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func (f *recipeFixture) input(t *testing.T, name string) services.RecipeInput {
	return services.RecipeInput{
		Name:        name,
		Text:        "stir the batter well and bake",
		CookingTime: 30,
		Ingredients: []services.IngredientAmount{{ID: f.flour.ID, Amount: 200}},
		Tags:        []uint{f.lunch.ID, f.lunch.ID},
		Image:       pngDataURI(t),
	}
}

func TestRecipeService_Create(t *testing.T) {
	f := newRecipeFixture(t)
	caller := services.CallerFor(f.author)

	view, err := f.service.Create(context.Background(), caller, f.input(t, "  apple PIE "))
	require.NoError(t, err)

	assert.Equal(t, "Apple pie", view.Name)
	assert.Equal(t, "Stir the batter well and bake", view.Text)
	assert.Equal(t, "author", view.Author.Username)
	assert.Contains(t, view.Image, "/media/recipes/images/")
	require.Len(t, view.Tags, 1, "repeated tag ids collapse")
	require.Len(t, view.Ingredients, 1)
	assert.Equal(t, "flour", view.Ingredients[0].Name)
	assert.False(t, view.IsFavorited)
	assert.Equal(t, []string{services.EventRecipeCreated}, f.publisher.Events())
}

func TestRecipeService_DuplicateNameForSameAuthor(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, services.CallerFor(f.author), f.input(t, "Soup"))
	require.NoError(t, err)

	_, err = f.service.Create(ctx, services.CallerFor(f.author), f.input(t, "soup"))
	assert.ErrorIs(t, err, services.ErrConflict)
	svcErr, _ := services.AsError(err)
	assert.Equal(t, services.RuleDuplicateName, svcErr.Rule)

	_, err = f.service.Create(ctx, services.CallerFor(f.stranger), f.input(t, "soup"))
	assert.NoError(t, err)
}

func TestRecipeService_ValidationOrder(t *testing.T) {
	f := newRecipeFixture(t)
	caller := services.CallerFor(f.author)

	cases := []struct {
		name  string
		edit  func(in *services.RecipeInput)
		field string
		rule  string
	}{
		{"blank name", func(in *services.RecipeInput) { in.Name = "  "; in.Text = "" }, "name", services.RuleRequired},
		{"short text", func(in *services.RecipeInput) { in.Text = "too short"; in.CookingTime = 0 }, "text", services.RuleTooShort},
		{"cooking time", func(in *services.RecipeInput) { in.CookingTime = 0; in.Ingredients = nil }, "cooking_time", services.RuleMinValue},
		{"no ingredients", func(in *services.RecipeInput) { in.Ingredients = nil }, "ingredients", services.RuleEmpty},
		{"repeated ingredient", func(in *services.RecipeInput) {
			in.Ingredients = []services.IngredientAmount{{ID: f.flour.ID, Amount: 1}, {ID: f.flour.ID, Amount: 2}}
		}, "ingredients", services.RuleDuplicateItem},
		{"zero amount", func(in *services.RecipeInput) {
			in.Ingredients = []services.IngredientAmount{{ID: f.flour.ID, Amount: 0}}
		}, "ingredients", services.RuleMinValue},
		{"unknown ingredient", func(in *services.RecipeInput) {
			in.Ingredients = []services.IngredientAmount{{ID: 9999, Amount: 1}}
		}, "ingredients", services.RuleUnknownReference},
		{"unknown tag", func(in *services.RecipeInput) { in.Tags = []uint{9999} }, "tags", services.RuleUnknownReference},
		{"missing image", func(in *services.RecipeInput) { in.Image = "" }, "image", services.RuleRequired},
		{"broken image", func(in *services.RecipeInput) {
			in.Image = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("plain text"))
		}, "image", services.RuleInvalidImageEncoding},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.input(t, "Pie")
			tc.edit(&in)

			_, err := f.service.Create(context.Background(), caller, in)

			require.ErrorIs(t, err, services.ErrValidation)
			svcErr, _ := services.AsError(err)
			assert.Equal(t, tc.field, svcErr.Field)
			assert.Equal(t, tc.rule, svcErr.Rule)
		})
	}
}

func TestRecipeService_FailedUpdateKeepsIngredients(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	caller := services.CallerFor(f.author)
	created, err := f.service.Create(ctx, caller, f.input(t, "Bread"))
	require.NoError(t, err)

	in := f.input(t, "Bread")
	in.Ingredients = nil
	_, err = f.service.Update(ctx, caller, created.ID, in)
	require.ErrorIs(t, err, services.ErrValidation)

	reread, err := f.service.Get(ctx, caller, created.ID)
	require.NoError(t, err)
	require.Len(t, reread.Ingredients, 1)
	assert.Equal(t, f.flour.ID, reread.Ingredients[0].ID)
	assert.Equal(t, 200, reread.Ingredients[0].Amount)
}

func TestRecipeService_UpdatePermissions(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	created, err := f.service.Create(ctx, services.CallerFor(f.author), f.input(t, "Bread"))
	require.NoError(t, err)

	in := f.input(t, "Rye bread")
	in.Image = ""
	in.Ingredients = []services.IngredientAmount{{ID: f.sugar.ID, Amount: 5}}

	_, err = f.service.Update(ctx, services.CallerFor(f.stranger), created.ID, in)
	assert.ErrorIs(t, err, services.ErrPermission)

	updated, err := f.service.Update(ctx, services.CallerFor(f.admin), created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Rye bread", updated.Name)
	assert.Equal(t, created.Image, updated.Image, "image kept when omitted")
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "sugar", updated.Ingredients[0].Name)

	_, err = f.service.Update(ctx, services.CallerFor(f.author), "missing", in)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRecipeService_DeleteAndFlags(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	author := services.CallerFor(f.author)
	reader := services.CallerFor(f.stranger)
	created, err := f.service.Create(ctx, author, f.input(t, "Stew"))
	require.NoError(t, err)

	require.NoError(t, f.favorites.Add(ctx, reader, created.ID))

	seen, err := f.service.Get(ctx, reader, created.ID)
	require.NoError(t, err)
	assert.True(t, seen.IsFavorited)
	assert.False(t, seen.IsInShoppingCart)

	anonymous, err := f.service.Get(ctx, services.Anonymous, created.ID)
	require.NoError(t, err)
	assert.False(t, anonymous.IsFavorited)

	assert.ErrorIs(t, f.service.Delete(ctx, reader, created.ID), services.ErrPermission)
	require.NoError(t, f.service.Delete(ctx, author, created.ID))

	_, err = f.service.Get(ctx, author, created.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	ok, err := f.favorites.Exists(ctx, reader, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecipeService_ListCombinedFilters(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	author := services.CallerFor(f.author)
	reader := services.CallerFor(f.stranger)

	a, err := f.service.Create(ctx, author, f.input(t, "A"))
	require.NoError(t, err)
	b, err := f.service.Create(ctx, author, f.input(t, "B"))
	require.NoError(t, err)
	c, err := f.service.Create(ctx, author, f.input(t, "C"))
	require.NoError(t, err)

	require.NoError(t, f.favorites.Add(ctx, reader, a.ID))
	require.NoError(t, f.cart.Add(ctx, reader, b.ID))
	require.NoError(t, f.favorites.Add(ctx, reader, c.ID))
	require.NoError(t, f.cart.Add(ctx, reader, c.ID))

	page, err := f.service.List(ctx, reader, services.RecipeFilter{FavoritedOnly: true, InCartOnly: true}, services.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, c.ID, page.Results[0].ID)
	assert.True(t, page.Results[0].IsFavorited)
	assert.True(t, page.Results[0].IsInShoppingCart)

	page, err = f.service.List(ctx, services.Anonymous, services.RecipeFilter{FavoritedOnly: true, OrderBy: "name"}, services.Page{Number: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, c.ID, page.Results[0].ID)
}
