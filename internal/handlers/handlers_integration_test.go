package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"foodgram/internal/app"
	"foodgram/internal/models"
	"foodgram/internal/storage"
	"foodgram/internal/testutil"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	flour *models.Ingredient
	lunch *models.Tag
}

// setupApp builds the full application over an in-memory SQLite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	fiberApp, _ := app.New(app.Options{
		DB:        db,
		JWTSecret: "test_jwt_secret",
		Images:    storage.NewLocalStore(t.TempDir(), "/media/"),
	})
	return &testEnv{
		app:   fiberApp,
		db:    db,
		flour: testutil.SeedIngredient(t, db, "flour", "g"),
		lunch: testutil.SeedTag(t, db, "Lunch", "lunch", "#49B64E"),
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

// signUp registers a user and returns its id and token.
func (e *testEnv) signUp(t *testing.T, username string) (string, string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": username,
		"last_name":  "Tester",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var registered struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, resp, &registered)

	resp = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login map[string]string
	decode(t, resp, &login)
	require.NotEmpty(t, login["token"])
	return registered.User.ID, login["token"]
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(2, 2, color.Black), imaging.PNG))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func (e *testEnv) recipeBody(t *testing.T, name string) map[string]interface{} {
	return map[string]interface{}{
		"name":         name,
		"text":         "Knead the dough and bake it.",
		"cooking_time": 40,
		"ingredients":  []map[string]interface{}{{"id": e.flour.ID, "amount": 200}},
		"tags":         []uint{e.lunch.ID},
		"image":        pngDataURI(t),
	}
}

func (e *testEnv) createRecipe(t *testing.T, token, name string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/recipes", token, e.recipeBody(t, name))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	decode(t, resp, &created)
	return created["id"].(string)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)
	env.signUp(t, "testuser")

	resp := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":      "other@example.com",
		"username":   "testuser",
		"first_name": "T",
		"last_name":  "U",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "broken"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "testuser@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRecipeEndpoints_RequireAuthForWrites(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodPost, "/api/v1/recipes", "", env.recipeBody(t, "Bread"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/recipes", "invalid-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/recipes", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecipeLifecycle(t *testing.T) {
	env := setupApp(t)
	_, authorToken := env.signUp(t, "author")
	_, readerToken := env.signUp(t, "reader")

	id := env.createRecipe(t, authorToken, "bread")

	resp := env.do(t, http.MethodPost, "/api/v1/recipes", authorToken, env.recipeBody(t, "BREAD"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict map[string]string
	decode(t, resp, &conflict)
	assert.Equal(t, "duplicate_name", conflict["rule"])

	resp = env.do(t, http.MethodGet, "/api/v1/recipes/"+id, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recipe map[string]interface{}
	decode(t, resp, &recipe)
	assert.Equal(t, "Bread", recipe["name"])
	assert.Equal(t, false, recipe["is_favorited"])

	update := env.recipeBody(t, "Bread")
	update["ingredients"] = []map[string]interface{}{}
	resp = env.do(t, http.MethodPatch, "/api/v1/recipes/"+id, readerToken, update)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/v1/recipes/"+id, authorToken, update)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var invalid map[string]string
	decode(t, resp, &invalid)
	assert.Equal(t, "ingredients", invalid["field"])

	resp = env.do(t, http.MethodDelete, "/api/v1/recipes/"+id, readerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/v1/recipes/"+id, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/recipes/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFavoritesCartAndShoppingList(t *testing.T) {
	env := setupApp(t)
	_, authorToken := env.signUp(t, "author")
	_, readerToken := env.signUp(t, "reader")
	first := env.createRecipe(t, authorToken, "Bread")
	second := env.createRecipe(t, authorToken, "Buns")

	resp := env.do(t, http.MethodPost, "/api/v1/recipes/"+first+"/favorite", readerToken, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/api/v1/recipes/"+first+"/favorite", readerToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	for _, id := range []string{first, second} {
		resp = env.do(t, http.MethodPost, "/api/v1/recipes/"+id+"/shopping_cart", readerToken, nil)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/recipes?is_favorited=1&is_in_shopping_cart=1", readerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Count   int                      `json:"count"`
		Results []map[string]interface{} `json:"results"`
	}
	decode(t, resp, &page)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, first, page.Results[0]["id"])

	resp = env.do(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", readerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "shopping-list.txt")
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list from Foodgram:\n\nflour, 400 g\n", string(text))

	resp = env.do(t, http.MethodDelete, "/api/v1/recipes/"+first+"/favorite", readerToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodDelete, "/api/v1/recipes/"+first+"/favorite", readerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/recipes?ordering=cooking_time", readerToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubscriptions(t *testing.T) {
	env := setupApp(t)
	authorID, authorToken := env.signUp(t, "author")
	readerID, readerToken := env.signUp(t, "reader")
	env.createRecipe(t, authorToken, "Bread")
	env.createRecipe(t, authorToken, "Buns")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%s/subscribe", readerID), readerToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%s/subscribe?recipes_limit=1", authorID), readerToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var subscription map[string]interface{}
	decode(t, resp, &subscription)
	assert.Equal(t, true, subscription["is_subscribed"])
	assert.EqualValues(t, 2, subscription["recipes_count"])
	assert.Len(t, subscription["recipes"], 1)

	resp = env.do(t, http.MethodGet, "/api/v1/users/subscriptions", readerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Count int `json:"count"`
	}
	decode(t, resp, &page)
	assert.Equal(t, 1, page.Count)

	resp = env.do(t, http.MethodGet, "/api/v1/users/"+authorID, readerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile map[string]interface{}
	decode(t, resp, &profile)
	assert.Equal(t, true, profile["is_subscribed"])

	resp = env.do(t, http.MethodGet, "/api/v1/users/me", readerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]interface{}
	decode(t, resp, &me)
	assert.Equal(t, "reader", me["username"])

	resp = env.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCatalogEndpoints(t *testing.T) {
	env := setupApp(t)
	testutil.SeedIngredient(t, env.db, "Flaxseed", "g")

	resp := env.do(t, http.MethodGet, "/api/v1/ingredients?name=FL", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ingredients []models.Ingredient
	decode(t, resp, &ingredients)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Flaxseed", ingredients[0].Name)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tags/%d", env.lunch.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tag models.Tag
	decode(t, resp, &tag)
	assert.Equal(t, "lunch", tag.Slug)

	resp = env.do(t, http.MethodGet, "/api/v1/tags/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPagination_OutOfRangeAndHugeValues(t *testing.T) {
	env := setupApp(t)
	_, token := env.signUp(t, "author")
	env.createRecipe(t, token, "Bread")

	paths := []string{
		"/api/v1/recipes?page=2&limit=9223372036854775807",
		"/api/v1/recipes?page=4611686018427387905&limit=2",
		"/api/v1/recipes?page=9223372036854775807&limit=9223372036854775807",
		"/api/v1/recipes?page=5",
		"/api/v1/users/subscriptions?page=2&limit=9223372036854775807",
		"/api/v1/users?page=9223372036854775807&limit=9223372036854775807",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, path, token, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var page struct {
				Count   int               `json:"count"`
				Results []json.RawMessage `json:"results"`
			}
			decode(t, resp, &page)
			assert.Empty(t, page.Results)
		})
	}

	resp := env.do(t, http.MethodGet, "/api/v1/recipes?page=0&limit=-1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Count   int               `json:"count"`
		Results []json.RawMessage `json:"results"`
	}
	decode(t, resp, &page)
	assert.Equal(t, 1, page.Count)
	assert.Len(t, page.Results, 1)
}

func TestUsersListAndSetPassword(t *testing.T) {
	env := setupApp(t)
	authorID, _ := env.signUp(t, "author")
	_, readerToken := env.signUp(t, "reader")

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%s/subscribe", authorID), readerToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/users?limit=1", readerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users struct {
		Count   int                      `json:"count"`
		Results []map[string]interface{} `json:"results"`
	}
	decode(t, resp, &users)
	assert.Equal(t, 2, users.Count)
	require.Len(t, users.Results, 1)
	assert.Equal(t, "author", users.Results[0]["username"])
	assert.Equal(t, true, users.Results[0]["is_subscribed"])
	assert.NotContains(t, users.Results[0], "password")

	resp = env.do(t, http.MethodPost, "/api/v1/users/set_password", "", map[string]string{
		"current_password": "password123",
		"new_password":     "brand-new-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/users/set_password", readerToken, map[string]string{
		"current_password": "password123",
		"new_password":     "123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/users/set_password", readerToken, map[string]string{
		"current_password": "not-my-password",
		"new_password":     "brand-new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/users/set_password", readerToken, map[string]string{
		"current_password": "password123",
		"new_password":     "brand-new-pass",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "reader@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "reader@example.com",
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
