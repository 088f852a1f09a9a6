package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
	"foodgram/internal/storage"

	"go.uber.org/zap"
)

// Limits applied to recipe input.
const (
	MaxRecipeNameLength = 200
	MinRecipeTextLength = 10
	MinCookingTime      = 1
	MinIngredientAmount = 1
)

// IngredientAmount is one requested ingredient line.
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeInput is the body of a recipe create or update request.
type RecipeInput struct {
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	CookingTime int                `json:"cooking_time"`
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uint             `json:"tags"`
	Image       string             `json:"image"`
}

// RecipeService handles business logic related to recipes.
type RecipeService struct {
	recipes       repositories.RecipeRepository
	ingredients   repositories.IngredientRepository
	tags          repositories.TagRepository
	images        storage.ImageStore
	query         *RecipeQueryService
	favorites     *RelationSet
	cart          *RelationSet
	subscriptions *RelationSet
	publisher     EventPublisher
}

// RecipeServiceDeps groups the collaborators of RecipeService.
type RecipeServiceDeps struct {
	Recipes       repositories.RecipeRepository
	Ingredients   repositories.IngredientRepository
	Tags          repositories.TagRepository
	Images        storage.ImageStore
	Favorites     *RelationSet
	Cart          *RelationSet
	Subscriptions *RelationSet
	Publisher     EventPublisher
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(deps RecipeServiceDeps) *RecipeService {
	return &RecipeService{
		recipes:       deps.Recipes,
		ingredients:   deps.Ingredients,
		tags:          deps.Tags,
		images:        deps.Images,
		query:         NewRecipeQueryService(deps.Recipes),
		favorites:     deps.Favorites,
		cart:          deps.Cart,
		subscriptions: deps.Subscriptions,
		publisher:     deps.Publisher,
	}
}

// validatedRecipe is RecipeInput after every check has passed.
type validatedRecipe struct {
	name        string
	text        string
	cookingTime int
	ingredients []models.RecipeIngredient
	tags        []models.RecipeTag
	image       *storage.Image
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// upperFirst upper-cases the first letter and leaves the rest alone.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// validate runs the checks in order and reports the first failure.
func (s *RecipeService) validate(ctx context.Context, caller Caller, input RecipeInput, creating bool) (*validatedRecipe, error) {
	out := &validatedRecipe{}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ValidationError("name", RuleRequired, "recipe name is required")
	}
	if utf8.RuneCountInString(name) > MaxRecipeNameLength {
		return nil, ValidationError("name", RuleTooLong,
			fmt.Sprintf("recipe name must be at most %d characters", MaxRecipeNameLength))
	}
	out.name = capitalize(name)
	if creating {
		taken, err := s.recipes.ExistsByAuthorAndName(ctx, caller.UserID, out.name)
		if err != nil {
			return nil, fmt.Errorf("failed to check recipe name: %w", err)
		}
		if taken {
			return nil, duplicateNameError(out.name)
		}
	}

	text := strings.TrimSpace(input.Text)
	if utf8.RuneCountInString(text) < MinRecipeTextLength {
		return nil, ValidationError("text", RuleTooShort,
			fmt.Sprintf("recipe text must be at least %d characters", MinRecipeTextLength))
	}
	out.text = upperFirst(text)

	if input.CookingTime < MinCookingTime {
		return nil, ValidationError("cooking_time", RuleMinValue,
			fmt.Sprintf("cooking time must be at least %d minute", MinCookingTime))
	}
	out.cookingTime = input.CookingTime

	ingredients, err := s.validateIngredients(ctx, input.Ingredients)
	if err != nil {
		return nil, err
	}
	out.ingredients = ingredients

	tags, err := s.validateTags(ctx, input.Tags)
	if err != nil {
		return nil, err
	}
	out.tags = tags

	if input.Image == "" {
		if creating {
			return nil, ValidationError("image", RuleRequired, "recipe image is required")
		}
		return out, nil
	}
	img, err := storage.DecodeDataURI(input.Image)
	if err != nil {
		return nil, &Error{
			Kind:    ErrValidation,
			Field:   "image",
			Rule:    RuleInvalidImageEncoding,
			Message: "image must be a base64 encoded picture",
			Err:     err,
		}
	}
	out.image = img
	return out, nil
}

func (s *RecipeService) validateIngredients(ctx context.Context, input []IngredientAmount) ([]models.RecipeIngredient, error) {
	if len(input) == 0 {
		return nil, ValidationError("ingredients", RuleEmpty, "at least one ingredient is required")
	}
	seen := make(map[uint]bool, len(input))
	ids := make([]uint, 0, len(input))
	for _, item := range input {
		if seen[item.ID] {
			return nil, ValidationError("ingredients", RuleDuplicateItem,
				fmt.Sprintf("ingredient %d is listed more than once", item.ID))
		}
		seen[item.ID] = true
		if item.Amount < MinIngredientAmount {
			return nil, ValidationError("ingredients", RuleMinValue,
				fmt.Sprintf("amount of ingredient %d must be at least %d", item.ID, MinIngredientAmount))
		}
		ids = append(ids, item.ID)
	}

	known, err := s.ingredients.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ingredients: %w", err)
	}
	if len(known) != len(ids) {
		found := make(map[uint]bool, len(known))
		for _, ingredient := range known {
			found[ingredient.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, ValidationError("ingredients", RuleUnknownReference,
					fmt.Sprintf("ingredient %d does not exist", id))
			}
		}
	}

	rows := make([]models.RecipeIngredient, 0, len(input))
	for _, item := range input {
		rows = append(rows, models.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
	}
	return rows, nil
}

func (s *RecipeService) validateTags(ctx context.Context, input []uint) ([]models.RecipeTag, error) {
	ids := make([]uint, 0, len(input))
	seen := make(map[uint]bool, len(input))
	for _, id := range input {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []models.RecipeTag{}, nil
	}

	known, err := s.tags.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	found := make(map[uint]bool, len(known))
	for _, tag := range known {
		found[tag.ID] = true
	}
	links := make([]models.RecipeTag, 0, len(ids))
	for _, id := range ids {
		if !found[id] {
			return nil, ValidationError("tags", RuleUnknownReference, fmt.Sprintf("tag %d does not exist", id))
		}
		links = append(links, models.RecipeTag{TagID: id})
	}
	return links, nil
}

func duplicateNameError(name string) *Error {
	return &Error{
		Kind:    ErrConflict,
		Field:   "name",
		Rule:    RuleDuplicateName,
		Message: fmt.Sprintf("you already have a recipe named %q", name),
	}
}

// storeImage saves img and returns its reference, or "" when img is nil.
func (s *RecipeService) storeImage(ctx context.Context, img *storage.Image) (string, error) {
	if img == nil {
		return "", nil
	}
	ref, err := s.images.Save(ctx, img)
	if err != nil {
		return "", fmt.Errorf("failed to store recipe image: %w", err)
	}
	return ref, nil
}

func (s *RecipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		zap.L().Warn("failed to delete recipe image", zap.String("image", ref), zap.Error(err))
	}
}

// Create validates input and stores a new recipe authored by the caller.
func (s *RecipeService) Create(ctx context.Context, caller Caller, input RecipeInput) (*RecipeView, error) {
	if !caller.Authenticated() {
		return nil, errAuthenticationRequired()
	}
	valid, err := s.validate(ctx, caller, input, true)
	if err != nil {
		return nil, err
	}
	imageRef, err := s.storeImage(ctx, valid.image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    caller.UserID,
		Name:        valid.name,
		Image:       imageRef,
		Text:        valid.text,
		CookingTime: valid.cookingTime,
		TagLinks:    valid.tags,
		Ingredients: valid.ingredients,
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		s.discardImage(ctx, imageRef)
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, duplicateNameError(recipe.Name)
		}
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	zap.L().Info("recipe created", zap.String("recipe_id", recipe.ID), zap.String("author_id", caller.UserID))
	publishEvent(s.publisher, EventRecipeCreated, caller.UserID, recipe.ID)
	return s.Get(ctx, caller, recipe.ID)
}

// loadOwned fetches the recipe and checks the caller may modify it.
func (s *RecipeService) loadOwned(ctx context.Context, caller Caller, id string) (*models.Recipe, error) {
	if !caller.Authenticated() {
		return nil, errAuthenticationRequired()
	}
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFoundError("recipe", id)
		}
		return nil, fmt.Errorf("failed to load recipe %s: %w", id, err)
	}
	if !caller.CanModify(recipe.AuthorID) {
		return nil, PermissionError(RuleNotOwner, "only the author can change this recipe")
	}
	return recipe, nil
}

// Update replaces the recipe's fields, tags and ingredients. The image is
// kept when input carries none.
func (s *RecipeService) Update(ctx context.Context, caller Caller, id string, input RecipeInput) (*RecipeView, error) {
	existing, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	valid, err := s.validate(ctx, caller, input, false)
	if err != nil {
		return nil, err
	}
	newImage, err := s.storeImage(ctx, valid.image)
	if err != nil {
		return nil, err
	}

	updated := &models.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        valid.name,
		Image:       existing.Image,
		Text:        valid.text,
		CookingTime: valid.cookingTime,
		TagLinks:    valid.tags,
		Ingredients: valid.ingredients,
	}
	if newImage != "" {
		updated.Image = newImage
	}
	if err := s.recipes.Update(ctx, updated); err != nil {
		s.discardImage(ctx, newImage)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, NotFoundError("recipe", id)
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, duplicateNameError(updated.Name)
		}
		return nil, fmt.Errorf("failed to update recipe %s: %w", id, err)
	}
	if newImage != "" {
		s.discardImage(ctx, existing.Image)
	}

	publishEvent(s.publisher, EventRecipeUpdated, caller.UserID, id)
	return s.Get(ctx, caller, id)
}

// Delete removes the recipe together with every relation pointing at it.
func (s *RecipeService) Delete(ctx context.Context, caller Caller, id string) error {
	existing, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NotFoundError("recipe", id)
		}
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	s.discardImage(ctx, existing.Image)

	zap.L().Info("recipe deleted", zap.String("recipe_id", id), zap.String("actor_id", caller.UserID))
	publishEvent(s.publisher, EventRecipeDeleted, caller.UserID, id)
	return nil
}

// Get returns one recipe as seen by the caller.
func (s *RecipeService) Get(ctx context.Context, caller Caller, id string) (*RecipeView, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFoundError("recipe", id)
		}
		return nil, fmt.Errorf("failed to get recipe %s: %w", id, err)
	}
	views, err := s.present(ctx, caller, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Short returns the compact form of a recipe.
func (s *RecipeService) Short(ctx context.Context, id string) (*RecipeShortView, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFoundError("recipe", id)
		}
		return nil, fmt.Errorf("failed to get recipe %s: %w", id, err)
	}
	view := newRecipeShortView(recipe)
	return &view, nil
}

// List filters, orders and paginates recipes.
func (s *RecipeService) List(ctx context.Context, caller Caller, filter RecipeFilter, page Page) (*RecipePage, error) {
	ids, err := s.query.Filter(ctx, caller, filter)
	if err != nil {
		return nil, err
	}
	start, end := page.bounds(len(ids))
	recipes, err := s.recipes.GetByIDs(ctx, ids[start:end])
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	views, err := s.present(ctx, caller, recipes)
	if err != nil {
		return nil, err
	}
	return &RecipePage{Count: len(ids), Results: views}, nil
}

// present computes the caller's flags for a batch of recipes.
func (s *RecipeService) present(ctx context.Context, caller Caller, recipes []models.Recipe) ([]RecipeView, error) {
	recipeIDs := make([]string, 0, len(recipes))
	authorIDs := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		recipeIDs = append(recipeIDs, recipe.ID)
		authorIDs = append(authorIDs, recipe.AuthorID)
	}

	favorited, err := s.favorites.Contains(ctx, caller, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.cart.Contains(ctx, caller, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscriptions.Contains(ctx, caller, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]RecipeView, 0, len(recipes))
	for i := range recipes {
		recipe := &recipes[i]
		views = append(views, NewRecipeView(recipe, RecipeFlags{
			IsFavorited:      favorited[recipe.ID],
			IsInShoppingCart: inCart[recipe.ID],
			AuthorSubscribed: subscribed[recipe.AuthorID],
		}))
	}
	return views, nil
}
