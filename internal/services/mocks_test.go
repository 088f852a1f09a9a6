package services_test

import (
	"context"
	"sync"

	"foodgram/internal/models"
	"foodgram/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetRole(ctx context.Context, email, role string) error {
	return m.Called(email, role).Error(0)
}

func (m *MockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return m.Called(id, passwordHash).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	args := m.Called(offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockRecipeRepository is a mock implementation of repositories.RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	return m.Called(recipe).Error(0)
}

func (m *MockRecipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	return m.Called(recipe).Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	args := m.Called(ids)
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeRepository) ExistsByAuthorAndName(ctx context.Context, authorID, name string) (bool, error) {
	args := m.Called(authorID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeRepository) FindIDs(ctx context.Context, query repositories.RecipeQuery) ([]string, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecipeRepository) IngredientRows(ctx context.Context, recipeIDs []string) ([]models.RecipeIngredient, error) {
	args := m.Called(recipeIDs)
	return args.Get(0).([]models.RecipeIngredient), args.Error(1)
}

func (m *MockRecipeRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Recipe, error) {
	args := m.Called(authorID, limit)
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	args := m.Called(authorID)
	return args.Get(0).(int64), args.Error(1)
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// duplicatingPairSet reports no existing pair but rejects every insert, as
// the storage does when a concurrent request won the race.
type duplicatingPairSet struct {
	*repositories.MemoryPairSet
	err error
}

func (s duplicatingPairSet) Add(ctx context.Context, left, right string) error {
	return s.err
}
