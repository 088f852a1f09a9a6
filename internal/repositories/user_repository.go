package repositories

import (
	"context"

	"foodgram/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetRole(ctx context.Context, email, role string) error
	Exists(ctx context.Context, id string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// List returns users ordered by username, skipping offset rows.
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}
