package repositories_test

import (
	"context"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	repo := repositories.NewGORMUserRepository(testutil.DB(t))
	ctx := context.Background()

	user := &models.User{Email: "cook@example.com", Username: "cook", FirstName: "C", LastName: "K", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	byEmail, err := repo.GetByEmail(ctx, "cook@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	exists, err := repo.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, &models.User{Email: "cook@example.com", Username: "other", Password: "hash"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	require.NoError(t, repo.SetRole(ctx, "cook@example.com", models.RoleAdmin))
	promoted, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	assert.ErrorIs(t, repo.SetRole(ctx, "ghost@example.com", models.RoleAdmin), repositories.ErrNotFound)
}

func TestUserRepository_ListCountAndPassword(t *testing.T) {
	db := testutil.DB(t)
	repo := repositories.NewGORMUserRepository(db)
	ctx := context.Background()

	carol := testutil.SeedUser(t, db, "carol", models.RoleUser)
	testutil.SeedUser(t, db, "alice", models.RoleUser)
	testutil.SeedUser(t, db, "bob", models.RoleUser)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	users, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)

	require.NoError(t, repo.UpdatePassword(ctx, carol.ID, "new-hash"))
	updated, err := repo.GetByID(ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.Password)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "hash"), repositories.ErrNotFound)
}
