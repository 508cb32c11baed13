package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/linkmark/internal/user/domain"
)

func TestMemoryRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("u1"), byEmail.ID)

	byID, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.User{ID: "u1", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.User{ID: "u2", Email: "a@x.com"})
	require.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestMemoryRepository_EmailIsCaseSensitive(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.User{ID: "u1", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.User{ID: "u2", Email: "A@x.com"})
	require.NoError(t, err)

	_, err = repo.FindByEmail(ctx, "A@X.COM")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryRepository_NotFound(t *testing.T) {
	_, err := NewMemoryRepository().FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}
