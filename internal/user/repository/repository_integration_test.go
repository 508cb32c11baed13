//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/linkmark/internal/common/testutil"
	"github.com/AlibekovAA/linkmark/internal/user/domain"
)

func TestPgRepository(t *testing.T) {
	repo := NewPgRepository(testutil.StartPostgres(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, domain.User{
		ID:           domain.ID(uuid.NewString()),
		Email:        "a@x.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = repo.Create(ctx, domain.User{
		ID:           domain.ID(uuid.NewString()),
		Email:        "a@x.com",
		PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = repo.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.FindByID(ctx, domain.ID(uuid.NewString()))
	assert.ErrorIs(t, err, ErrUserNotFound)
}
