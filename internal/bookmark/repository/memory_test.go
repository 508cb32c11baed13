package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/linkmark/internal/bookmark/domain"
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

func insert(t *testing.T, repo *MemoryRepository, b domain.Bookmark) domain.Bookmark {
	t.Helper()
	var created domain.Bookmark
	err := repo.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		var err error
		created, err = tx.Insert(ctx, b)
		return err
	})
	require.NoError(t, err)
	return created
}

func TestMemoryRepository_InsertAndFind(t *testing.T) {
	repo := NewMemoryRepository(nil)

	created := insert(t, repo, domain.Bookmark{
		Body:      "GitHub",
		URL:       "https://github.com/x",
		ShortCode: "abc",
		UserID:    "user-a",
		Owner:     userdomain.Summary{Email: "a@x.com"},
	})

	assert.Equal(t, domain.ID(1), created.ID)
	assert.Zero(t, created.Visits)
	assert.Equal(t, userdomain.ID("user-a"), created.Owner.ID)
	assert.Equal(t, "a@x.com", created.Owner.Email)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc", found.ShortCode)

	_, err = repo.FindByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrBookmarkNotFound)

	exists, err := repo.ShortCodeExists(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ShortCodeExists(context.Background(), "xyz")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryRepository_DuplicateShortCode(t *testing.T) {
	repo := NewMemoryRepository(nil)
	insert(t, repo, domain.Bookmark{URL: "https://a.example", ShortCode: "abc", UserID: "u"})

	err := repo.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		_, err := tx.Insert(ctx, domain.Bookmark{URL: "https://b.example", ShortCode: "abc", UserID: "u"})
		return err
	})
	require.ErrorIs(t, err, ErrShortCodeTaken)
}

func TestMemoryRepository_RollbackOnError(t *testing.T) {
	repo := NewMemoryRepository(nil)
	boom := errors.New("boom")

	err := repo.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		if _, err := tx.Insert(ctx, domain.Bookmark{URL: "https://a.example", ShortCode: "abc", UserID: "u"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.FindByID(context.Background(), 1)
	require.ErrorIs(t, err, ErrBookmarkNotFound)

	err = repo.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		exists, err := tx.ShortCodeExists(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryRepository_ListScopesAndSearches(t *testing.T) {
	repo := NewMemoryRepository(nil)
	insert(t, repo, domain.Bookmark{Body: "Go docs", URL: "https://go.dev", ShortCode: "aaa", UserID: "u1"})
	insert(t, repo, domain.Bookmark{Body: "News", URL: "https://news.example", ShortCode: "bbb", UserID: "u1"})
	insert(t, repo, domain.Bookmark{Body: "Go blog", URL: "https://go.dev/blog", ShortCode: "ccc", UserID: "u2"})
	insert(t, repo, domain.Bookmark{Body: "Misc", URL: "https://misc.example", ShortCode: "GoX", UserID: "u1"})

	all, err := repo.List(context.Background(), domain.ListQuery{UserID: "u1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, b := range all {
		assert.Equal(t, userdomain.ID("u1"), b.UserID)
	}

	matched, err := repo.List(context.Background(), domain.ListQuery{UserID: "u1", Search: "go", Limit: 10})
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "aaa", matched[0].ShortCode)
	assert.Equal(t, "GoX", matched[1].ShortCode)

	page, err := repo.List(context.Background(), domain.ListQuery{UserID: "u1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bbb", page[0].ShortCode)

	empty, err := repo.List(context.Background(), domain.ListQuery{UserID: "u1", Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryRepository_ConcurrentIncrements(t *testing.T) {
	repo := NewMemoryRepository(nil)
	insert(t, repo, domain.Bookmark{URL: "https://a.example", ShortCode: "abc", UserID: "u"})

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementVisits(context.Background(), "abc")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	b, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(n), b.Visits)

	_, err = repo.IncrementVisits(context.Background(), "zzz")
	require.ErrorIs(t, err, ErrBookmarkNotFound)
}

func TestMemoryRepository_UpdateKeepsCodeAndVisits(t *testing.T) {
	repo := NewMemoryRepository(nil)
	created := insert(t, repo, domain.Bookmark{Body: "old", URL: "https://a.example", ShortCode: "abc", UserID: "u"})
	_, err := repo.IncrementVisits(context.Background(), "abc")
	require.NoError(t, err)

	var updated domain.Bookmark
	err = repo.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		updated, err = tx.Update(ctx, domain.Bookmark{ID: created.ID, Body: "new", URL: "https://b.example", ShortCode: "zzz"})
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Body)
	assert.Equal(t, "https://b.example", updated.URL)
	assert.Equal(t, "abc", updated.ShortCode)
	assert.Equal(t, int64(1), updated.Visits)
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
	assert.Equal(t, "%%", containsPattern(""))
}
