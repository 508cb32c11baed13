package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/AlibekovAA/linkmark/internal/bookmark/domain"
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrShortCodeTaken   = errors.New("short code already taken")
)

type Repository interface {
	List(ctx context.Context, query domain.ListQuery) ([]domain.Bookmark, error)
	FindByID(ctx context.Context, id domain.ID) (domain.Bookmark, error)
	Stats(ctx context.Context, userID userdomain.ID) ([]domain.Stat, error)
	// IncrementVisits adds one visit to the bookmark with code in a single
	// statement and returns its target.
	IncrementVisits(ctx context.Context, code string) (domain.Visit, error)
	ShortCodeExists(ctx context.Context, code string) (bool, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of operations that must run inside one storage transaction.
type Tx interface {
	// LockURL serialises creates of the same URL until the transaction ends.
	LockURL(ctx context.Context, url string) error
	URLExists(ctx context.Context, url string) (bool, error)
	ShortCodeExists(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, bookmark domain.Bookmark) (domain.Bookmark, error)
	FindByIDForUpdate(ctx context.Context, id domain.ID) (domain.Bookmark, error)
	Update(ctx context.Context, bookmark domain.Bookmark) (domain.Bookmark, error)
	Delete(ctx context.Context, id domain.ID) error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
