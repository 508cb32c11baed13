package service

import (
	"context"
	"errors"

	"github.com/AlibekovAA/linkmark/internal/bookmark/domain"
	"github.com/AlibekovAA/linkmark/internal/bookmark/repository"
	"github.com/AlibekovAA/linkmark/internal/bookmark/shortcode"
	"github.com/AlibekovAA/linkmark/internal/common/constants"
	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	"github.com/AlibekovAA/linkmark/internal/common/resilience"
	identitydomain "github.com/AlibekovAA/linkmark/internal/identity/domain"
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

type Authorizer interface {
	Authorize(identity identitydomain.Identity, ownerID userdomain.ID) error
}

type BookmarkService struct {
	repo         repository.Repository
	generator    *shortcode.Generator
	authorizer   Authorizer
	missCache    repository.MissCache
	breaker      *resilience.CircuitBreaker
	defaultLimit int
	maxLimit     int
	log          *logger.Logger
}

type Option func(*BookmarkService)

func WithMissCache(cache repository.MissCache) Option {
	return func(s *BookmarkService) { s.missCache = cache }
}

// WithCircuitBreaker routes every storage call through breaker.
func WithCircuitBreaker(breaker *resilience.CircuitBreaker) Option {
	return func(s *BookmarkService) { s.breaker = breaker }
}

func WithListLimits(defaultLimit, maxLimit int) Option {
	return func(s *BookmarkService) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

func NewBookmarkService(
	repo repository.Repository,
	generator *shortcode.Generator,
	authorizer Authorizer,
	log *logger.Logger,
	opts ...Option,
) *BookmarkService {
	s := &BookmarkService{
		repo:         repo,
		generator:    generator,
		authorizer:   authorizer,
		missCache:    repository.NoopMissCache{},
		defaultLimit: constants.DefaultBookmarkLimit,
		maxLimit:     constants.MaxBookmarkLimit,
		log:          log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

type Input struct {
	Body string
	URL  string
}

type ListInput struct {
	Search string
	Limit  int
	Offset int
}

func (s *BookmarkService) List(ctx context.Context, identity identitydomain.Identity, input ListInput) ([]domain.Bookmark, error) {
	if err := validateSearch(input.Search); err != nil {
		return nil, err
	}

	query := domain.ListQuery{
		UserID: identity.UserID,
		Search: input.Search,
		Limit:  s.clampLimit(input.Limit),
		Offset: max(input.Offset, 0),
	}

	var bookmarks []domain.Bookmark
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		bookmarks, err = s.repo.List(ctx, query)
		return err
	})
	if err != nil {
		return nil, s.storageError(ctx, "bookmark_list_failed", err)
	}
	return bookmarks, nil
}

func (s *BookmarkService) Get(ctx context.Context, identity identitydomain.Identity, id domain.ID) (domain.Bookmark, error) {
	var bookmark domain.Bookmark
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		bookmark, err = s.repo.FindByID(ctx, id)
		if errors.Is(err, repository.ErrBookmarkNotFound) {
			return bookmarkNotFound(id)
		}
		return err
	})
	if err != nil {
		return domain.Bookmark{}, s.storageError(ctx, "bookmark_get_failed", err)
	}

	if err := s.authorize(ctx, identity, bookmark, "get"); err != nil {
		return domain.Bookmark{}, err
	}
	return bookmark, nil
}

// Create checks the URL is new system-wide, draws a short code against the
// same transaction and inserts. A concurrent insert of the same code rolls the
// transaction back and the whole sequence is retried.
func (s *BookmarkService) Create(ctx context.Context, identity identitydomain.Identity, input Input) (domain.Bookmark, error) {
	if err := validateInput(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(identity.UserID),
			"action":  "bookmark_create_invalid",
		}).Debugf("create rejected: %v", err)
		return domain.Bookmark{}, err
	}

	var created domain.Bookmark
	err := s.call(ctx, func(ctx context.Context) error {
		for attempt := 1; attempt <= constants.BookmarkInsertAttempts; attempt++ {
			err := s.repo.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
				if err := tx.LockURL(ctx, input.URL); err != nil {
					return err
				}

				exists, err := tx.URLExists(ctx, input.URL)
				if err != nil {
					return err
				}
				if exists {
					return ErrBookmarkExists
				}

				code, err := s.generator.Generate(ctx, tx)
				if err != nil {
					return err
				}

				created, err = tx.Insert(ctx, domain.Bookmark{
					Body:      input.Body,
					URL:       input.URL,
					ShortCode: code,
					UserID:    identity.UserID,
					Owner:     userdomain.Summary{ID: identity.UserID, Email: identity.Email},
				})
				return err
			})
			if !errors.Is(err, repository.ErrShortCodeTaken) {
				if errors.Is(err, shortcode.ErrExhausted) {
					return ErrShortCodeExhausted.WithCause(err)
				}
				return err
			}

			incrementInsertRetries()
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(identity.UserID),
				"attempt": attempt,
				"action":  "bookmark_create_code_race",
			}).Warn("short code taken by concurrent insert, retrying")
		}
		return ErrShortCodeExhausted
	})
	if err != nil {
		if errors.Is(err, ErrBookmarkExists) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(identity.UserID),
				"action":  "bookmark_create_duplicate",
			}).Debug("create rejected: url already bookmarked")
			return domain.Bookmark{}, err
		}
		return domain.Bookmark{}, s.storageError(ctx, "bookmark_create_failed", err)
	}

	if err := s.missCache.Forget(ctx, created.ShortCode); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"short_code": created.ShortCode,
			"action":     "miss_cache_forget_failed",
		}).Warnf("failed to clear miss cache: %v", err)
	}

	incrementBookmarksCreated()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":     string(identity.UserID),
		"bookmark_id": int64(created.ID),
		"short_code":  created.ShortCode,
		"action":      "bookmark_create_success",
	}).Info("bookmark created")

	return created, nil
}

// Update overwrites body and url. The short code and visit count are kept.
// Input is validated only once the caller owns the bookmark, so a missing id
// reports 404 whatever the payload.
func (s *BookmarkService) Update(ctx context.Context, identity identitydomain.Identity, id domain.ID, input Input) (domain.Bookmark, error) {
	var updated domain.Bookmark
	err := s.call(ctx, func(ctx context.Context) error {
		return s.repo.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			existing, err := s.findOwned(ctx, tx, identity, id, "update")
			if err != nil {
				return err
			}
			if err := validateInput(input); err != nil {
				return err
			}

			existing.Body = input.Body
			existing.URL = input.URL
			updated, err = tx.Update(ctx, existing)
			return err
		})
	})
	if err != nil {
		return domain.Bookmark{}, s.storageError(ctx, "bookmark_update_failed", err)
	}

	incrementBookmarksUpdated()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":     string(identity.UserID),
		"bookmark_id": int64(id),
		"action":      "bookmark_update_success",
	}).Info("bookmark updated")

	return updated, nil
}

func (s *BookmarkService) Delete(ctx context.Context, identity identitydomain.Identity, id domain.ID) error {
	err := s.call(ctx, func(ctx context.Context) error {
		return s.repo.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			if _, err := s.findOwned(ctx, tx, identity, id, "delete"); err != nil {
				return err
			}
			return tx.Delete(ctx, id)
		})
	})
	if err != nil {
		return s.storageError(ctx, "bookmark_delete_failed", err)
	}

	incrementBookmarksDeleted()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":     string(identity.UserID),
		"bookmark_id": int64(id),
		"action":      "bookmark_delete_success",
	}).Info("bookmark deleted")

	return nil
}

func (s *BookmarkService) Stats(ctx context.Context, identity identitydomain.Identity) ([]domain.Stat, error) {
	var stats []domain.Stat
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		stats, err = s.repo.Stats(ctx, identity.UserID)
		return err
	})
	if err != nil {
		return nil, s.storageError(ctx, "bookmark_stats_failed", err)
	}
	return stats, nil
}

// findOwned locks the row, then checks existence before ownership.
func (s *BookmarkService) findOwned(ctx context.Context, tx repository.Tx, identity identitydomain.Identity, id domain.ID, operation string) (domain.Bookmark, error) {
	existing, err := tx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookmarkNotFound) {
			return domain.Bookmark{}, bookmarkNotFound(id)
		}
		return domain.Bookmark{}, err
	}
	if err := s.authorize(ctx, identity, existing, operation); err != nil {
		return domain.Bookmark{}, err
	}
	return existing, nil
}

func (s *BookmarkService) authorize(ctx context.Context, identity identitydomain.Identity, bookmark domain.Bookmark, operation string) error {
	if err := s.authorizer.Authorize(identity, bookmark.UserID); err != nil {
		incrementOwnershipDenied(operation)
		s.log.WithFields(ctx, logger.Fields{
			"user_id":     string(identity.UserID),
			"bookmark_id": int64(bookmark.ID),
			"action":      "bookmark_" + operation + "_forbidden",
		}).Warn("ownership check failed")
		return err
	}
	return nil
}

func (s *BookmarkService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	return min(limit, s.maxLimit)
}

func (s *BookmarkService) call(ctx context.Context, fn func(context.Context) error) error {
	if s.breaker == nil {
		return fn(ctx)
	}
	return s.breaker.Call(ctx, fn)
}

// storageError passes domain errors through and wraps anything else as an
// internal error with the cause attached.
func (s *BookmarkService) storageError(ctx context.Context, action string, err error) error {
	if _, ok := commonerrors.AsDomainError(err); ok {
		return err
	}
	s.log.WithFields(ctx, logger.Fields{
		"action": action,
	}).Errorf("storage operation failed: %v", err)
	return commonerrors.ErrDatabaseError.WithCause(err)
}
