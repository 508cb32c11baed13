package service

import (
	"context"
	"errors"

	"github.com/AlibekovAA/linkmark/internal/bookmark/domain"
	"github.com/AlibekovAA/linkmark/internal/bookmark/repository"
	"github.com/AlibekovAA/linkmark/internal/bookmark/shortcode"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
)

const maxShortCodeLength = 64

// Resolve counts one visit for code and returns the target URL. It needs no
// identity. Unknown codes are remembered in the miss cache.
func (s *BookmarkService) Resolve(ctx context.Context, code string) (domain.Visit, error) {
	if len(code) > maxShortCodeLength || !shortcode.Valid(code) {
		incrementRedirects("invalid")
		return domain.Visit{}, ErrShortCodeNotFound
	}

	missing, err := s.missCache.IsMissing(ctx, code)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"short_code": code,
			"action":     "miss_cache_read_failed",
		}).Warnf("miss cache unavailable: %v", err)
	} else if missing {
		incrementMissCacheHits()
		incrementRedirects("miss")
		return domain.Visit{}, ErrShortCodeNotFound
	}

	var visit domain.Visit
	err = s.call(ctx, func(ctx context.Context) error {
		var err error
		visit, err = s.repo.IncrementVisits(ctx, code)
		if errors.Is(err, repository.ErrBookmarkNotFound) {
			return ErrShortCodeNotFound
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrShortCodeNotFound) {
			incrementRedirects("miss")
			s.rememberMissing(ctx, code)
			s.log.WithFields(ctx, logger.Fields{
				"short_code": code,
				"action":     "redirect_miss",
			}).Debug("short code not found")
			return domain.Visit{}, err
		}
		incrementRedirects("error")
		return domain.Visit{}, s.storageError(ctx, "redirect_failed", err)
	}

	incrementRedirects("hit")
	s.log.WithFields(ctx, logger.Fields{
		"short_code": code,
		"visits":     visit.Visits,
		"action":     "redirect_hit",
	}).Debug("short code resolved")

	return visit, nil
}

// rememberMissing marks code missing, then looks it up again. A create that
// committed after the failed lookup may have cleared the cache before the
// mark landed, so a code that exists now is forgotten again.
func (s *BookmarkService) rememberMissing(ctx context.Context, code string) {
	if err := s.missCache.MarkMissing(ctx, code); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"short_code": code,
			"action":     "miss_cache_write_failed",
		}).Warnf("failed to remember missing code: %v", err)
		return
	}

	var exists bool
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.repo.ShortCodeExists(ctx, code)
		return err
	})
	if err == nil && !exists {
		return
	}
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"short_code": code,
			"action":     "miss_cache_recheck_failed",
		}).Warnf("could not confirm missing code, clearing mark: %v", err)
	}
	if err := s.missCache.Forget(ctx, code); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"short_code": code,
			"action":     "miss_cache_forget_failed",
		}).Warnf("failed to clear miss cache: %v", err)
	}
}
