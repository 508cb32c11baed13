package service

import (
	"fmt"
	"net/http"

	"github.com/AlibekovAA/linkmark/internal/bookmark/domain"
	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
)

var (
	ErrInvalidURL = commonerrors.NewDomainError(
		"INVALID_URL",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Please provide a valid URL",
	)

	ErrInvalidBody = commonerrors.NewDomainError(
		"INVALID_BODY",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Bookmark body is too long",
	)

	ErrBookmarkExists = commonerrors.NewDomainError(
		"BOOKMARK_EXISTS",
		commonerrors.CategoryConflict,
		http.StatusBadRequest,
		"Bookmark already exists",
	)

	ErrBookmarkNotFound = commonerrors.NewDomainError(
		"BOOKMARK_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"Bookmark was not found",
	)

	ErrShortCodeNotFound = commonerrors.NewDomainError(
		"SHORT_CODE_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"Short url was not found",
	)

	ErrShortCodeExhausted = commonerrors.NewDomainError(
		"SHORT_CODE_EXHAUSTED",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"could not allocate a short url",
	)
)

func bookmarkNotFound(id domain.ID) commonerrors.DomainError {
	return ErrBookmarkNotFound.WithMessage(fmt.Sprintf("Bookmark with id:%d was not found", id))
}
