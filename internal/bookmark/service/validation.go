package service

import (
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/linkmark/internal/common/constants"
	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
)

var validate = validator.New()

func validateURL(raw string) error {
	if len(raw) > constants.BookmarkURLMaxLength {
		return ErrInvalidURL
	}
	if err := validate.Var(raw, "required,url"); err != nil {
		return ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}

func validateInput(input Input) error {
	if len(input.Body) > constants.BookmarkBodyMaxLength {
		return ErrInvalidBody.WithMessage(fmt.Sprintf("Bookmark body must be at most %d characters", constants.BookmarkBodyMaxLength))
	}
	return validateURL(input.URL)
}

func validateSearch(search string) error {
	if len(search) > constants.MaxSearchQueryLength {
		return commonerrors.ErrInvalidInput.WithMessage(fmt.Sprintf("search must be at most %d characters", constants.MaxSearchQueryLength))
	}
	return nil
}
