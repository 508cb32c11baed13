package service

import (
	"net/http"
	"strings"

	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
)

var passwordRules = []string{
	"At least 8 characters",
	"Contain uppercase letters: A-Z",
	"Lowercase letters: a-z",
	"Numbers: 0-9",
	"Any of the special characters: !@#$%^&+=",
}

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryForbidden,
		http.StatusForbidden,
		"Invalid Credentials",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"email already registered",
	)

	ErrInvalidEmail = commonerrors.NewDomainError(
		"INVALID_EMAIL",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"email must be a valid email address",
	)

	ErrWeakPassword = commonerrors.NewDomainError(
		"WEAK_PASSWORD",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"password requirements: "+strings.Join(passwordRules, "; "),
	)
)
