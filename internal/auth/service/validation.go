package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/linkmark/internal/common/constants"
)

var (
	passwordRegex = regexp.MustCompile(`^[A-Za-z0-9!@#$%^&+=]{8,}$`)
	validate      = validator.New()
)

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil || len(email) > constants.EmailMaxLength {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) > constants.PasswordMaxLength || !passwordRegex.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}

func validateRegistration(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return validatePassword(password)
}
