package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs the `validate` tags of v and reports the first failing
// field as an invalid input error.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return commonerrors.ErrInvalidInput.WithMessage(describeFieldError(fe))
	}

	return commonerrors.ErrInvalidInput.WithCause(err)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// DecodeAndValidate reads a JSON body into v and validates it.
func DecodeAndValidate(r *http.Request, v any) error {
	if err := DecodeJSON(r, v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return commonerrors.ErrPayloadTooLarge
		}
		return commonerrors.ErrInvalidPayload.WithCause(err)
	}
	return ValidateStruct(v)
}

func ValidateUUID(s string) error {
	if s == "" {
		return commonerrors.ErrInvalidInput.WithMessage("id is required")
	}
	if _, err := uuid.Parse(s); err != nil {
		return commonerrors.ErrInvalidInput.WithMessage("id must be a valid UUID")
	}
	return nil
}

// ParseIntQuery returns fallback when key is absent and rejects values that
// are not non-negative integers.
func ParseIntQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, commonerrors.ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be a non-negative integer", key))
	}
	return n, nil
}

func ParseInt64Param(raw, name string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, commonerrors.ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be a positive integer", name))
	}
	return n, nil
}
