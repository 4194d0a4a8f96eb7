package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/auth-portal/internal/core/domain"
)

// formValidator wraps go-playground/validator so Echo can call c.Validate(req).
// Failures come back as *domain.ValidationError keyed by form field name.
type formValidator struct {
	v *validator.Validate
}

// NewValidator returns a formValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *formValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return &formValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (fv *formValidator) Validate(i any) error {
	err := fv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &domain.ValidationError{Messages: msgs}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please provide your %s", fe.Field())
	case "email":
		return fmt.Sprintf("Please provide a valid %s address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s chars long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s chars long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
