package handler

import (
	"errors"
	"reflect"
	"testing"

	"github.com/99minutos/auth-portal/internal/core/domain"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&loginRequest{Email: "a@x.com", Password: "pw"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	err := v.Validate(&loginRequest{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %v", err)
	}
	want := []string{"Please provide your email", "Please provide your password"}
	if !reflect.DeepEqual(ve.Messages, want) {
		t.Fatalf("expected %v, got %v", want, ve.Messages)
	}
}
