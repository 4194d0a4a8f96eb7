package ports

import (
	"context"

	"github.com/99minutos/auth-portal/internal/core/domain"
)

// Authenticator resolves a credential to a user or a *domain.AuthFailure.
type Authenticator interface {
	Authenticate(ctx context.Context, cred domain.Credential) (*domain.User, error)
}

// RegisterInput is the DTO passed from the transport layer to RegistrationService.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
}
