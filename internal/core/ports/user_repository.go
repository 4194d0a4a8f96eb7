package ports

import (
	"context"

	"github.com/99minutos/auth-portal/internal/core/domain"
)

// UserRepository is the credential store. It owns every User record.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches exactly.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create inserts the user only if no record holds the same email, and
	// returns domain.ErrDuplicateEmail otherwise. The check and the insert
	// are a single atomic operation.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
