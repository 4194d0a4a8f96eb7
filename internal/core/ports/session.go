package ports

import (
	"context"

	"github.com/99minutos/auth-portal/internal/core/domain"
)

// SessionStore is server-side keyed session state.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	// Find returns domain.ErrInvalidSession when no live session has idHash.
	Find(ctx context.Context, idHash string) (*domain.Session, error)
	Delete(ctx context.Context, idHash string) error
}

// SessionManager issues, resolves and invalidates session tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (string, error)
	// Resolve returns the live user bound to token, or domain.ErrInvalidSession.
	Resolve(ctx context.Context, token string) (*domain.User, error)
	Invalidate(ctx context.Context, token string) error
}
