package service

import (
	"context"
	"errors"

	"github.com/99minutos/auth-portal/internal/core/domain"
	"github.com/99minutos/auth-portal/internal/core/ports"
)

// LoginPath is where denied requests are sent.
const LoginPath = "/login"

// Decision is the outcome of a Guard check. Redirect is set only on deny.
type Decision struct {
	Allowed  bool
	User     *domain.User
	Redirect string
}

// Guard permits access only to requests carrying a session that resolves to a user.
type Guard struct {
	sessions ports.SessionManager
}

func NewGuard(sessions ports.SessionManager) *Guard {
	return &Guard{sessions: sessions}
}

// Check returns an error only when the session could not be resolved for a
// reason other than it being invalid.
func (g *Guard) Check(ctx context.Context, token string) (Decision, error) {
	user, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			return Decision{Redirect: LoginPath}, nil
		}
		return Decision{}, err
	}
	return Decision{Allowed: true, User: user}, nil
}
