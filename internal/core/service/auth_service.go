package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-portal/internal/core/domain"
	"github.com/99minutos/auth-portal/internal/core/ports"
	"github.com/99minutos/auth-portal/internal/pkg/metrics"
)

// dummyPassword is hashed once per strategy so unknown emails cost the same
// bcrypt comparison as known ones.
const dummyPassword = "timing-equaliser-not-a-real-password"

// LocalStrategy authenticates an email/password credential against the user store.
type LocalStrategy struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	audit     ports.AuditRecorder
	log       zerolog.Logger
	dummyHash string
}

// NewLocalStrategy precomputes the dummy hash and fails if the hasher can't
// produce one.
func NewLocalStrategy(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) (*LocalStrategy, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("local strategy: dummy hash: %w", err)
	}
	if audit == nil {
		audit = nopRecorder{}
	}
	return &LocalStrategy{
		users:     users,
		hasher:    hasher,
		audit:     audit,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Authenticate returns the matching user, or a *domain.AuthFailure.
func (s *LocalStrategy) Authenticate(ctx context.Context, cred domain.Credential) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, cred.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn the same bcrypt work as a real comparison; the result is irrelevant.
			_, _ = s.hasher.Verify(cred.Password, s.dummyHash)
			return nil, s.reject(cred.Email, "", domain.FailureNoSuchUser, nil)
		}
		return nil, s.reject(cred.Email, "", domain.FailureInternal, fmt.Errorf("find user: %w", err))
	}

	ok, err := s.hasher.Verify(cred.Password, user.PasswordHash)
	if err != nil {
		return nil, s.reject(cred.Email, user.ID, domain.FailureInternal, err)
	}
	if !ok {
		return nil, s.reject(cred.Email, user.ID, domain.FailureWrongPassword, nil)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.audit.Record(domain.AuthEvent{
		Kind:       domain.EventLogin,
		Email:      cred.Email,
		UserID:     user.ID,
		Outcome:    "success",
		OccurredAt: time.Now().UTC(),
	})
	s.log.Info().Str("user_id", user.ID).Msg("user authenticated")

	return user, nil
}

func (s *LocalStrategy) reject(email, userID string, reason domain.FailureReason, cause error) error {
	metrics.LoginAttemptsTotal.WithLabelValues(reason.String()).Inc()
	s.audit.Record(domain.AuthEvent{
		Kind:       domain.EventLogin,
		Email:      email,
		UserID:     userID,
		Outcome:    reason.String(),
		OccurredAt: time.Now().UTC(),
	})

	if reason == domain.FailureInternal {
		s.log.Error().Err(cause).Str("user_id", userID).Msg("authentication failed unexpectedly")
	} else {
		s.log.Debug().Str("reason", reason.String()).Msg("authentication rejected")
	}
	return &domain.AuthFailure{Reason: reason, Err: cause}
}

type nopRecorder struct{}

func (nopRecorder) Record(domain.AuthEvent) {}
