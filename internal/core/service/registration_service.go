package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-portal/internal/core/domain"
	"github.com/99minutos/auth-portal/internal/core/ports"
	"github.com/99minutos/auth-portal/internal/pkg/metrics"
)

// registration carries the rules checked before anything reaches the store.
type registration struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"min=6,max=72"`
	PasswordConfirm string `validate:"eqfield=Password"`
}

// RegistrationService validates, hashes and stores new accounts.
type RegistrationService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	audit    ports.AuditRecorder
	validate *validator.Validate
	log      zerolog.Logger
}

func NewRegistrationService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *RegistrationService {
	if audit == nil {
		audit = nopRecorder{}
	}
	return &RegistrationService{
		users:    users,
		hasher:   hasher,
		audit:    audit,
		validate: validator.New(),
		log:      log,
	}
}

// Register returns *domain.ValidationError, domain.ErrDuplicateEmail, or a
// wrapped internal error. No record exists after any failure.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.check(in); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		// max=72 counts runes; bcrypt's limit is in bytes.
		if errors.Is(err, ErrPasswordTooLong) {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return nil, &domain.ValidationError{Messages: []string{"Password must be at most 72 chars long"}}
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			s.record(in.Email, "", "duplicate")
			return nil, domain.ErrDuplicateEmail
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.record(created.Email, created.ID, "created")
	s.log.Info().Str("user_id", created.ID).Msg("user registered")

	return created, nil
}

func (s *RegistrationService) check(in ports.RegisterInput) error {
	err := s.validate.Struct(registration{
		Name:            in.Name,
		Email:           in.Email,
		Password:        in.Password,
		PasswordConfirm: in.PasswordConfirm,
	})
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &domain.ValidationError{Messages: []string{"Invalid registration details"}}
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, registrationMessage(fe))
	}
	return &domain.ValidationError{Messages: msgs}
}

func (s *RegistrationService) record(email, userID, outcome string) {
	s.audit.Record(domain.AuthEvent{
		Kind:       domain.EventRegister,
		Email:      email,
		UserID:     userID,
		Outcome:    outcome,
		OccurredAt: time.Now().UTC(),
	})
}

// registrationMessage converts a rule violation into the form's wording.
func registrationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return "Please provide your name"
	case "Email":
		return "Please provide a valid email address"
	case "Password":
		if fe.Tag() == "max" {
			return "Password must be at most 72 chars long"
		}
		return "Password must be at least 6 chars long"
	case "PasswordConfirm":
		return "Passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field()))
	}
}
