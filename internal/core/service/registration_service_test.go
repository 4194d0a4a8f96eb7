package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/auth-portal/internal/core/domain"
	"github.com/99minutos/auth-portal/internal/core/ports"
)

func newTestRegistration() (*RegistrationService, *stubUserRepo, *recordingAudit) {
	repo := newStubUserRepo()
	audit := &recordingAudit{}
	return NewRegistrationService(repo, NewBcryptHasher(bcrypt.MinCost), audit, zerolog.Nop()), repo, audit
}

func TestRegistrationService_Register_Success(t *testing.T) {
	svc, _, audit := newTestRegistration()

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "  Ann ", Email: "ann@x.com", Password: "secret1", PasswordConfirm: "secret1",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" || user.Name != "Ann" || user.Email != "ann@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.CreatedAt.IsZero() {
		t.Fatalf("expected creation timestamp")
	}
	if ev := audit.last(); ev.Kind != domain.EventRegister || ev.Outcome != "created" {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}

func TestRegistrationService_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   ports.RegisterInput
		want string
	}{
		{
			name: "short password",
			in:   ports.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "abc", PasswordConfirm: "abc"},
			want: "Password must be at least 6 chars long",
		},
		{
			name: "bad email",
			in:   ports.RegisterInput{Name: "Ann", Email: "not-an-email", Password: "secret1", PasswordConfirm: "secret1"},
			want: "Please provide a valid email address",
		},
		{
			name: "missing name",
			in:   ports.RegisterInput{Name: "   ", Email: "ann@x.com", Password: "secret1", PasswordConfirm: "secret1"},
			want: "Please provide your name",
		},
		{
			name: "mismatched confirmation",
			in:   ports.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1", PasswordConfirm: "secret2"},
			want: "Passwords do not match",
		},
		{
			name: "too long",
			in:   ports.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: strings.Repeat("a", 73), PasswordConfirm: strings.Repeat("a", 73)},
			want: "Password must be at most 72 chars long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestRegistration()

			_, err := svc.Register(context.Background(), tt.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, m := range ve.Messages {
				if m == tt.want {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected message %q in %v", tt.want, ve.Messages)
			}
			if len(repo.users) != 0 {
				t.Fatalf("no user may be created on validation failure")
			}
		})
	}
}

func TestRegistrationService_Register_CollectsAllMessages(t *testing.T) {
	svc, _, _ := newTestRegistration()

	_, err := svc.Register(context.Background(), ports.RegisterInput{Email: "nope", Password: "abc", PasswordConfirm: "abc"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %v", ve.Messages)
	}
}

func TestRegistrationService_Register_Duplicate(t *testing.T) {
	svc, repo, _ := newTestRegistration()
	in := ports.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1", PasswordConfirm: "secret1"}

	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if n := repo.count("ann@x.com"); n != 1 {
		t.Fatalf("expected exactly one record, got %d", n)
	}
}

func TestRegistrationService_Register_ConcurrentDuplicates(t *testing.T) {
	svc, repo, _ := newTestRegistration()
	in := ports.RegisterInput{Name: "Ann", Email: "race@x.com", Password: "secret1", PasswordConfirm: "secret1"}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Register(context.Background(), in); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 || repo.count("race@x.com") != 1 {
		t.Fatalf("expected exactly one registration, got created=%d stored=%d", created, repo.count("race@x.com"))
	}
}

func TestRegistrationService_RegisterThenLogin(t *testing.T) {
	svc, repo, _ := newTestRegistration()
	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Ann", Email: "ann@x.com", Password: "secret1", PasswordConfirm: "secret1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	strategy, err := NewLocalStrategy(repo, NewBcryptHasher(bcrypt.MinCost), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocalStrategy: %v", err)
	}
	user, err := strategy.Authenticate(context.Background(), domain.Credential{Email: "ann@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Email != "ann@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}
