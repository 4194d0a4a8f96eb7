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

const defaultSessionTTL = 24 * time.Hour

// SessionManager implements ports.SessionManager over a server-side store.
// Tokens are signed with secret; the user is always re-read from users.
type SessionManager struct {
	store  ports.SessionStore
	users  ports.UserRepository
	audit  ports.AuditRecorder
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewSessionManager(
	store ports.SessionStore,
	users ports.UserRepository,
	audit ports.AuditRecorder,
	secret string,
	ttl time.Duration,
	log zerolog.Logger,
) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if audit == nil {
		audit = nopRecorder{}
	}
	return &SessionManager{
		store:  store,
		users:  users,
		audit:  audit,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

// TTL is the lifetime of issued sessions.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue binds a fresh session to userID and returns its token.
func (m *SessionManager) Issue(ctx context.Context, userID string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}

	now := m.now().UTC()
	sess := &domain.Session{
		IDHash:    hashSessionID(id),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	token, err := toToken(m.secret, id, now, m.ttl)
	if err != nil {
		_ = m.store.Delete(ctx, sess.IDHash)
		return "", fmt.Errorf("issue session: sign token: %w", err)
	}

	metrics.SessionOpsTotal.WithLabelValues("issued").Inc()
	return token, nil
}

// Resolve returns the live user behind token. Unknown, expired, forged or
// orphaned sessions all yield domain.ErrInvalidSession.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidSession
	}
	id, err := fromToken(m.secret, token)
	if err != nil {
		metrics.SessionOpsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidSession
	}

	idHash := hashSessionID(id)
	sess, err := m.store.Find(ctx, idHash)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			metrics.SessionOpsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if sess.IsExpiredAt(m.now()) {
		_ = m.store.Delete(ctx, idHash)
		metrics.SessionOpsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidSession
	}

	user, err := m.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Fail closed: the account behind this session is gone.
			if delErr := m.store.Delete(ctx, idHash); delErr != nil {
				m.log.Warn().Err(delErr).Msg("failed to delete orphaned session")
			}
			metrics.SessionOpsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	metrics.SessionOpsTotal.WithLabelValues("resolved").Inc()
	return user, nil
}

// Invalidate destroys the session behind token. Tokens that don't verify are ignored.
func (m *SessionManager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	id, err := fromToken(m.secret, token)
	if err != nil {
		return nil
	}

	idHash := hashSessionID(id)
	var userID string
	if sess, err := m.store.Find(ctx, idHash); err == nil {
		userID = sess.UserID
	}
	if err := m.store.Delete(ctx, idHash); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}

	metrics.SessionOpsTotal.WithLabelValues("invalidated").Inc()
	if userID != "" {
		// Email keys the audit shard; a vanished user still gets its logout recorded.
		var email string
		if user, err := m.users.FindByID(ctx, userID); err == nil {
			email = user.Email
		}
		m.audit.Record(domain.AuthEvent{
			Kind:       domain.EventLogout,
			Email:      email,
			UserID:     userID,
			Outcome:    "success",
			OccurredAt: m.now().UTC(),
		})
	}
	return nil
}
