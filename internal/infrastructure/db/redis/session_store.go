package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/auth-portal/internal/core/domain"
)

// SessionStore keeps sessions in Redis, expiring with the session itself.
// Key format: session:<sha256(session_id)>
type SessionStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client, timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SessionStore{client: client, timeout: timeout}
}

type sessionPayload struct {
	UserID    string `json:"uid"`
	CreatedAt int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Save stores s only if no session already holds its key.
func (st *SessionStore) Save(ctx context.Context, s *domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("save session: already expired")
	}
	payload, err := encodeSession(s)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	ok, err := st.client.SetNX(ctx, sessionKey(s.IDHash), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if !ok {
		return errors.New("save session: key collision")
	}
	return nil
}

// Find returns domain.ErrInvalidSession when the key is missing or expired.
func (st *SessionStore) Find(ctx context.Context, idHash string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	raw, err := st.client.Get(ctx, sessionKey(idHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return decodeSession(idHash, raw)
}

func (st *SessionStore) Delete(ctx context.Context, idHash string) error {
	ctx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	if err := st.client.Del(ctx, sessionKey(idHash)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(idHash string) string {
	return "session:" + idHash
}

func encodeSession(s *domain.Session) ([]byte, error) {
	b, err := json.Marshal(sessionPayload{
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt.Unix(),
		ExpiresAt: s.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return b, nil
}

// decodeSession treats an unreadable payload as an invalid session.
func decodeSession(idHash string, raw []byte) (*domain.Session, error) {
	var p sessionPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.UserID == "" {
		return nil, domain.ErrInvalidSession
	}
	return &domain.Session{
		IDHash:    idHash,
		UserID:    p.UserID,
		CreatedAt: time.Unix(p.CreatedAt, 0).UTC(),
		ExpiresAt: time.Unix(p.ExpiresAt, 0).UTC(),
	}, nil
}
