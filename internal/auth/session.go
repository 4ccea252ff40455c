package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/senelec/reclamations-api/internal/domain"
)

// ErrSessionNotFound is returned for unknown, expired or revoked sessions.
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

// SessionStore persists login sessions.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps sessions in Redis with a TTL matching their expiry.
type RedisSessionStore struct {
	client redis.Cmdable
}

// NewRedisSessionStore builds a store on top of client.
func NewRedisSessionStore(client redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Save writes the session; Redis drops it after ttl.
func (s *RedisSessionStore) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session %s: non-positive ttl", session.ID)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err()
}

// Get loads a session by id.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete revokes a session. Deleting an unknown session is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

// SessionManager issues and resolves sessions and their tokens.
type SessionManager struct {
	store  SessionStore
	tokens *TokenManager
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager wires the session store with the token signer.
func NewSessionManager(store SessionStore, tokens *TokenManager, ttl time.Duration, now func() time.Time) *SessionManager {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{store: store, tokens: tokens, ttl: ttl, now: now}
}

// Issue opens a session for account and returns its signed token.
func (m *SessionManager) Issue(ctx context.Context, account *domain.Account) (string, *domain.Session, error) {
	now := m.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Role:      account.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, session, m.ttl); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}
	token, err := m.tokens.GenerateToken(session)
	if err != nil {
		_ = m.store.Delete(ctx, session.ID)
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return token, session, nil
}

// Resolve validates token and returns the live session it points to.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	session, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.AccountID != claims.Subject {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Revoke ends the session.
func (m *SessionManager) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.store.Delete(ctx, sessionID)
}
