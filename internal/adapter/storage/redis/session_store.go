package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/pkg/apperror"

	goredis "github.com/redis/go-redis/v9"
)

// sessionKey holds the remembered wallet connection for auto-reconnect.
const sessionKey = "onramp:wallet:session"

// SessionStore implements ports.SessionStore.
type SessionStore struct {
	client *goredis.Client
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save remembers the connected wallet.
func (s *SessionStore) Save(ctx context.Context, session *domain.RememberedSession) error {
	buf, err := json.Marshal(session)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("marshal session: %w", err))
	}
	if err := s.client.Set(ctx, sessionKey, buf, 0).Err(); err != nil {
		return apperror.ErrStorage(fmt.Errorf("save session: %w", err))
	}
	return nil
}

// Load returns the remembered session, or nil when nothing usable is
// stored. A corrupt record is cleared and treated as absent.
func (s *SessionStore) Load(ctx context.Context) (*domain.RememberedSession, error) {
	raw, err := s.client.Get(ctx, sessionKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, apperror.ErrStorage(fmt.Errorf("load session: %w", err))
	}

	session := &domain.RememberedSession{}
	if err := json.Unmarshal(raw, session); err != nil {
		s.client.Del(ctx, sessionKey)
		return nil, nil
	}
	if session.PublicKey == "" {
		return nil, nil
	}
	return session, nil
}

// Clear forgets the remembered session.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
		return apperror.ErrStorage(fmt.Errorf("clear session: %w", err))
	}
	return nil
}
