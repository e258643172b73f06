package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/pkg/apperror"

	goredis "github.com/redis/go-redis/v9"
)

// DraftStore implements ports.DraftStore: form drafts persisted with a
// 15-minute expiry, keyed onramp:form:<id>. Expiry is enforced twice — a
// key TTL and a timestamp check on read, so a stale record never comes back
// even if the TTL was lost.
type DraftStore struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

// NewDraftStore creates a Redis-backed draft store.
func NewDraftStore(client *goredis.Client) *DraftStore {
	return &DraftStore{
		client: client,
		prefix: "onramp:form:",
		now:    time.Now,
	}
}

func (s *DraftStore) key(id string) string {
	return s.prefix + id
}

// Save persists a draft. A zero timestamp is stamped with the current time.
func (s *DraftStore) Save(ctx context.Context, id string, draft *domain.FormDraft) error {
	if draft.Timestamp == 0 {
		draft.Timestamp = domain.TimeToMillis(s.now())
	}
	buf, err := json.Marshal(draft)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("marshal draft: %w", err))
	}
	if err := s.client.Set(ctx, s.key(id), buf, domain.DraftExpiry).Err(); err != nil {
		return apperror.ErrStorage(fmt.Errorf("save draft: %w", err))
	}
	return nil
}

// Get returns the draft for id, or nil if there is none, it expired, or the
// stored record is unreadable. Expired and corrupt drafts are discarded.
func (s *DraftStore) Get(ctx context.Context, id string) (*domain.FormDraft, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, apperror.ErrStorage(fmt.Errorf("get draft: %w", err))
	}

	draft := &domain.FormDraft{}
	if err := json.Unmarshal(raw, draft); err != nil {
		s.client.Del(ctx, s.key(id))
		return nil, nil
	}
	if draft.Expired(s.now()) {
		s.client.Del(ctx, s.key(id))
		return nil, nil
	}
	return draft, nil
}

// Delete discards a draft.
func (s *DraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return apperror.ErrStorage(fmt.Errorf("delete draft: %w", err))
	}
	return nil
}
