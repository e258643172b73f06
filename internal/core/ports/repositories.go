package ports

import (
	"context"

	"github.com/gabito1451/Aframp/internal/core/domain"
)

// OrderRepository defines persistence for order records.
//
// Get returns apperror.ErrOrderNotFound for a missing id; callers that want
// the demo-mode synthesize-on-miss behavior go through
// OrderService.GetOrCreate instead, so the distinction stays explicit.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	// Update persists the order with optimistic concurrency: the write
	// succeeds only if the stored version still equals order.Version, and
	// increments the version on success (reflected back into order).
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id string) error
}

// OrderArchive records terminal orders (completed or failed) durably for
// reporting. Writes are best-effort from the engine's point of view.
type OrderArchive interface {
	Insert(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Stats(ctx context.Context) (*ArchiveStats, error)
}

// ArchiveStats aggregates the archived order population.
type ArchiveStats struct {
	Total           int64
	Completed       int64
	Failed          int64
	FiatVolume      float64 // Sum of completed order amounts
	CryptoDelivered float64 // Sum of completed crypto amounts
}

// DraftStore persists in-progress form drafts with a fixed expiry window.
// Get returns nil, nil for a missing, expired, or unreadable draft.
type DraftStore interface {
	Save(ctx context.Context, id string, draft *domain.FormDraft) error
	Get(ctx context.Context, id string) (*domain.FormDraft, error)
	Delete(ctx context.Context, id string) error
}

// SessionStore remembers the last connected wallet so the session can be
// restored silently on the next visit. Load returns nil, nil when nothing
// is remembered.
type SessionStore interface {
	Save(ctx context.Context, session *domain.RememberedSession) error
	Load(ctx context.Context) (*domain.RememberedSession, error)
	Clear(ctx context.Context) error
}
