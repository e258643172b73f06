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

// OrderRepo implements ports.OrderRepository on a Redis key-value entry per
// order. The value is the exact JSON shape the web client reads, keyed
// onramp:order:<id>.
type OrderRepo struct {
	client *goredis.Client
	prefix string
}

// NewOrderRepo creates a Redis-backed order repository.
func NewOrderRepo(client *goredis.Client) *OrderRepo {
	return &OrderRepo{
		client: client,
		prefix: "onramp:order:",
	}
}

func (r *OrderRepo) key(id string) string {
	return r.prefix + id
}

// Create persists a new order. The order must not already exist.
func (r *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	if order.Version == 0 {
		order.Version = 1
	}
	buf, err := json.Marshal(order)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("marshal order: %w", err))
	}
	ok, err := r.client.SetNX(ctx, r.key(order.ID), buf, 0).Result()
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("create order: %w", err))
	}
	if !ok {
		return apperror.ErrOrderExists(order.ID)
	}
	return nil
}

// Get fetches an order by id. A missing key returns ErrOrderNotFound. An
// unreadable record is dropped and reported as missing so callers can
// resynthesize instead of crashing on corruption.
func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, apperror.ErrOrderNotFound(id)
		}
		return nil, apperror.ErrStorage(fmt.Errorf("get order: %w", err))
	}

	order := &domain.Order{}
	if err := json.Unmarshal(raw, order); err != nil {
		r.client.Del(ctx, r.key(id))
		return nil, apperror.ErrOrderNotFound(id)
	}
	return order, nil
}

// Update writes the order back with optimistic concurrency: it succeeds
// only while the stored version equals order.Version, and bumps the version
// on success. A concurrent writer surfaces as ErrVersionConflict.
func (r *OrderRepo) Update(ctx context.Context, order *domain.Order) error {
	key := r.key(order.ID)
	next := *order
	next.Version = order.Version + 1

	buf, err := json.Marshal(&next)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("marshal order: %w", err))
	}

	err = r.client.Watch(ctx, func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return apperror.ErrOrderNotFound(order.ID)
			}
			return apperror.ErrStorage(fmt.Errorf("read order for update: %w", err))
		}

		current := &domain.Order{}
		if err := json.Unmarshal(raw, current); err != nil {
			return apperror.ErrOrderNotFound(order.ID)
		}
		if current.Version != order.Version {
			return apperror.ErrVersionConflict(order.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, buf, 0)
			return nil
		})
		return err
	}, key)

	if err != nil {
		if errors.Is(err, goredis.TxFailedErr) {
			return apperror.ErrVersionConflict(order.ID)
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.ErrStorage(fmt.Errorf("update order: %w", err))
	}

	order.Version = next.Version
	return nil
}

// Delete removes an order record.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return apperror.ErrStorage(fmt.Errorf("delete order: %w", err))
	}
	return nil
}
