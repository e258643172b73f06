package service

import (
	"sync"

	"github.com/gabito1451/Aframp/internal/core/domain"
)

// subscriberBuffer bounds how far a slow consumer may lag before updates
// are dropped. Consumers always re-read the store on reconnect, so drops
// lose no state.
const subscriberBuffer = 8

// OrderWatcher is an in-process status feed: the progression engine
// publishes every persisted change, subscribers receive them per order id.
// It implements ports.StatusPublisher and ports.StatusSubscriber and is the
// seam a push-based backend would replace timer polling with.
type OrderWatcher struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan domain.Order
}

// NewOrderWatcher creates an empty watcher.
func NewOrderWatcher() *OrderWatcher {
	return &OrderWatcher{subs: make(map[string]map[int]chan domain.Order)}
}

// Subscribe registers interest in one order's status changes. The returned
// cancel func releases the subscription and closes the channel.
func (w *OrderWatcher) Subscribe(orderID string) (<-chan domain.Order, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan domain.Order, subscriberBuffer)
	if w.subs[orderID] == nil {
		w.subs[orderID] = make(map[int]chan domain.Order)
	}
	id := w.nextID
	w.nextID++
	w.subs[orderID][id] = ch

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if sub, ok := w.subs[orderID][id]; ok {
			delete(w.subs[orderID], id)
			if len(w.subs[orderID]) == 0 {
				delete(w.subs, orderID)
			}
			close(sub)
		}
	}
	return ch, cancel
}

// Publish fans an updated order out to its subscribers. Sends never block;
// a full subscriber buffer drops the update.
func (w *OrderWatcher) Publish(order domain.Order) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs[order.ID] {
		select {
		case ch <- order:
		default:
		}
	}
}
