package handler

import (
	"io"

	"github.com/gabito1451/Aframp/internal/adapter/http/dto"
	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/pkg/apperror"
	"github.com/gabito1451/Aframp/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderHandler handles order lifecycle endpoints.
type OrderHandler struct {
	orderSvc ports.OrderService
	tracker  ports.OrderTracker
	subs     ports.StatusSubscriber
	archive  ports.OrderArchive
}

// NewOrderHandler creates a new OrderHandler. archive may be nil; the stats
// endpoint then reports unavailable.
func NewOrderHandler(orderSvc ports.OrderService, tracker ports.OrderTracker, subs ports.StatusSubscriber, archive ports.OrderArchive) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc, tracker: tracker, subs: subs, archive: archive}
}

// CreateOrder handles POST /api/v1/orders. The new order is immediately
// tracked so its lifecycle starts advancing.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := h.orderSvc.Create(c.Request.Context(), ports.CreateOrderInput{
		Amount:        req.Amount,
		FiatCurrency:  domain.FiatCurrency(req.FiatCurrency),
		CryptoAsset:   domain.CryptoAsset(req.CryptoAsset),
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.tracker.Track(order.ID)
	response.Created(c, order)
}

// GetOrder handles GET /api/v1/orders/:id. Viewing a live order resumes its
// tracking, so a restarted server picks the lifecycle back up.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderSvc.GetOrCreate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !order.IsTerminal() {
		h.tracker.Track(order.ID)
	}
	response.OK(c, order)
}

// StreamEvents handles GET /api/v1/orders/:id/events: a Server-Sent Events
// stream of status changes. The current state is sent first, then every
// persisted change until the order terminates or the client leaves.
func (h *OrderHandler) StreamEvents(c *gin.Context) {
	id := c.Param("id")
	order, err := h.orderSvc.GetOrCreate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	ch, cancel := h.subs.Subscribe(id)
	defer cancel()
	if !order.IsTerminal() {
		h.tracker.Track(id)
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("status", order)
	if order.IsTerminal() {
		return
	}
	flush(c.Writer)

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case updated, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("status", updated)
			flush(c.Writer)
			if updated.IsTerminal() {
				return
			}
		}
	}
}

// StopTracking handles DELETE /api/v1/orders/:id/tracking. The order record
// stays; only the polling stops.
func (h *OrderHandler) StopTracking(c *gin.Context) {
	h.tracker.Untrack(c.Param("id"))
	response.NoContent(c)
}

// GetStats handles GET /api/v1/orders/stats over the terminal-order archive.
func (h *OrderHandler) GetStats(c *gin.Context) {
	if h.archive == nil {
		response.Error(c, apperror.New("SYS_003", "order archive not configured", 503))
		return
	}
	stats, err := h.archive.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrStorage(err))
		return
	}
	response.OK(c, dto.OrderStatsResponse{
		Total:           stats.Total,
		Completed:       stats.Completed,
		Failed:          stats.Failed,
		FiatVolume:      stats.FiatVolume,
		CryptoDelivered: stats.CryptoDelivered,
	})
}

func flush(w io.Writer) {
	if f, ok := w.(interface{ Flush() }); ok {
		f.Flush()
	}
}
