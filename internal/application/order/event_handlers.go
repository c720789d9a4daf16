package order

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderActivityHandler writes an audit log line for every placed order and
// status change.
type OrderActivityHandler struct {
	logger *zap.Logger
}

// NewOrderActivityHandler creates a new handler for order events
func NewOrderActivityHandler(logger *zap.Logger) *OrderActivityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderActivityHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderActivityHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderStatusChanged}
}

// Handle logs the event.
func (h *OrderActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.PlacedEvent:
		fields := []zap.Field{
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.Int("item_count", e.ItemCount),
			zap.String("total", e.Total.StringFixed(2)),
			zap.Bool("guest", e.UserID == nil),
		}
		if e.UserID != nil {
			fields = append(fields, zap.String("customer_id", e.UserID.String()))
		}
		h.logger.Info("order placed", fields...)
	case *order.StatusChangedEvent:
		h.logger.Info("order status changed",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("from", e.From.String()),
			zap.String("to", e.To.String()),
		)
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}
