package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
	"github.com/darkangel00016/Voice-Ordering2/internal/logging"
	"github.com/darkangel00016/Voice-Ordering2/internal/usecase"
)

// OrderStatusChangedHandler applies fulfillment-side status transitions
// (preparing, ready, completed, cancelled) to the stored conversation state.
// The engine only passes these through; it never sets them itself, and it
// never lets an order regress.
type OrderStatusChangedHandler struct {
	Store usecase.ConversationStore
}

func NewOrderStatusChangedHandler(store usecase.ConversationStore) *OrderStatusChangedHandler {
	return &OrderStatusChangedHandler{Store: store}
}

func (h *OrderStatusChangedHandler) Handle(ctx context.Context, ev usecase.OrderStatusChangedMsg) error {
	log := logging.FromCtx(ctx)

	target, ok := mapStatus(ev.Status)
	if !ok {
		// Unknown statuses are dropped, not retried.
		log.Warn("unknown fulfillment status", "status", ev.Status, "order_id", ev.OrderID)
		return nil
	}

	state, err := h.Store.Load(ctx, ev.ConversationID)
	if errors.Is(err, usecase.ErrConversationNotFound) {
		// Session already expired; nothing to update.
		log.Warn("status event for expired conversation", "conversation_id", ev.ConversationID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	if state.Order.ID != ev.OrderID {
		log.Warn("status event order mismatch", "conversation_id", ev.ConversationID,
			"event_order_id", ev.OrderID, "current_order_id", state.Order.ID)
		return nil
	}

	if !state.Order.Status.CanAdvance(target) {
		log.Warn("ignoring non-forward status transition", "order_id", ev.OrderID,
			"from", state.Order.Status, "to", target)
		return nil
	}

	order := state.Order.Clone()
	order.Status = target
	order.UpdatedAt = time.Now().UTC()
	if err := h.Store.Save(ctx, state.WithOrder(order)); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	log.Info("order status advanced", "order_id", ev.OrderID, "status", target)
	return nil
}

func mapStatus(s string) (domain.Status, bool) {
	switch s {
	case "PREPARING":
		return domain.StatusPreparing, true
	case "READY":
		return domain.StatusReady, true
	case "COMPLETED":
		return domain.StatusCompleted, true
	case "CANCELLED":
		return domain.StatusCancelled, true
	default:
		return "", false
	}
}
