package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
	"github.com/darkangel00016/Voice-Ordering2/internal/logging"
)

// SubmitOrder runs the authoritative pre-submission validation pass and, only
// on a clean result, hands the order to the fulfillment gateway. Transient
// upstream failures are retried inside the gateway; this use case only ever
// sees the final outcome.
type SubmitOrder struct {
	store     ConversationStore
	menu      MenuSource
	validator *OrderValidator
	gateway   FulfillmentGateway
	events    EventPublisher // optional
	currency  string
}

func NewSubmitOrder(store ConversationStore, menu MenuSource, validator *OrderValidator, gateway FulfillmentGateway, events EventPublisher, currency string) *SubmitOrder {
	if currency == "" {
		currency = "USD"
	}
	return &SubmitOrder{
		store:     store,
		menu:      menu,
		validator: validator,
		gateway:   gateway,
		events:    events,
		currency:  currency,
	}
}

// SubmitOutput carries the validation result and, when validation passed, the
// submission outcome. Submission is nil iff the order was not valid.
type SubmitOutput struct {
	Validation domain.ValidationResult
	Submission *domain.SubmissionResult
}

func (uc *SubmitOrder) Execute(ctx context.Context, conversationID string) (SubmitOutput, error) {
	log := logging.FromCtx(ctx)

	state, err := uc.store.Load(ctx, conversationID)
	if err != nil {
		return SubmitOutput{}, err
	}

	menu, err := uc.menu.Snapshot(ctx)
	if err != nil {
		return SubmitOutput{}, fmt.Errorf("%w: %v", ErrMenuUnavailable, err)
	}

	res := uc.validator.Validate(state.Order, menu)
	if !res.Valid {
		// Recoverable: surface defects as data, keep the conversation alive.
		return SubmitOutput{Validation: res}, nil
	}

	order := res.Order
	order.Status = state.Order.Status
	if order.Status == domain.StatusPending {
		order.Status = domain.StatusConfirmed
	}

	result, err := uc.gateway.Submit(ctx, order)
	if err != nil {
		return SubmitOutput{Validation: res}, err
	}

	if result.Succeeded() {
		order.UpdatedAt = time.Now().UTC()
		if err := uc.store.Save(ctx, state.WithOrder(order)); err != nil {
			log.Error("persist confirmed order failed", "conversation_id", conversationID, "error", err)
		}
		if uc.events != nil {
			msg := OrderSubmittedMsg{
				ConversationID: conversationID,
				OrderID:        order.ID,
				ConfirmationID: result.Confirmation.ConfirmationID,
				TotalCents:     order.TotalCents,
				Currency:       uc.currency,
			}
			if err := uc.events.PublishSubmitted(ctx, msg); err != nil {
				// Best effort: the submission already succeeded upstream.
				log.Error("publish order.submitted failed", "order_id", order.ID, "error", err)
			}
		}
		log.Info("order submitted", "conversation_id", conversationID, "order_id", order.ID,
			"confirmation_id", result.Confirmation.ConfirmationID)
	} else {
		log.Error("order submission failed", "conversation_id", conversationID, "order_id", order.ID,
			"code", result.Failure.Code, "message", result.Failure.Message)
	}

	return SubmitOutput{Validation: res, Submission: &result}, nil
}
