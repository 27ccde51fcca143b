package usecase

import (
	"context"
	"errors"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
)

var (
	// ErrConversationNotFound means the store holds no session for the id
	// (never created, or expired).
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrMenuUnavailable marks a turn that failed because the menu snapshot
	// could not be fetched. The engine never fabricates menu facts.
	ErrMenuUnavailable = errors.New("menu unavailable")

	// ErrReplyGeneration marks a turn that failed in the reply generator.
	// Surfaced as its own kind so the UI can offer a retry.
	ErrReplyGeneration = errors.New("reply generation failed")

	// ErrTurnInProgress means another turn for the same conversation holds
	// the turn lock. Turns of one conversation are single-writer.
	ErrTurnInProgress = errors.New("turn already in progress")
)

// MenuSource yields a point-in-time menu snapshot. The engine does not cache;
// the adapter behind this port may.
type MenuSource interface {
	Snapshot(ctx context.Context) (domain.Menu, error)
}

// ReplyGenerator is the opaque text-in/text-out language model capability.
// One method so providers can be swapped without touching the orchestrator.
type ReplyGenerator interface {
	Generate(ctx context.Context, history []domain.ConversationTurn, userText, menuSummary string) (string, error)
}

// ConversationStore persists session state for the lifetime of the
// conversation. Load returns ErrConversationNotFound for unknown ids.
type ConversationStore interface {
	Save(ctx context.Context, state domain.ConversationState) error
	Load(ctx context.Context, id string) (domain.ConversationState, error)
}

// TurnLock serializes turns per conversation. The engine itself holds no
// locks; the transport layer acquires one around each turn.
type TurnLock interface {
	TryLock(ctx context.Context, conversationID string) (bool, error)
	Unlock(ctx context.Context, conversationID string) error
}

// FulfillmentGateway submits a validated order downstream. Implementations
// own the retry policy; a returned SubmissionResult is final.
type FulfillmentGateway interface {
	Submit(ctx context.Context, order domain.Order) (domain.SubmissionResult, error)
}

// EventPublisher emits order lifecycle events for out-of-process consumers.
type EventPublisher interface {
	PublishSubmitted(ctx context.Context, msg OrderSubmittedMsg) error
}
