package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Metadata keys used to surface side effects of a turn without encoding them
// in the assistant's prose.
const (
	MetaItemAdded        = "item_added"
	MetaItemQuantity     = "item_quantity"
	MetaStatusChanged    = "status_changed"
	MetaValidationFailed = "validation_failed"
)

// ConversationTurn is one entry of the append-only dialogue history.
type ConversationTurn struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewTurn assigns the turn id and timestamp at append time.
func NewTurn(role Role, content string, metadata map[string]string) ConversationTurn {
	return ConversationTurn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}

// ConversationState carries the full state of one ordering dialogue: the
// append-only turn history and the single live order. The engine is stateless
// across calls; state goes in, a new state comes out.
type ConversationState struct {
	ID        string             `json:"id"`
	Turns     []ConversationTurn `json:"turns"`
	Order     Order              `json:"order"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewConversationState(customerID string) ConversationState {
	return ConversationState{
		ID:        uuid.NewString(),
		Turns:     []ConversationTurn{},
		Order:     NewOrder(customerID),
		UpdatedAt: time.Now().UTC(),
	}
}

// WithTurn returns a copy of the state with the turn appended. The original
// history slice is never written through, preserving the audit trail for any
// caller still holding the prior snapshot.
func (s ConversationState) WithTurn(t ConversationTurn) ConversationState {
	out := s
	out.Turns = make([]ConversationTurn, len(s.Turns), len(s.Turns)+1)
	copy(out.Turns, s.Turns)
	out.Turns = append(out.Turns, t)
	out.UpdatedAt = t.Timestamp
	return out
}

// WithOrder returns a copy of the state carrying the given order snapshot.
func (s ConversationState) WithOrder(o Order) ConversationState {
	out := s
	out.Order = o
	out.UpdatedAt = time.Now().UTC()
	return out
}
