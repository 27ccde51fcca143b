package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// statusRank orders the forward fulfillment progression. Cancelled sits
// outside the ranking and is handled explicitly.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusCompleted: 4,
}

// CanAdvance reports whether moving from s to target is a legal forward
// transition. Status never regresses; cancellation is allowed from any
// non-terminal state.
func (s Status) CanAdvance(target Status) bool {
	if s == target {
		return false
	}
	if target == StatusCancelled {
		return s != StatusCompleted && s != StatusCancelled
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[target]
	if !ok {
		return false
	}
	return to > from
}

// SelectedModifier is a snapshot of one chosen option on an order line.
// Name and price are copied from the menu at validation time so a later menu
// edit cannot silently change a placed order.
type SelectedModifier struct {
	GroupID              string `json:"group_id"`
	OptionID             string `json:"option_id"`
	Name                 string `json:"name"`
	PriceAdjustmentCents int64  `json:"price_adjustment_cents"`
}

// OrderItem is one line of an order. ID is unique per line and distinct from
// the referenced MenuItemID.
type OrderItem struct {
	ID                  string             `json:"id"`
	MenuItemID          string             `json:"menu_item_id"`
	Name                string             `json:"name"`
	Quantity            int                `json:"quantity"`
	UnitPriceCents      int64              `json:"unit_price_cents"`
	Modifiers           []SelectedModifier `json:"modifiers,omitempty"`
	SpecialInstructions string             `json:"special_instructions,omitempty"`
}

// LineTotalCents is unit price times quantity.
func (i OrderItem) LineTotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

// Order is the single authoritative running order of a conversation.
// Subtotal, tax and total are always server-derived; client-declared amounts
// are never trusted (the validator recomputes them from the menu).
type Order struct {
	ID            string      `json:"id"`
	CustomerID    string      `json:"customer_id,omitempty"`
	Items         []OrderItem `json:"items"`
	SubtotalCents int64       `json:"subtotal_cents"`
	TaxCents      int64       `json:"tax_cents"`
	TotalCents    int64       `json:"total_cents"`
	Status        Status      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func NewOrder(customerID string) Order {
	now := time.Now().UTC()
	return Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Items:      []OrderItem{},
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy. Orders are never mutated in place; every change
// produces a new snapshot.
func (o Order) Clone() Order {
	out := o
	out.Items = make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		cp := it
		if len(it.Modifiers) > 0 {
			cp.Modifiers = make([]SelectedModifier, len(it.Modifiers))
			copy(cp.Modifiers, it.Modifiers)
		}
		out.Items[i] = cp
	}
	return out
}

// EffectiveTaxRate is tax/subtotal of the current totals, or zero when the
// subtotal is zero. The mutator reapplies it after repricing so tax stays
// proportionally consistent between turns; only the validator knows the true
// configured rate.
func (o Order) EffectiveTaxRate() float64 {
	if o.SubtotalCents == 0 {
		return 0
	}
	return float64(o.TaxCents) / float64(o.SubtotalCents)
}
