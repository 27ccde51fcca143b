package usecase

import (
	"math"
	"time"

	"github.com/google/uuid"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
)

// AddToOrder applies a matched menu item and quantity to the order and returns
// a new order snapshot; the input is never mutated. When the addition created
// a new line it is returned for observability, nil when it merged into an
// existing one.
//
// Merge rule: a line merges only when it references the same menu item and
// carries zero modifiers. Free-text modifier selection is deliberately not
// attempted here; only the structured validation step can attach modifiers.
//
// No validation happens here either: availability and modifier cardinality
// are the validator's sole responsibility, downstream.
func AddToOrder(order domain.Order, item domain.MenuItem, quantity int) (domain.Order, *domain.OrderItem) {
	if quantity < 1 {
		quantity = 1
	}
	out := order.Clone()

	var created *domain.OrderItem
	merged := false
	for i := range out.Items {
		if out.Items[i].MenuItemID == item.ID && len(out.Items[i].Modifiers) == 0 {
			out.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		line := domain.OrderItem{
			ID:             uuid.NewString(),
			MenuItemID:     item.ID,
			Name:           item.Name,
			Quantity:       quantity,
			UnitPriceCents: item.PriceCents, // provisional; validator reprices
		}
		out.Items = append(out.Items, line)
		created = &out.Items[len(out.Items)-1]
	}

	// Reprice with the prior effective tax rate. The true rate is only known
	// to the validator; carrying the ratio keeps tax proportionally
	// consistent turn to turn.
	rate := order.EffectiveTaxRate()
	var subtotal int64
	for _, it := range out.Items {
		subtotal += it.LineTotalCents()
	}
	out.SubtotalCents = subtotal
	out.TaxCents = int64(math.Round(float64(subtotal) * rate))
	out.TotalCents = out.SubtotalCents + out.TaxCents
	out.UpdatedAt = time.Now().UTC()
	return out, created
}
