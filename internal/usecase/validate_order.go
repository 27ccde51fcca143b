package usecase

import (
	"fmt"
	"math"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
)

// OrderValidator re-derives correct pricing for a whole order from the menu's
// authoritative data and reports every defect it finds. It is pure: the same
// (order, menu) pair always yields the same result, and it performs no I/O.
type OrderValidator struct {
	taxRate float64
}

// NewOrderValidator builds a validator with the configured tax rate, e.g.
// 0.0825 for 8.25%.
func NewOrderValidator(taxRate float64) *OrderValidator {
	return &OrderValidator{taxRate: taxRate}
}

// Validate checks every line against the menu snapshot and returns the
// recomputed order together with the defect list. The recomputed order is
// always populated, valid or not, so callers can show corrected totals.
func (v *OrderValidator) Validate(order domain.Order, menu domain.Menu) domain.ValidationResult {
	out := order.Clone()
	var errs []domain.ValidationError

	for i := range out.Items {
		line := &out.Items[i]

		item, ok := menu.ItemByID(line.MenuItemID)
		if !ok {
			errs = append(errs, domain.ValidationError{
				Kind:        domain.ValidationItemNotFound,
				Message:     fmt.Sprintf("%q is not on the menu", line.Name),
				OrderItemID: line.ID,
				MenuItemID:  line.MenuItemID,
			})
			// Line is carried through unchanged; nothing further to check.
			continue
		}

		if !item.Available {
			errs = append(errs, domain.ValidationError{
				Kind:        domain.ValidationItemUnavailable,
				Message:     fmt.Sprintf("%s is currently unavailable", item.Name),
				OrderItemID: line.ID,
				MenuItemID:  item.ID,
			})
			// Keep going so other defects on this line still surface.
		}

		unit := item.PriceCents
		var snapped []domain.SelectedModifier

		// Iterate the menu's groups, not the submitted selections, so
		// violations about groups the user never mentioned are reported too.
		for _, group := range item.ModifierGroups {
			var count int
			for _, sel := range line.Modifiers {
				if sel.GroupID != group.ID {
					continue
				}
				count++

				opt, found := group.OptionByID(sel.OptionID)
				switch {
				case !found:
					errs = append(errs, domain.ValidationError{
						Kind:        domain.ValidationModifierInvalid,
						Message:     fmt.Sprintf("option %q is not part of %s", sel.OptionID, group.Name),
						OrderItemID: line.ID,
						MenuItemID:  item.ID,
						Detail:      map[string]string{"group_id": group.ID, "option_id": sel.OptionID},
					})
				case !opt.Available:
					errs = append(errs, domain.ValidationError{
						Kind:        domain.ValidationModifierInvalid,
						Message:     fmt.Sprintf("option %s is currently unavailable", opt.Name),
						OrderItemID: line.ID,
						MenuItemID:  item.ID,
						Detail:      map[string]string{"group_id": group.ID, "option_id": opt.ID},
					})
				default:
					unit += opt.PriceAdjustmentCents
					snapped = append(snapped, domain.SelectedModifier{
						GroupID:              group.ID,
						OptionID:             opt.ID,
						Name:                 opt.Name,
						PriceAdjustmentCents: opt.PriceAdjustmentCents,
					})
				}
			}

			if count < group.MinSelection {
				errs = append(errs, domain.ValidationError{
					Kind:        domain.ValidationModifierRequired,
					Message:     fmt.Sprintf("%s requires at least %d selection(s) for %s", item.Name, group.MinSelection, group.Name),
					OrderItemID: line.ID,
					MenuItemID:  item.ID,
					Detail:      map[string]string{"group_id": group.ID},
				})
			}
			if count > group.MaxSelection {
				errs = append(errs, domain.ValidationError{
					Kind:        domain.ValidationModifierInvalid,
					Message:     fmt.Sprintf("%s allows at most %d selection(s) for %s", item.Name, group.MaxSelection, group.Name),
					OrderItemID: line.ID,
					MenuItemID:  item.ID,
					Detail:      map[string]string{"group_id": group.ID},
				})
			}
		}

		// Selections referencing a group the item does not have.
		for _, sel := range line.Modifiers {
			if !hasGroup(item, sel.GroupID) {
				errs = append(errs, domain.ValidationError{
					Kind:        domain.ValidationModifierInvalid,
					Message:     fmt.Sprintf("%s has no modifier group %q", item.Name, sel.GroupID),
					OrderItemID: line.ID,
					MenuItemID:  item.ID,
					Detail:      map[string]string{"group_id": sel.GroupID},
				})
			}
		}

		if line.UnitPriceCents != unit {
			errs = append(errs, domain.ValidationError{
				Kind:        domain.ValidationPriceMismatch,
				Message:     fmt.Sprintf("price for %s corrected to the menu price", item.Name),
				OrderItemID: line.ID,
				MenuItemID:  item.ID,
				Detail: map[string]string{
					"declared_cents": fmt.Sprintf("%d", line.UnitPriceCents),
					"derived_cents":  fmt.Sprintf("%d", unit),
				},
			})
		}

		// Snapshot name and price from the menu; client-declared values are
		// never authoritative.
		line.Name = item.Name
		line.UnitPriceCents = unit
		line.Modifiers = snapped
	}

	var subtotal int64
	for _, it := range out.Items {
		subtotal += it.LineTotalCents()
	}
	out.SubtotalCents = subtotal
	out.TaxCents = int64(math.Round(float64(subtotal) * v.taxRate))
	out.TotalCents = out.SubtotalCents + out.TaxCents

	return domain.ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
		Order:  out,
	}
}

func hasGroup(item domain.MenuItem, groupID string) bool {
	for _, g := range item.ModifierGroups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}
