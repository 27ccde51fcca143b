package domain

import "fmt"

// MenuItem is one entry of the menu catalog. Instances are treated as part of
// an immutable point-in-time snapshot; nothing in this package mutates them.
type MenuItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	PriceCents     int64           `json:"price_cents"`
	Category       string          `json:"category,omitempty"`
	Available      bool            `json:"available"`
	ModifierGroups []ModifierGroup `json:"modifier_groups,omitempty"`
}

// ModifierGroup constrains how many options may be selected for an item.
// MinSelection <= MaxSelection, both >= 0.
type ModifierGroup struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	MinSelection int              `json:"min_selection"`
	MaxSelection int              `json:"max_selection"`
	Options      []ModifierOption `json:"options,omitempty"`
}

// ModifierOption is a single selectable option within a group. The price
// adjustment is signed: options may discount as well as surcharge.
type ModifierOption struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	PriceAdjustmentCents int64  `json:"price_adjustment_cents"`
	Available            bool   `json:"available"`
}

// Menu is an ordered menu snapshot. Catalog order is significant: the lexical
// matcher uses it as the tie-break between candidates.
type Menu []MenuItem

// ItemByID looks up a menu item by its catalog identifier.
func (m Menu) ItemByID(id string) (MenuItem, bool) {
	for _, it := range m {
		if it.ID == id {
			return it, true
		}
	}
	return MenuItem{}, false
}

// OptionByID looks up an option within the group.
func (g ModifierGroup) OptionByID(id string) (ModifierOption, bool) {
	for _, opt := range g.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return ModifierOption{}, false
}

// FormatCents renders an integer cent amount as a dollar string, e.g. 1250 -> "$12.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
