package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
	"github.com/darkangel00016/Voice-Ordering2/internal/logging"
	"github.com/darkangel00016/Voice-Ordering2/internal/match"
)

// finalizePhrases is the crude keyword trigger for finalize intent. A
// hardened build should replace this with a structured intent signal from the
// reply generator instead of sniffing free text.
var finalizePhrases = []string{
	"confirm",
	"place the order",
	"place my order",
	"that's all",
	"that is all",
	"checkout",
	"check out",
}

// ProcessTurn advances one conversation by one user turn. It holds no state
// of its own: callers pass the current ConversationState in and receive a new
// one, so different conversations can be processed concurrently. Turns of a
// single conversation must be serialized by the caller.
type ProcessTurn struct {
	menu       MenuSource
	generator  ReplyGenerator
	matcher    *match.Matcher
	validator  *OrderValidator
	summaryCap int
}

func NewProcessTurn(menu MenuSource, generator ReplyGenerator, matcher *match.Matcher, validator *OrderValidator, summaryCap int) *ProcessTurn {
	if summaryCap <= 0 {
		summaryCap = 5
	}
	return &ProcessTurn{
		menu:       menu,
		generator:  generator,
		matcher:    matcher,
		validator:  validator,
		summaryCap: summaryCap,
	}
}

// Execute runs the per-turn transition. On error the input state is returned
// unchanged; a turn either fails whole or yields a fully formed new state.
func (uc *ProcessTurn) Execute(ctx context.Context, state domain.ConversationState, userText string) (domain.ConversationState, error) {
	log := logging.FromCtx(ctx)

	menu, err := uc.menu.Snapshot(ctx)
	if err != nil {
		return state, fmt.Errorf("%w: %v", ErrMenuUnavailable, err)
	}

	next := state.WithTurn(domain.NewTurn(domain.RoleUser, userText, nil))

	// Best-effort order update. No match is silent; conversation continues.
	meta := map[string]string{}
	if item, qty, ok := uc.matcher.Match(userText, menu); ok {
		order, created := AddToOrder(next.Order, item, qty)
		next = next.WithOrder(order)
		meta[domain.MetaItemAdded] = item.Name
		meta[domain.MetaItemQuantity] = strconv.Itoa(qty)
		if created != nil {
			log.Info("order line added", "conversation_id", state.ID, "menu_item_id", item.ID, "quantity", qty)
		} else {
			log.Info("order line merged", "conversation_id", state.ID, "menu_item_id", item.ID, "quantity", qty)
		}
	}

	reply, err := uc.generator.Generate(ctx, state.Turns, userText, MenuSummary(menu, uc.summaryCap))
	if err != nil {
		return state, fmt.Errorf("%w: %v", ErrReplyGeneration, err)
	}

	// Guardrail: a finalize intent never flips the status without a clean
	// validation pass, and a failed pass overrides the generated reply so the
	// user is never told the order succeeded when it did not.
	if next.Order.Status == domain.StatusPending && IsFinalizeIntent(userText) {
		res := uc.validator.Validate(next.Order, menu)
		if res.Valid {
			order := res.Order
			order.Status = domain.StatusConfirmed
			next = next.WithOrder(order)
			meta[domain.MetaStatusChanged] = string(domain.StatusConfirmed)
			log.Info("order confirmed", "conversation_id", state.ID, "order_id", order.ID, "total_cents", order.TotalCents)
		} else {
			reply = validationFailureMessage(res.Errors)
			next = next.WithOrder(res.Order)
			meta[domain.MetaValidationFailed] = "true"
			log.Info("confirmation blocked by validation", "conversation_id", state.ID, "defects", len(res.Errors))
		}
	}

	if len(meta) == 0 {
		meta = nil
	}
	next = next.WithTurn(domain.NewTurn(domain.RoleAssistant, reply, meta))
	return next, nil
}

// IsFinalizeIntent reports whether the user text contains a confirmation
// keyword.
func IsFinalizeIntent(userText string) bool {
	text := strings.ToLower(userText)
	for _, phrase := range finalizePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func validationFailureMessage(errs []domain.ValidationError) string {
	var b strings.Builder
	b.WriteString("I can't confirm the order yet:")
	for _, e := range errs {
		b.WriteString("\n- ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// MenuSummary renders a compact, category-grouped textual view of the menu
// for the reply generator's context, capped per category to bound prompt
// growth. Unavailable items are omitted.
func MenuSummary(menu domain.Menu, perCategory int) string {
	type bucket struct {
		name  string
		items []string
	}
	var order []string
	buckets := map[string]*bucket{}

	for _, item := range menu {
		if !item.Available {
			continue
		}
		cat := item.Category
		if cat == "" {
			cat = "Other"
		}
		b, ok := buckets[cat]
		if !ok {
			b = &bucket{name: cat}
			buckets[cat] = b
			order = append(order, cat)
		}
		if len(b.items) >= perCategory {
			continue
		}
		b.items = append(b.items, fmt.Sprintf("%s (%s)", item.Name, domain.FormatCents(item.PriceCents)))
	}

	var lines []string
	for _, cat := range order {
		lines = append(lines, fmt.Sprintf("%s: %s", cat, strings.Join(buckets[cat].items, ", ")))
	}
	return strings.Join(lines, "\n")
}
