// Package match implements the lexical item matcher: a best-effort mapping
// from a free-form utterance to a menu item and a quantity. It never fails;
// "no match" is a valid, silent outcome.
package match

import (
	"strings"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
)

// windowRadius is how many tokens around the matched name span are scanned
// for a quantity when none sits immediately next to it.
const windowRadius = 3

type Matcher struct {
	locale Locale
}

func NewMatcher(locale Locale) *Matcher {
	return &Matcher{locale: locale}
}

// Match scans the catalog in order and returns the first item whose name
// appears in the utterance, together with an inferred quantity (1 when no
// number is found). Catalog order is the only tie-break; ambiguous utterances
// silently pick the first match.
func (m *Matcher) Match(utterance string, menu domain.Menu) (domain.MenuItem, int, bool) {
	text := strings.ToLower(utterance)
	tokens := strings.Fields(text)

	for _, item := range menu {
		name := strings.ToLower(item.Name)
		if name == "" {
			// Malformed catalog entry; never match it.
			continue
		}
		span, ok := m.nameSpan(tokens, text, name)
		if !ok {
			continue
		}
		return item, m.quantityAround(tokens, span), true
	}
	return domain.MenuItem{}, 1, false
}

// tokenSpan is the half-open token range [start, end) the item name occupies
// in the utterance.
type tokenSpan struct {
	start, end int
}

// nameSpan locates the item name in the utterance. An item matches when its
// full lower-cased name is a literal substring, or when any individual name
// token of length >= 3 appears as a substring of some utterance token.
func (m *Matcher) nameSpan(tokens []string, text, name string) (tokenSpan, bool) {
	if strings.Contains(text, name) {
		nameTokens := strings.Fields(name)
		first := nameTokens[0]
		for i, tok := range tokens {
			if strings.Contains(trimToken(tok), first) {
				end := i + len(nameTokens)
				if end > len(tokens) {
					end = len(tokens)
				}
				return tokenSpan{start: i, end: end}, true
			}
		}
		// Name is present but token boundaries don't line up (e.g. punctuation
		// glued the words together). Fall back to a single-token span at 0.
		return tokenSpan{start: 0, end: len(strings.Fields(name))}, true
	}

	for _, nameTok := range strings.Fields(name) {
		if len(nameTok) < 3 {
			continue
		}
		for i, tok := range tokens {
			if strings.Contains(trimToken(tok), nameTok) {
				return tokenSpan{start: i, end: i + 1}, true
			}
		}
	}
	return tokenSpan{}, false
}

// quantityAround extracts the quantity for a matched span: first the tokens
// immediately before and after the span, then a small window around it, then
// the default of 1.
func (m *Matcher) quantityAround(tokens []string, span tokenSpan) int {
	if span.start > 0 {
		if n, ok := m.locale.ParseNumber(tokens[span.start-1]); ok {
			return clampQuantity(n)
		}
	}
	if span.end < len(tokens) {
		if n, ok := m.locale.ParseNumber(tokens[span.end]); ok {
			return clampQuantity(n)
		}
	}

	lo := span.start - windowRadius
	if lo < 0 {
		lo = 0
	}
	hi := span.end + windowRadius
	if hi > len(tokens) {
		hi = len(tokens)
	}
	for i := lo; i < hi; i++ {
		if i >= span.start && i < span.end {
			continue
		}
		if n, ok := m.locale.ParseNumber(tokens[i]); ok {
			return clampQuantity(n)
		}
	}
	return 1
}

func clampQuantity(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func trimToken(tok string) string {
	return strings.Trim(tok, ".,!?;:")
}
