package domain

// ValidationKind classifies a single order defect found by the validator.
type ValidationKind string

const (
	ValidationItemNotFound     ValidationKind = "item-not-found"
	ValidationItemUnavailable  ValidationKind = "item-unavailable"
	ValidationModifierRequired ValidationKind = "modifier-required"
	ValidationModifierInvalid  ValidationKind = "modifier-invalid"
	ValidationPriceMismatch    ValidationKind = "price-mismatch"
)

// ValidationError describes one defect. OrderItemID / MenuItemID reference
// the offending line and catalog entry when known.
type ValidationError struct {
	Kind        ValidationKind    `json:"kind"`
	Message     string            `json:"message"`
	OrderItemID string            `json:"order_item_id,omitempty"`
	MenuItemID  string            `json:"menu_item_id,omitempty"`
	Detail      map[string]string `json:"detail,omitempty"`
}

// ValidationResult is the outcome of one validation/repricing pass. Order is
// always the recomputed order, valid or not, so callers can show corrected
// totals even on failure. Errors is empty iff Valid.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
	Order  Order             `json:"order"`
}

// SubmissionConfirmation is the success payload of a fulfillment submission.
type SubmissionConfirmation struct {
	ConfirmationID       string `json:"confirmation_id"`
	Status               string `json:"status"`
	EstimatedWaitMinutes int    `json:"estimated_wait_minutes,omitempty"`
}

// SubmissionFailure is a structured terminal failure from the fulfillment
// boundary. Code is a stable machine key (e.g. "network", "invalid-response",
// or the upstream error code).
type SubmissionFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// SubmissionResult holds exactly one of Confirmation or Failure.
type SubmissionResult struct {
	Confirmation *SubmissionConfirmation `json:"confirmation,omitempty"`
	Failure      *SubmissionFailure      `json:"failure,omitempty"`
}

// Succeeded reports whether the submission was confirmed upstream.
func (r SubmissionResult) Succeeded() bool { return r.Confirmation != nil }
