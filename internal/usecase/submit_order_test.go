package usecase

import (
	"context"
	"errors"
	"testing"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
)

type memStore struct {
	states map[string]domain.ConversationState
	saves  int
}

func newMemStore() *memStore {
	return &memStore{states: map[string]domain.ConversationState{}}
}

func (s *memStore) Save(_ context.Context, state domain.ConversationState) error {
	s.states[state.ID] = state
	s.saves++
	return nil
}

func (s *memStore) Load(_ context.Context, id string) (domain.ConversationState, error) {
	state, ok := s.states[id]
	if !ok {
		return domain.ConversationState{}, ErrConversationNotFound
	}
	return state, nil
}

type stubGateway struct {
	result domain.SubmissionResult
	err    error
	calls  int
	got    domain.Order
}

func (g *stubGateway) Submit(_ context.Context, order domain.Order) (domain.SubmissionResult, error) {
	g.calls++
	g.got = order
	return g.result, g.err
}

type stubPublisher struct {
	msgs []OrderSubmittedMsg
	err  error
}

func (p *stubPublisher) PublishSubmitted(_ context.Context, msg OrderSubmittedMsg) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func confirmedResult(id string) domain.SubmissionResult {
	return domain.SubmissionResult{
		Confirmation: &domain.SubmissionConfirmation{ConfirmationID: id, Status: "ACCEPTED"},
	}
}

func seedState(t *testing.T, store *memStore, items ...domain.OrderItem) domain.ConversationState {
	t.Helper()
	state := domain.NewConversationState("cust-1")
	order := state.Order.Clone()
	order.Items = items
	state = state.WithOrder(order)
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	store.saves = 0
	return state
}

func TestSubmitHappyPath(t *testing.T) {
	store := newMemStore()
	state := seedState(t, store, line("m1", 1, 899, domain.SelectedModifier{GroupID: "g-size", OptionID: "o-reg"}))

	gw := &stubGateway{result: confirmedResult("conf-7")}
	pub := &stubPublisher{}
	uc := NewSubmitOrder(store, stubMenu{menu: validationMenu()}, NewOrderValidator(0.08), gw, pub, "USD")

	out, err := uc.Execute(quietCtx(), state.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Validation.Valid {
		t.Fatalf("validation errors: %v", out.Validation.Errors)
	}
	if out.Submission == nil || !out.Submission.Succeeded() {
		t.Fatalf("submission = %+v", out.Submission)
	}
	if gw.got.Status != domain.StatusConfirmed {
		t.Errorf("submitted status = %s, want CONFIRMED", gw.got.Status)
	}

	saved := store.states[state.ID]
	if saved.Order.Status != domain.StatusConfirmed {
		t.Errorf("persisted status = %s", saved.Order.Status)
	}

	if len(pub.msgs) != 1 {
		t.Fatalf("events published = %d, want 1", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.ConfirmationID != "conf-7" || msg.OrderID != saved.Order.ID || msg.Currency != "USD" {
		t.Errorf("event = %+v", msg)
	}
}

func TestSubmitBlockedByValidation(t *testing.T) {
	store := newMemStore()
	state := seedState(t, store, line("m2", 1, 499)) // unavailable item

	gw := &stubGateway{result: confirmedResult("never")}
	uc := NewSubmitOrder(store, stubMenu{menu: validationMenu()}, NewOrderValidator(0.08), gw, nil, "USD")

	out, err := uc.Execute(quietCtx(), state.ID)
	if err != nil {
		t.Fatal(err)
	}
	if out.Validation.Valid {
		t.Fatal("expected invalid order")
	}
	if out.Submission != nil {
		t.Error("an invalid order must never reach the gateway")
	}
	if gw.calls != 0 {
		t.Errorf("gateway called %d times", gw.calls)
	}
	if store.saves != 0 {
		t.Error("nothing should be persisted on a failed validation")
	}
}

func TestSubmitUnknownConversation(t *testing.T) {
	uc := NewSubmitOrder(newMemStore(), stubMenu{menu: validationMenu()}, NewOrderValidator(0), &stubGateway{}, nil, "")

	_, err := uc.Execute(quietCtx(), "no-such-id")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("err = %v, want ErrConversationNotFound", err)
	}
}

func TestSubmitMenuUnavailable(t *testing.T) {
	store := newMemStore()
	state := seedState(t, store, line("m3", 1, 349))

	uc := NewSubmitOrder(store, stubMenu{err: errors.New("menu service down")}, NewOrderValidator(0), &stubGateway{}, nil, "")

	_, err := uc.Execute(quietCtx(), state.ID)
	if !errors.Is(err, ErrMenuUnavailable) {
		t.Fatalf("err = %v, want ErrMenuUnavailable", err)
	}
}

func TestSubmitUpstreamFailureReported(t *testing.T) {
	store := newMemStore()
	state := seedState(t, store, line("m3", 1, 349))

	gw := &stubGateway{result: domain.SubmissionResult{
		Failure: &domain.SubmissionFailure{Code: "http-400", Message: "bad order"},
	}}
	pub := &stubPublisher{}
	uc := NewSubmitOrder(store, stubMenu{menu: validationMenu()}, NewOrderValidator(0), gw, pub, "USD")

	out, err := uc.Execute(quietCtx(), state.ID)
	if err != nil {
		t.Fatal(err)
	}
	if out.Submission == nil || out.Submission.Succeeded() {
		t.Fatalf("expected reported failure, got %+v", out.Submission)
	}
	if store.saves != 0 {
		t.Error("a failed submission must not flip persisted state")
	}
	if len(pub.msgs) != 0 {
		t.Error("no event on failed submission")
	}
}

func TestSubmitPublishFailureIsBestEffort(t *testing.T) {
	store := newMemStore()
	state := seedState(t, store, line("m3", 1, 349))

	uc := NewSubmitOrder(store, stubMenu{menu: validationMenu()},
		NewOrderValidator(0), &stubGateway{result: confirmedResult("conf-9")},
		&stubPublisher{err: errors.New("broker down")}, "USD")

	out, err := uc.Execute(quietCtx(), state.ID)
	if err != nil {
		t.Fatalf("publish failure must not fail the submission: %v", err)
	}
	if out.Submission == nil || !out.Submission.Succeeded() {
		t.Fatalf("submission = %+v", out.Submission)
	}
}
