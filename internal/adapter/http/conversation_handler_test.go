package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
	"github.com/darkangel00016/Voice-Ordering2/internal/match"
	"github.com/darkangel00016/Voice-Ordering2/internal/usecase"
)

type memStore struct {
	states map[string]domain.ConversationState
}

func (s *memStore) Save(_ context.Context, state domain.ConversationState) error {
	s.states[state.ID] = state
	return nil
}

func (s *memStore) Load(_ context.Context, id string) (domain.ConversationState, error) {
	state, ok := s.states[id]
	if !ok {
		return domain.ConversationState{}, usecase.ErrConversationNotFound
	}
	return state, nil
}

type stubLock struct{ busy bool }

func (l *stubLock) TryLock(context.Context, string) (bool, error) { return !l.busy, nil }
func (l *stubLock) Unlock(context.Context, string) error          { return nil }

type stubMenu struct{ menu domain.Menu }

func (s stubMenu) Snapshot(context.Context) (domain.Menu, error) { return s.menu, nil }

type stubGen struct{ reply string }

func (s stubGen) Generate(context.Context, []domain.ConversationTurn, string, string) (string, error) {
	return s.reply, nil
}

type stubGateway struct{ result domain.SubmissionResult }

func (g stubGateway) Submit(context.Context, domain.Order) (domain.SubmissionResult, error) {
	return g.result, nil
}

func testRouter(t *testing.T, store *memStore, lock *stubLock, gw stubGateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	menu := stubMenu{menu: domain.Menu{
		{ID: "m1", Name: "Cheeseburger", PriceCents: 899, Category: "Burgers", Available: true},
	}}
	validator := usecase.NewOrderValidator(0.08)
	turn := usecase.NewProcessTurn(menu, stubGen{reply: "Anything else?"}, match.NewMatcher(match.EnglishLocale()), validator, 5)
	submit := usecase.NewSubmitOrder(store, menu, validator, gw, nil, "USD")
	h := NewConversationHandler(store, lock, turn, submit, validator, menu, 5*time.Second)

	r := gin.New()
	r.POST("/v1/conversations", h.Create)
	r.GET("/v1/conversations/:id", h.Get)
	r.POST("/v1/conversations/:id/messages", h.PostMessage)
	r.GET("/v1/conversations/:id/order", h.GetOrder)
	r.POST("/v1/conversations/:id/order/validate", h.ValidateOrder)
	r.POST("/v1/conversations/:id/submit", h.Submit)
	return r
}

func createConversation(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/conversations", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var body struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	return body.ConversationID
}

func TestPostMessageHappyPath(t *testing.T) {
	store := &memStore{states: map[string]domain.ConversationState{}}
	r := testRouter(t, store, &stubLock{}, stubGateway{})
	id := createConversation(t, r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/conversations/"+id+"/messages",
		strings.NewReader(`{"message":"two cheeseburgers"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Reply    string            `json:"reply"`
		Metadata map[string]string `json:"metadata"`
		Order    domain.Order      `json:"order"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Reply != "Anything else?" {
		t.Errorf("reply = %q", body.Reply)
	}
	if body.Metadata[domain.MetaItemAdded] != "Cheeseburger" {
		t.Errorf("metadata = %v", body.Metadata)
	}
	if len(body.Order.Items) != 1 || body.Order.Items[0].Quantity != 2 {
		t.Errorf("order = %+v", body.Order)
	}

	// The new state must have been persisted: greeting + user + assistant.
	if saved := store.states[id]; len(saved.Turns) != 3 {
		t.Errorf("persisted turns = %d, want 3", len(saved.Turns))
	}
}

func TestPostMessageConcurrentTurnRejected(t *testing.T) {
	store := &memStore{states: map[string]domain.ConversationState{}}
	r := testRouter(t, store, &stubLock{busy: true}, stubGateway{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/conversations/any/messages",
		strings.NewReader(`{"message":"hi"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestPostMessageMissingBody(t *testing.T) {
	store := &memStore{states: map[string]domain.ConversationState{}}
	r := testRouter(t, store, &stubLock{}, stubGateway{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/conversations/any/messages", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetUnknownConversation(t *testing.T) {
	store := &memStore{states: map[string]domain.ConversationState{}}
	r := testRouter(t, store, &stubLock{}, stubGateway{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/conversations/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSubmitInvalidOrderReturns422(t *testing.T) {
	store := &memStore{states: map[string]domain.ConversationState{}}
	r := testRouter(t, store, &stubLock{}, stubGateway{})
	id := createConversation(t, r)

	// Plant a line referencing a nonexistent menu item.
	state := store.states[id]
	order := state.Order.Clone()
	order.Items = append(order.Items, domain.OrderItem{ID: "l1", MenuItemID: "ghost", Quantity: 1})
	store.states[id] = state.WithOrder(order)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/conversations/"+id+"/submit", nil))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body = %s", w.Code, w.Body.String())
	}
}

func TestSubmitConfirmed(t *testing.T) {
	store := &memStore{states: map[string]domain.ConversationState{}}
	gw := stubGateway{result: domain.SubmissionResult{
		Confirmation: &domain.SubmissionConfirmation{ConfirmationID: "conf-1", Status: "ACCEPTED"},
	}}
	r := testRouter(t, store, &stubLock{}, gw)
	id := createConversation(t, r)

	state := store.states[id]
	order := state.Order.Clone()
	order.Items = append(order.Items, domain.OrderItem{
		ID: "l1", MenuItemID: "m1", Name: "Cheeseburger", Quantity: 1, UnitPriceCents: 899,
	})
	store.states[id] = state.WithOrder(order)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/conversations/"+id+"/submit", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if saved := store.states[id]; saved.Order.Status != domain.StatusConfirmed {
		t.Errorf("persisted status = %s", saved.Order.Status)
	}
}
