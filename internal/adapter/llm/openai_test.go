package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
)

func TestGenerateBuildsExpectedMessages(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Sure, one cheeseburger!"}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(Config{Endpoint: srv.URL, APIKey: "test-key", Model: "gpt-4o-mini"})
	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "Welcome!"},
		{Role: domain.RoleSystem, Content: "internal note"},
	}

	reply, err := g.Generate(context.Background(), history, "a cheeseburger", "Burgers: Cheeseburger ($8.99)")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Sure, one cheeseburger!" {
		t.Errorf("reply = %q", reply)
	}

	// system prompt + 2 history turns (system role filtered) + user message
	if len(got.Messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || !strings.Contains(got.Messages[0].Content, "Cheeseburger ($8.99)") {
		t.Errorf("system message = %+v", got.Messages[0])
	}
	if got.Messages[1].Content != "hi" || got.Messages[2].Content != "Welcome!" {
		t.Error("history out of order")
	}
	if got.Messages[3].Role != "user" || got.Messages[3].Content != "a cheeseburger" {
		t.Errorf("user message = %+v", got.Messages[3])
	}
	if got.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", got.Model)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(Config{Endpoint: srv.URL})
	_, err := g.Generate(context.Background(), nil, "hi", "")
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  "}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(Config{Endpoint: srv.URL})
	_, err := g.Generate(context.Background(), nil, "hi", "")
	if err == nil {
		t.Fatal("blank completions must be an error, never an empty reply")
	}
}

func TestGenerateNoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("no Authorization header expected for keyless endpoints")
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(Config{Endpoint: srv.URL})
	if _, err := g.Generate(context.Background(), nil, "hi", ""); err != nil {
		t.Fatal(err)
	}
}
