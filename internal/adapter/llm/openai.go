// Package llm adapts an OpenAI-compatible chat completions API to the
// usecase.ReplyGenerator port. Works with OpenAI, Ollama, vLLM, Azure, and
// any endpoint that speaks the same protocol.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
	"github.com/darkangel00016/Voice-Ordering2/internal/usecase"
)

const systemPrompt = `You are a friendly drive-thru ordering assistant. Help the customer build their food order using only items from the menu below. Be concise. Never invent menu items or prices. When the customer wants to finish, ask them to confirm their order.

Menu:
%s`

type Config struct {
	Endpoint    string // base URL override (for Ollama, vLLM, Azure)
	APIKey      string
	Model       string
	MaxTokens   int64
	Temperature float64
	Timeout     time.Duration
}

type OpenAIGenerator struct {
	cfg    Config
	client *http.Client
}

func NewOpenAIGenerator(cfg Config) *OpenAIGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &OpenAIGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *OpenAIGenerator) baseURL() string {
	if g.cfg.Endpoint != "" {
		return strings.TrimRight(g.cfg.Endpoint, "/")
	}
	return "https://api.openai.com/v1"
}

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int64         `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends the system prompt, the conversation history and the new user
// message and returns the assistant text. An empty completion is an error:
// the orchestrator must never fabricate a reply.
func (g *OpenAIGenerator) Generate(ctx context.Context, history []domain.ConversationTurn, userText, menuSummary string) (string, error) {
	msgs := make([]chatMessage, 0, len(history)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: fmt.Sprintf(systemPrompt, menuSummary)})
	for _, turn := range history {
		if turn.Role == domain.RoleSystem {
			continue
		}
		msgs = append(msgs, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: userText})

	body := chatRequest{
		Model:       g.cfg.Model,
		Messages:    msgs,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL()+"/chat/completions", strings.NewReader(string(bodyJSON)))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("api error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return cr.Choices[0].Message.Content, nil
}

var _ usecase.ReplyGenerator = (*OpenAIGenerator)(nil)
