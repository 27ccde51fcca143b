// Package fulfillment talks to the external fulfillment system. The raw
// Client performs one submission attempt; RetryPolicy wraps it with the
// bounded backoff the engine actually uses.
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
)

// StatusError is a non-success HTTP response from the fulfillment endpoint.
// The retry policy classifies it as transient or terminal by code.
type StatusError struct {
	Code    int
	Message string
	Detail  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fulfillment status %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type submitResponse struct {
	ConfirmationID       string `json:"confirmation_id"`
	Status               string `json:"status"`
	EstimatedWaitMinutes int    `json:"estimated_wait_minutes"`
	Error                *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error,omitempty"`
}

// Submit performs a single submission attempt. Error returns are candidates
// for retry (transport failures, HTTP status errors); a returned
// SubmissionResult is final. A 2xx response without a confirmation id
// violates the upstream contract and is final (`invalid-response`); retrying
// won't help.
func (c *Client) Submit(ctx context.Context, order domain.Order) (domain.SubmissionResult, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", strings.NewReader(string(body)))
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("submit order: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode, Detail: string(respBody)}
		var sr submitResponse
		if json.Unmarshal(respBody, &sr) == nil && sr.Error != nil {
			se.Message = sr.Error.Message
			se.Detail = sr.Error.Detail
			if se.Detail == "" {
				se.Detail = sr.Error.Code
			}
		}
		if se.Message == "" {
			se.Message = http.StatusText(resp.StatusCode)
		}
		return domain.SubmissionResult{}, se
	}

	var sr submitResponse
	if err := json.Unmarshal(respBody, &sr); err != nil || sr.ConfirmationID == "" {
		return domain.SubmissionResult{
			Failure: &domain.SubmissionFailure{
				Code:    "invalid-response",
				Message: "fulfillment response missing confirmation id",
				Detail:  string(respBody),
			},
		}, nil
	}

	return domain.SubmissionResult{
		Confirmation: &domain.SubmissionConfirmation{
			ConfirmationID:       sr.ConfirmationID,
			Status:               sr.Status,
			EstimatedWaitMinutes: sr.EstimatedWaitMinutes,
		},
	}, nil
}
