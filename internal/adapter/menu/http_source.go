// Package menu fetches the menu catalog from the menu service and owns the
// snapshot cache the rest of the engine reads from.
package menu

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

// HTTPSource fetches a point-in-time menu snapshot from the menu service.
// It does not cache; see Cache.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Snapshot(ctx context.Context) (domain.Menu, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/menu", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read menu response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("menu service status %d: %s", resp.StatusCode, string(body))
	}

	var items domain.Menu
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("malformed menu response: %w", err)
	}
	return items, nil
}
