package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
	"github.com/darkangel00016/Voice-Ordering2/internal/logging"
	"github.com/darkangel00016/Voice-Ordering2/internal/usecase"
)

// Submitter performs one submission attempt. *Client satisfies it.
type Submitter interface {
	Submit(ctx context.Context, order domain.Order) (domain.SubmissionResult, error)
}

// RetryPolicy wraps a Submitter with bounded exponential backoff.
// maxRetries=3 means 4 attempts total. Transient failures (HTTP 5xx, 429,
// transport errors) are retried while budget remains; everything else is
// terminal and returned immediately as a structured failure. No jitter; a
// hardened build should add it.
type RetryPolicy struct {
	next         Submitter
	maxRetries   int
	initialDelay time.Duration
	multiplier   float64

	// sleep is swappable for tests. It must honor ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryPolicy(next Submitter, maxRetries int, initialDelay time.Duration, multiplier float64) *RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if initialDelay <= 0 {
		initialDelay = 500 * time.Millisecond
	}
	if multiplier < 1 {
		multiplier = 2
	}
	return &RetryPolicy{
		next:         next,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
		multiplier:   multiplier,
		sleep:        sleepCtx,
	}
}

// Submit attempts the submission until it yields a final outcome or the retry
// budget runs out. The only error return is context cancellation; every other
// path produces a SubmissionResult.
func (p *RetryPolicy) Submit(ctx context.Context, order domain.Order) (domain.SubmissionResult, error) {
	log := logging.FromCtx(ctx)

	delay := p.initialDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, delay); err != nil {
				return domain.SubmissionResult{}, err
			}
			delay = time.Duration(float64(delay) * p.multiplier)
		}

		res, err := p.next.Submit(ctx, order)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return domain.SubmissionResult{}, ctx.Err()
		}

		var se *StatusError
		if errors.As(err, &se) && !transient(se.Code) {
			return domain.SubmissionResult{
				Failure: &domain.SubmissionFailure{
					Code:    fmt.Sprintf("http-%d", se.Code),
					Message: se.Message,
					Detail:  se.Detail,
				},
			}, nil
		}

		lastErr = err
		log.Warn("fulfillment attempt failed", "order_id", order.ID, "attempt", attempt+1, "error", err)
	}

	var se *StatusError
	if errors.As(lastErr, &se) {
		return domain.SubmissionResult{
			Failure: &domain.SubmissionFailure{
				Code:    fmt.Sprintf("http-%d", se.Code),
				Message: fmt.Sprintf("giving up after %d attempts: %s", p.maxRetries+1, se.Message),
				Detail:  se.Detail,
			},
		}, nil
	}
	return domain.SubmissionResult{
		Failure: &domain.SubmissionFailure{
			Code:    "network",
			Message: fmt.Sprintf("giving up after %d attempts", p.maxRetries+1),
			Detail:  lastErr.Error(),
		},
	}, nil
}

// transient reports whether an HTTP status is worth retrying: server errors
// and rate-limit signals resolve on their own, everything else won't.
func transient(code int) bool {
	return code == 429 || code >= 500
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ usecase.FulfillmentGateway = (*RetryPolicy)(nil)
var _ Submitter = (*Client)(nil)
