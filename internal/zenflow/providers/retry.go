package providers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"
)

// RetryConfig controls the exponential-backoff retry policy every
// provider adapter applies to transport errors.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	Growth     float64
	MaxDelay   time.Duration
}

// DefaultRetryConfig matches the contract every adapter must honor:
// 2 retries, 300ms base delay, 2x growth, capped at 4s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  300 * time.Millisecond,
		Growth:     2.0,
		MaxDelay:   4 * time.Second,
	}
}

// TransportError wraps a failed attempt with enough information for the
// retry loop to decide whether it is worth retrying.
type TransportError struct {
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "provider transport error"
}

func (e *TransportError) Unwrap() error { return e.Err }

// retryable reports whether a status code is worth retrying: network
// failures (status 0), 408, 429, and any 5xx.
func retryable(statusCode int) bool {
	if statusCode == 0 {
		return true
	}
	if statusCode == http.StatusRequestTimeout || statusCode == http.StatusTooManyRequests {
		return true
	}
	return statusCode >= 500
}

// delayFor computes the backoff delay before attempt n (0-indexed),
// honoring a Retry-After override when the caller supplies one.
func delayFor(cfg RetryConfig, attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	d := time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.Growth, float64(attempt)))
	if d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}

// withRetry runs op, retrying on retryable TransportErrors up to
// cfg.MaxRetries additional attempts, with exponential backoff between
// attempts. A non-retryable TransportError (or any other error) returns
// immediately.
func withRetry(ctx context.Context, cfg RetryConfig, op func(ctx context.Context) (ModelResponse, error)) (ModelResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		resp, err := op(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var te *TransportError
		if !errors.As(err, &te) || !retryable(te.StatusCode) {
			return ModelResponse{}, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		d := delayFor(cfg, attempt, te.RetryAfter)
		select {
		case <-ctx.Done():
			return ModelResponse{}, ctx.Err()
		case <-time.After(d):
		}
	}
	return ModelResponse{}, lastErr
}
