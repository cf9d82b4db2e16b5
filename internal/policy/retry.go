// Package policy implements the execution-provider probe and the
// retry/backoff policy shared by the components that perform transient I/O
// or call the LLM.
package policy

import (
	"context"
	"errors"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/logger"
)

// Backoff describes an exponential backoff schedule: base, exponent, attempts.
type Backoff struct {
	Base        time.Duration
	Exponent    float64
	MaxAttempts int
}

// InternalBackoff retries transient internal I/O work (base 200ms, three attempts).
var InternalBackoff = Backoff{Base: 200 * time.Millisecond, Exponent: 2, MaxAttempts: 3}

// RemoteBackoff retries HTTP-shaped failures to the LLM collaborator (base 1s, three attempts).
var RemoteBackoff = Backoff{Base: 1 * time.Second, Exponent: 2, MaxAttempts: 3}

func (b Backoff) delay(attempt int) time.Duration {
	return time.Duration(float64(b.Base) * math.Pow(b.Exponent, float64(attempt)))
}

// Retryable reports whether err belongs to a retried category: transient
// I/O or transient remote. Configuration, resource, accelerator, and
// data-integrity errors are never retried.
func Retryable(err error) bool {
	return errors.Is(err, domain.ErrTransientIO) || errors.Is(err, domain.ErrTransientRemote)
}

// Do runs fn, retrying per backoff while isRetryable(err) and attempts remain.
// It stops immediately on a non-retryable error, a nil error, or context cancellation.
func Do(ctx context.Context, backoff Backoff, isRetryable func(error) bool, fn func(ctx context.Context) error) error {
	if isRetryable == nil {
		isRetryable = Retryable
	}

	var lastErr error
	for attempt := 0; attempt < backoff.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt == backoff.MaxAttempts-1 {
			break
		}

		delay := backoff.delay(attempt)
		logger.Debug("retrying after transient error (attempt %d/%d, wait %s): %v", attempt+1, backoff.MaxAttempts, delay, lastErr)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// NewInferenceLimiter builds a token-bucket limiter pacing calls into a
// shared inference session (embedder, reranker). ratePerSecond <= 0 means
// unlimited: callers get a nil limiter and should skip the Wait call.
func NewInferenceLimiter(ratePerSecond float64, burst int) *rate.Limiter {
	if ratePerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(ratePerSecond), burst)
}
