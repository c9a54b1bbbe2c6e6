// Package retry implements the exponential-backoff-with-jitter policy the
// engine wraps around its embedding calls. The engine's LLM and store calls
// do not go through it.
//
// No library in the retrieved corpus provides a keyed or generic retry
// helper (the teacher's provider clients call their SDKs directly and
// propagate errors unretried), so this is built fresh on the stdlib,
// shaped like the small functional-option structs the teacher uses
// throughout pkg/llm/base.go.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/oblabs/memlifecycle/pkg/errs"
)

// Policy configures retry behavior.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first. Default 3.
	MaxAttempts int

	// BaseDelay is the delay before the first retry. Default 100ms.
	BaseDelay time.Duration

	// MaxDelay caps the backoff. Default 2s.
	MaxDelay time.Duration
}

// DefaultPolicy returns the spec's default: 3 attempts, exponential backoff, jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Option configures a Policy.
type Option func(*Policy)

// WithMaxAttempts overrides the number of attempts.
func WithMaxAttempts(n int) Option {
	return func(p *Policy) { p.MaxAttempts = n }
}

// WithBaseDelay overrides the initial backoff delay.
func WithBaseDelay(d time.Duration) Option {
	return func(p *Policy) { p.BaseDelay = d }
}

// Do runs fn, retrying on retryable *errs.Error results with exponential
// backoff and full jitter, until MaxAttempts is reached or ctx is done.
//
// If every attempt fails, Do returns a KindServiceDegraded error wrapping
// the last failure, per spec.md §7 ("after exhaustion surfaces as
// ServiceDegraded"). A non-retryable error is returned unchanged after the
// first attempt.
func Do(ctx context.Context, op string, fn func(ctx context.Context) error, opts ...Option) error {
	policy := DefaultPolicy()
	for _, opt := range opts {
		opt(&policy)
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	delay := policy.BaseDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var me *errs.Error
		retryable := false
		if asErr, ok := lastErr.(*errs.Error); ok {
			me = asErr
			retryable = me.Retryable()
		}
		if !retryable {
			return lastErr
		}
		if attempt == policy.MaxAttempts {
			break
		}

		sleep := jitter(delay, policy.MaxDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay *= 2
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	return errs.New(op, errs.KindServiceDegraded, lastErr)
}

// jitter applies full jitter: a random duration in [0, min(d, max)).
func jitter(d, max time.Duration) time.Duration {
	if d > max {
		d = max
	}
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d)))
}
