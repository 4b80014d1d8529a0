package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultMaxAttempts is the retry budget for one transport call.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay seeds the exponential backoff between attempts.
	DefaultBaseDelay = time.Second

	// DefaultBaseTimeout is the deadline for the first attempt; each
	// further attempt gets DefaultTimeoutStep more.
	DefaultBaseTimeout = 30 * time.Second
	DefaultTimeoutStep = 10 * time.Second
)

// RateLimitError is returned by a transport when the platform asks the
// caller to back off for an advised duration.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// ExhaustedError is the terminal failure after the retry budget is
// spent. Tally counts failures per category across all attempts.
type ExhaustedError struct {
	Attempts int
	Tally    map[string]int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts (errors: %v): %v", e.Attempts, e.Tally, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Policy decides per-attempt timeouts and backoff delays. It is a pure
// function of the attempt index and the failure, holding no state about
// the operation it wraps.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	BaseTimeout time.Duration
	TimeoutStep time.Duration
}

// DefaultPolicy returns the stock retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		BaseTimeout: DefaultBaseTimeout,
		TimeoutStep: DefaultTimeoutStep,
	}
}

// AttemptTimeout returns the deadline for the given zero-based attempt.
func (p Policy) AttemptTimeout(attempt int) time.Duration {
	return p.BaseTimeout + time.Duration(attempt)*p.TimeoutStep
}

// Backoff returns the delay to sleep after a failed attempt. Rate
// limits back off linearly in the platform's advised delay and the
// attempt count; everything else backs off exponentially, with
// timeouts doubled once more.
func (p Policy) Backoff(attempt int, err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter * time.Duration(attempt+1)
	}
	delay := p.BaseDelay * (1 << attempt)
	if errors.Is(err, context.DeadlineExceeded) {
		delay *= 2
	}
	return delay
}

// Category names a failure for the tally. Rate limits and timeouts
// have fixed names; anything else is keyed by its dynamic type.
func Category(err error) string {
	var rl *RateLimitError
	switch {
	case errors.As(err, &rl):
		return "rate_limit"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return fmt.Sprintf("%T", err)
}

// Operation is one opaque action against the external transport.
type Operation func(ctx context.Context) error

// Executor runs operations against an unreliable transport with
// bounded, backoff-based retry. It is generic over the operation: one
// item or a whole batch retries the same way.
type Executor struct {
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor with the given policy.
func NewExecutor(policy Policy) *Executor {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultBaseDelay
	}
	if policy.BaseTimeout <= 0 {
		policy.BaseTimeout = DefaultBaseTimeout
	}
	return &Executor{policy: policy, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs op with a per-attempt timeout until it succeeds or the retry
// budget is exhausted. Exhaustion is a hard failure: the accumulated
// tally is logged and returned inside an *ExhaustedError.
func (e *Executor) Do(ctx context.Context, name string, op Operation) error {
	tally := make(map[string]int)
	var last error

	for attempt := 0; attempt < e.policy.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.policy.AttemptTimeout(attempt))
		err := op(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}

		last = err
		category := Category(err)
		tally[category]++
		slog.Debug("transport attempt failed",
			"op", name,
			"attempt", attempt+1,
			"max", e.policy.MaxAttempts,
			"category", category,
			"error", err,
		)

		if attempt == e.policy.MaxAttempts-1 {
			break
		}
		if sleepErr := e.sleep(ctx, e.policy.Backoff(attempt, err)); sleepErr != nil {
			return sleepErr
		}
	}

	slog.Error("transport operation failed",
		"op", name, "attempts", e.policy.MaxAttempts, "errors", tally)
	return &ExhaustedError{Attempts: e.policy.MaxAttempts, Tally: tally, Last: last}
}
