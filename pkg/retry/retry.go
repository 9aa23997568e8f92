package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds a remote call: each attempt gets its own timeout and the
// attempts are spaced with exponential backoff.
type Policy struct {
	MaxTries        uint
	AttemptTimeout  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxTries:        3,
		AttemptTimeout:  60 * time.Second,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// StatusError is returned by HTTP clients for non-2xx responses so the retry
// loop can tell transient failures from permanent ones.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Service, e.StatusCode, e.Body)
}

// Retryable reports whether an HTTP status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout
}

// Notify is called before sleeping between attempts.
type Notify func(attempt uint, err error, wait time.Duration)

// Do runs fn until it succeeds, returns a permanent error, the parent context
// ends or the policy runs out of tries.
func Do[T any](ctx context.Context, p Policy, notify Notify, fn func(ctx context.Context) (T, error)) (T, error) {
	if p.MaxTries == 0 {
		p.MaxTries = 1
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	var attempt uint
	operation := func() (T, error) {
		attempt++
		attemptCtx := ctx
		if p.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
			defer cancel()
		}

		res, err := fn(attemptCtx)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return res, backoff.Permanent(err)
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxTries),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(func(err error, wait time.Duration) {
			notify(attempt, err, wait)
		}))
	}

	return backoff.Retry(ctx, operation, opts...)
}
