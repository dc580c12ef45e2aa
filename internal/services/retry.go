package services

import (
	"context"
	"errors"
	"time"

	"swipe-match-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds the retries around store calls
type RetryPolicy struct {
	Attempts  uint64
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy is used when a service is built without one
var DefaultRetryPolicy = RetryPolicy{
	Attempts:  3,
	BaseDelay: 50 * time.Millisecond,
	MaxDelay:  time.Second,
}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultRetryPolicy.BaseDelay
	}
	b := retry.NewExponential(base)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return retry.WithMaxRetries(p.Attempts, b)
}

// withRetry runs fn until it succeeds, fails permanently, or the policy is exhausted.
// Not-found and context errors are permanent.
func withRetry(ctx context.Context, policy RetryPolicy, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, policy.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("Store call failed, retrying")
		return retry.RetryableError(err)
	})
}
