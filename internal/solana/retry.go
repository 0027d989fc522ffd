package solana

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/max-de-bug/ascii-art-indexer/internal/adapter"
	"github.com/max-de-bug/ascii-art-indexer/internal/domain"
	"github.com/max-de-bug/ascii-art-indexer/internal/logger"
)

// RetryPolicy controls how RPC calls are retried. Rate-limit errors get an
// extra penalty delay on top of the exponential backoff so the node has
// time to reset its window.
type RetryPolicy struct {
	MaxAttempts      int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	RateLimitPenalty time.Duration

	clock adapter.Clock
}

// NewRetryPolicy builds a policy with the given attempt budget and base
// delay. The penalty for rate-limited calls is five times the base delay.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration, clock adapter.Clock) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return RetryPolicy{
		MaxAttempts:      maxAttempts,
		BaseDelay:        baseDelay,
		MaxDelay:         30 * time.Second,
		RateLimitPenalty: 5 * baseDelay,
		clock:            clock,
	}
}

// IsRateLimited reports whether an error was classified as node rate
// limiting, by sentinel, transport status or message text
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) && statusErr.IsRateLimited() {
		return true
	}
	return strings.Contains(err.Error(), "Too many requests")
}

// Do runs op with exponential backoff until it succeeds or the attempt
// budget is spent. Context cancellation stops retrying immediately.
func (p RetryPolicy) Do(ctx context.Context, name string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if IsRateLimited(err) && p.clock != nil {
			p.clock.Sleep(p.RateLimitPenalty)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.WarnCtx(ctx, "rpc call failed, retrying",
			zap.String("call", name),
			zap.Duration("wait", wait),
			zap.Bool("rateLimited", IsRateLimited(err)),
			zap.Error(err))
	}

	err := backoff.RetryNotify(
		wrapped,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx),
		notify,
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrRetriesExhausted, name, err)
	}
	return nil
}
