package services

import (
	"context"
	"errors"
	"fmt"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/platform/obs"
	"geodistance-service/internal/ports"
	"log"
	"time"
)

// RetryPolicy retries with a constant delay between attempts.
type RetryPolicy struct {
	// Total attempts including the first. Default 5.
	MaxAttempts int
	// Wait between attempts. Default 5s.
	Delay time.Duration
	// Reports whether err is worth another attempt.
	// Default: transport failures only.
	RetryIf func(err error) bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, Delay: 5 * time.Second}
}

// RetryingResolver wraps a resolver for callers that want the
// retry-then-give-up behaviour. When retries are exhausted the last error is
// returned wrapped in domain.ErrAddressNotFound.
type RetryingResolver struct {
	next   ports.AddressResolver
	policy RetryPolicy
}

func NewRetryingResolver(next ports.AddressResolver, policy RetryPolicy) *RetryingResolver {
	def := DefaultRetryPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	if policy.RetryIf == nil {
		policy.RetryIf = domain.IsTransport
	}
	return &RetryingResolver{next: next, policy: policy}
}

func (r *RetryingResolver) Policy() RetryPolicy { return r.policy }

func (r *RetryingResolver) Resolve(ctx context.Context, address string) (domain.Coordinates, error) {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Coordinates{}, giveUp(address, err)
		}

		c, err := r.next.Resolve(ctx, address)
		if err == nil {
			return c, nil
		}
		lastErr = err

		if !r.policy.RetryIf(err) || attempt == r.policy.MaxAttempts {
			break
		}

		log.Printf("req_id=%s resolve retry: address=%q attempt=%d/%d delay=%s err=%v",
			obs.RequestID(ctx), NormalizeAddress(address), attempt, r.policy.MaxAttempts, r.policy.Delay, err)

		timer := time.NewTimer(r.policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Coordinates{}, giveUp(address, ctx.Err())
		case <-timer.C:
		}
	}

	return domain.Coordinates{}, giveUp(address, lastErr)
}

func giveUp(address string, err error) error {
	if errors.Is(err, domain.ErrAddressNotFound) {
		return err
	}
	return fmt.Errorf("%w: %q: %w", domain.ErrAddressNotFound, NormalizeAddress(address), err)
}
