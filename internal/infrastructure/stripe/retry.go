package stripe

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/config"
)

// RetryClient decorates a PaymentGateway with bounded exponential
// backoff on retryable failures. The overall budget stays inside the
// caller's context deadline: booking and cancellation hold row locks
// across these calls, so giving up fast beats hammering the provider.
type RetryClient struct {
	inner      application.PaymentGateway
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryClient(inner application.PaymentGateway, cfg config.RetryConfig) *RetryClient {
	// An unset retry budget still means one attempt; zero would skip
	// the provider call entirely.
	maxRetries := int(cfg.MaxRetries)
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: maxRetries,
	}
}

func (r *RetryClient) CreateCheckoutSession(ctx context.Context, req application.CheckoutSessionRequest) (*application.CheckoutSession, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.CheckoutSession, error) {
		return r.inner.CreateCheckoutSession(ctx, req)
	})
}

func (r *RetryClient) CreateRefund(ctx context.Context, req application.RefundRequest) (*application.Refund, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.Refund, error) {
		return r.inner.CreateRefund(ctx, req)
	})
}

func retry[T any](r *RetryClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !IsRetryableError(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)
	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond
	return base + jitter
}
