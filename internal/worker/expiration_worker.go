// Package worker holds the background sweeps that move bookings along
// when nobody is asking for them over HTTP.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/domain"
)

// ExpirationWorker abandons PENDING_PAYMENT bookings whose checkout was
// never completed. The slot is untouched: it only leaves 'available'
// when a payment confirmation arrives, so an expired booking frees
// nothing.
type ExpirationWorker struct {
	bookings  application.BookingRepository
	tc        application.TransactionCoordinator
	timeout   time.Duration
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewExpirationWorker(
	bookings application.BookingRepository,
	tc application.TransactionCoordinator,
	timeout time.Duration,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *ExpirationWorker {
	return &ExpirationWorker{
		bookings:  bookings,
		tc:        tc,
		timeout:   timeout,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	w.logger.Info("expiration worker started", "interval", w.interval, "timeout", w.timeout)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.processExpirations(ctx); err != nil {
		w.logger.Error("expiration processing failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiration worker stopping")
			return
		case <-ticker.C:
			if err := w.processExpirations(ctx); err != nil {
				w.logger.Error("expiration processing failed", "error", err)
			}
		}
	}
}

func (w *ExpirationWorker) processExpirations(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-w.timeout)

	stale, err := w.bookings.FindExpiredPending(ctx, cutoff, w.batchSize)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	var expired int

	for _, booking := range stale {
		if err := w.expire(ctx, booking.ID); err != nil {
			w.logger.Error("failed to expire booking",
				"booking_id", booking.ID,
				"error", err)
		} else {
			expired++
		}
	}

	w.logger.Info("processed expiration check",
		"candidates", len(stale),
		"expired", expired)

	return nil
}

// expire re-checks the booking under its row lock: a webhook may have
// confirmed it between the list query and now.
func (w *ExpirationWorker) expire(ctx context.Context, bookingID uuid.UUID) error {
	return w.tc.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		booking, err := repos.Bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != domain.BookingPendingPayment {
			return nil
		}
		if err := booking.Expire(); err != nil {
			return err
		}
		return repos.Bookings.Update(ctx, booking)
	})
}
