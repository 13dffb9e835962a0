package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/domain"
)

// CompletionWorker sweeps CONFIRMED bookings whose session window has
// ended and neither participant completed by hand.
type CompletionWorker struct {
	bookings  application.BookingRepository
	tc        application.TransactionCoordinator
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewCompletionWorker(
	bookings application.BookingRepository,
	tc application.TransactionCoordinator,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *CompletionWorker {
	return &CompletionWorker{
		bookings:  bookings,
		tc:        tc,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (w *CompletionWorker) Start(ctx context.Context) {
	w.logger.Info("completion worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.processCompletions(ctx); err != nil {
		w.logger.Error("completion processing failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("completion worker stopping")
			return
		case <-ticker.C:
			if err := w.processCompletions(ctx); err != nil {
				w.logger.Error("completion processing failed", "error", err)
			}
		}
	}
}

func (w *CompletionWorker) processCompletions(ctx context.Context) error {
	now := time.Now().UTC()

	overdue, err := w.bookings.FindOverdueConfirmed(ctx, now, w.batchSize)
	if err != nil {
		return err
	}

	if len(overdue) == 0 {
		return nil
	}

	var completed int

	for _, booking := range overdue {
		if err := w.complete(ctx, booking.ID); err != nil {
			w.logger.Error("failed to complete booking",
				"booking_id", booking.ID,
				"error", err)
		} else {
			completed++
		}
	}

	w.logger.Info("processed completion sweep",
		"candidates", len(overdue),
		"completed", completed)

	return nil
}

func (w *CompletionWorker) complete(ctx context.Context, bookingID uuid.UUID) error {
	return w.tc.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		booking, err := repos.Bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != domain.BookingConfirmed {
			return nil
		}
		if time.Now().UTC().Before(booking.BookedEndTime) {
			return nil
		}

		if err := booking.Complete(); err != nil {
			return err
		}
		if err := repos.Bookings.Update(ctx, booking); err != nil {
			return err
		}

		if booking.SlotID != nil {
			slot, err := repos.Slots.FindByIDForUpdate(ctx, *booking.SlotID)
			if err != nil {
				return err
			}
			if slot.Status == domain.SlotBooked {
				slot.MarkCompleted()
				if err := repos.Slots.Update(ctx, slot); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
