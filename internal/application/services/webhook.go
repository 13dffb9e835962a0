package services

import (
	"context"
	"log/slog"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/domain"
	"github.com/mentorlink/booking-service/internal/notify"
)

// WebhookService reconciles asynchronous payment confirmations with the
// locally-held booking and slot state. The provider delivers events
// at-least-once, so everything here must stay safe under duplicate and
// concurrent invocations.
type WebhookService struct {
	tc       application.TransactionCoordinator
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewWebhookService(
	tc application.TransactionCoordinator,
	notifier notify.Notifier,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		tc:       tc,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleCheckoutCompleted applies a verified "checkout completed" event.
// Booking and slot rows are locked in one transaction; the idempotency
// guard only transitions a booking that is still PENDING_PAYMENT with a
// pending payment, so a redelivered event is a silent no-op. A slot that
// is already booked is logged and left alone: another path may have
// booked it, which is informational, not an error.
func (s *WebhookService) HandleCheckoutCompleted(ctx context.Context, event CheckoutCompletedEvent) error {
	var confirmed *domain.Booking

	err := s.tc.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		booking, err := repos.Bookings.FindByIDForUpdate(ctx, event.BookingID)
		if err != nil {
			return application.NewNotFoundError("booking")
		}
		slot, err := repos.Slots.FindByIDForUpdate(ctx, event.SlotID)
		if err != nil {
			return application.NewNotFoundError("slot")
		}

		if booking.Status != domain.BookingPendingPayment || booking.PaymentStatus != domain.PaymentPending {
			s.logger.DebugContext(ctx, "webhook: booking already reconciled, skipping",
				"booking_id", booking.ID,
				"status", booking.Status,
				"payment_status", booking.PaymentStatus,
			)
			return nil
		}

		if err := booking.Confirm(event.PaymentIntentID); err != nil {
			return application.NewInternalError(err)
		}
		if err := repos.Bookings.Update(ctx, booking); err != nil {
			return application.NewInternalError(err)
		}

		switch slot.Status {
		case domain.SlotAvailable:
			slot.MarkBooked()
			if err := repos.Slots.Update(ctx, slot); err != nil {
				return application.NewInternalError(err)
			}
		case domain.SlotBooked:
			s.logger.InfoContext(ctx, "webhook: slot already marked booked",
				"slot_id", slot.ID,
				"booking_id", booking.ID,
			)
		default:
			s.logger.WarnContext(ctx, "webhook: slot in unexpected status",
				"slot_id", slot.ID,
				"status", slot.Status,
				"booking_id", booking.ID,
			)
		}

		confirmed = booking
		return nil
	})
	if err != nil {
		return err
	}

	if confirmed != nil {
		s.logger.InfoContext(ctx, "booking confirmed via webhook",
			"booking_id", confirmed.ID,
			"slot_id", event.SlotID,
		)
		dispatch(func(ctx context.Context) {
			s.notifier.BookingConfirmed(ctx, confirmed)
		})
	}
	return nil
}
