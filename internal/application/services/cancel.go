package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/domain"
	"github.com/mentorlink/booking-service/internal/notify"
)

// CancelService applies the time-window cancellation policy and issues
// refunds through the payment gateway.
type CancelService struct {
	tc       application.TransactionCoordinator
	bookings application.BookingRepository
	gateway  application.PaymentGateway
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewCancelService(
	tc application.TransactionCoordinator,
	bookings application.BookingRepository,
	gateway application.PaymentGateway,
	notifier notify.Notifier,
	logger *slog.Logger,
) *CancelService {
	return &CancelService{
		tc:       tc,
		bookings: bookings,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
	}
}

// Cancel cancels a confirmed, paid booking on behalf of its student or
// mentor. Preconditions are checked once without locks to reject bad
// requests cheaply, then re-resolved under the row locks before anything
// is written. A refund failure is recorded as REFUND_FAILED and the
// cancellation still commits: operators recover the refund out of band
// rather than leaving the session in limbo. Booking and slot state
// commit atomically.
func (s *CancelService) Cancel(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	booking, err := s.bookings.FindByID(ctx, cmd.BookingID)
	if err != nil {
		return nil, application.NewNotFoundError("booking")
	}
	if _, err := domain.ResolveCancellation(booking, cmd.UserID, time.Now().UTC()); err != nil {
		return nil, mapCancellationError(err)
	}

	var result CancelBookingResult
	var cancelled *domain.Booking

	err = s.tc.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		booking, err := repos.Bookings.FindByIDForUpdate(ctx, cmd.BookingID)
		if err != nil {
			return application.NewNotFoundError("booking")
		}

		// Lock order matches the webhook path: booking first, then slot.
		var slot *domain.Slot
		if booking.SlotID != nil {
			slot, err = repos.Slots.FindByIDForUpdate(ctx, *booking.SlotID)
			if err != nil {
				return application.NewNotFoundError("slot")
			}
		}

		now := time.Now().UTC()
		outcome, err := domain.ResolveCancellation(booking, cmd.UserID, now)
		if err != nil {
			return mapCancellationError(err)
		}

		paymentStatus := domain.PaymentNoRefund
		var refundID string

		if outcome.RefundCents > 0 {
			if booking.PaymentIntentID == nil {
				return application.NewRefundNotPossibleError()
			}
			refund, err := s.gateway.CreateRefund(ctx, application.RefundRequest{
				PaymentIntentID: *booking.PaymentIntentID,
				AmountCents:     outcome.RefundCents,
				Reason:          cmd.Reason,
				Metadata: map[string]string{
					"booking_id":        booking.ID.String(),
					"cancelled_by":      cmd.UserID.String(),
					"cancellation_type": outcome.Label,
				},
			})
			if err != nil {
				// Recorded, not retried: cancellation proceeds and the
				// failed refund surfaces to operators through the logs.
				s.logger.ErrorContext(ctx, "refund request failed",
					"booking_id", booking.ID,
					"payment_intent_id", *booking.PaymentIntentID,
					"refund_cents", outcome.RefundCents,
					"error", err,
				)
				paymentStatus = domain.PaymentRefundFailed
			} else {
				paymentStatus = domain.PaymentRefunded
				refundID = refund.ID
			}
		}

		if err := booking.ApplyCancellation(outcome.BookingStatus, paymentStatus, cmd.UserID, cmd.Reason, now); err != nil {
			return application.NewInternalError(err)
		}
		if err := repos.Bookings.Update(ctx, booking); err != nil {
			return application.NewInternalError(err)
		}

		if slot != nil {
			switch outcome.SlotStatus {
			case domain.SlotAvailable:
				slot.MarkAvailable()
			case domain.SlotUnavailable:
				slot.MarkUnavailable()
			}
			if err := repos.Slots.Update(ctx, slot); err != nil {
				return application.NewInternalError(err)
			}
		}

		cancelled = booking
		result = CancelBookingResult{
			NewStatus:     booking.Status,
			PaymentStatus: paymentStatus,
			RefundCents:   outcome.RefundCents,
			RefundID:      refundID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking cancelled",
		"booking_id", cmd.BookingID,
		"new_status", result.NewStatus,
		"payment_status", result.PaymentStatus,
		"refund_cents", result.RefundCents,
	)
	dispatch(func(ctx context.Context) {
		s.notifier.BookingCancelled(ctx, cancelled, result.RefundCents)
	})
	return &result, nil
}

func mapCancellationError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotParticipant):
		return application.NewForbiddenError()
	case errors.Is(err, domain.ErrSessionAlreadyEnded):
		return application.NewSessionEndedError()
	default:
		return application.NewInvalidStateError(err)
	}
}
