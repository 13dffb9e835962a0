package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/domain"
	"github.com/mentorlink/booking-service/internal/notify"
)

// CompleteService marks held sessions as completed. The completion
// worker sweeps up bookings nobody completed by hand.
type CompleteService struct {
	tc       application.TransactionCoordinator
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewCompleteService(
	tc application.TransactionCoordinator,
	notifier notify.Notifier,
	logger *slog.Logger,
) *CompleteService {
	return &CompleteService{
		tc:       tc,
		notifier: notifier,
		logger:   logger,
	}
}

// Complete transitions a confirmed booking to COMPLETED after its
// session window has ended, and the slot from booked to completed.
// Either participant may trigger it.
func (s *CompleteService) Complete(ctx context.Context, bookingID, userID uuid.UUID) (*domain.Booking, error) {
	var completed *domain.Booking

	err := s.tc.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		booking, err := repos.Bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return application.NewNotFoundError("booking")
		}
		if !booking.IsParticipant(userID) {
			return application.NewForbiddenError()
		}
		if booking.Status != domain.BookingConfirmed {
			return application.NewInvalidStateError(
				domain.NewInvalidStateError(string(booking.Status), string(domain.BookingConfirmed)))
		}
		if time.Now().UTC().Before(booking.BookedEndTime) {
			return application.NewInvalidStateError(
				domain.NewInvalidStateError("in progress", "ended"))
		}

		if err := booking.Complete(); err != nil {
			return application.NewInternalError(err)
		}
		if err := repos.Bookings.Update(ctx, booking); err != nil {
			return application.NewInternalError(err)
		}

		if booking.SlotID != nil {
			slot, err := repos.Slots.FindByIDForUpdate(ctx, *booking.SlotID)
			if err != nil {
				return application.NewNotFoundError("slot")
			}
			if slot.Status == domain.SlotBooked {
				slot.MarkCompleted()
				if err := repos.Slots.Update(ctx, slot); err != nil {
					return application.NewInternalError(err)
				}
			}
		}

		completed = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking completed", "booking_id", bookingID)
	dispatch(func(ctx context.Context) {
		s.notifier.BookingCompleted(ctx, completed)
	})
	return completed, nil
}
