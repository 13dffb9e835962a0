package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/domain"
	"github.com/mentorlink/booking-service/internal/notify"
)

// BookingService creates bookings and opens their checkout sessions.
type BookingService struct {
	tc       application.TransactionCoordinator
	gateway  application.PaymentGateway
	notifier notify.Notifier
	policy   CheckoutPolicy
	logger   *slog.Logger
}

func NewBookingService(
	tc application.TransactionCoordinator,
	gateway application.PaymentGateway,
	notifier notify.Notifier,
	policy CheckoutPolicy,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		tc:       tc,
		gateway:  gateway,
		notifier: notifier,
		policy:   policy,
		logger:   logger,
	}
}

// Create books a slot for a student: it locks the slot row, validates it
// is still available, creates a PENDING_PAYMENT booking snapshotting the
// slot, opens a checkout session with the provider, and stores the
// session id, all in one transaction. The slot lock is held across the
// provider call on purpose: no conflicting mutation can interleave, at
// the cost of holding the lock for one bounded network round trip. Any
// gateway failure rolls the whole transaction back, so a booking is
// never left half-created.
func (s *BookingService) Create(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	if cmd.SlotID == uuid.Nil {
		return nil, application.NewInvalidInputError(domain.NewMissingRequiredFieldError("slot_id"))
	}
	if cmd.StudentID == uuid.Nil {
		return nil, application.NewInvalidInputError(domain.NewMissingRequiredFieldError("student_id"))
	}

	var result CreateBookingResult
	err := s.tc.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		slot, err := repos.Slots.FindByIDForUpdate(ctx, cmd.SlotID)
		if err != nil {
			return application.NewSlotUnavailableError()
		}
		if slot.Status != domain.SlotAvailable {
			return application.NewSlotUnavailableError()
		}
		if slot.MentorID == cmd.StudentID {
			return application.NewSelfBookingForbiddenError()
		}

		// The slot stays 'available' until a payment confirms, so the
		// status check alone doesn't stop a second student whose rival
		// booking is still awaiting its webhook. One live claim per slot.
		active, err := repos.Bookings.HasActiveForSlot(ctx, slot.ID)
		if err != nil {
			return application.NewInternalError(err)
		}
		if active {
			return application.NewSlotUnavailableError()
		}

		mentor, err := repos.Users.FindByID(ctx, slot.MentorID)
		if err != nil {
			return application.NewNotFoundError("mentor")
		}
		if !mentor.HasPayoutAccount() {
			return application.NewPayoutNotConfiguredError()
		}

		student, err := repos.Users.FindByID(ctx, cmd.StudentID)
		if err != nil {
			return application.NewNotFoundError("student")
		}

		platformFee, err := domain.PlatformFeeCents(slot.FeeCents, s.policy.PlatformFeeRate)
		if err != nil {
			return application.NewConfigurationError(err)
		}

		booking, err := domain.NewBooking(cmd.StudentID, slot)
		if err != nil {
			return application.NewInvalidInputError(err)
		}
		if err := repos.Bookings.Create(ctx, booking); err != nil {
			return application.NewInternalError(err)
		}

		session, err := s.gateway.CreateCheckoutSession(ctx, application.CheckoutSessionRequest{
			AmountCents:         slot.FeeCents,
			Currency:            s.policy.Currency,
			ProductName:         fmt.Sprintf("Mentorship session with %s", slot.MentorID),
			ProductDescription:  sessionDescription(slot),
			CustomerEmail:       student.Email,
			DestinationAccount:  mentor.PayoutAccountID,
			ApplicationFeeCents: platformFee,
			SuccessURL:          s.policy.SuccessURL,
			CancelURL:           s.policy.CancelURL,
			ClientReferenceID:   booking.ID.String(),
			Metadata: map[string]string{
				"booking_id": booking.ID.String(),
				"slot_id":    slot.ID.String(),
				"mentor_id":  slot.MentorID.String(),
				"student_id": cmd.StudentID.String(),
			},
		})
		if err != nil {
			return application.NewGatewayError(err)
		}

		if err := booking.AttachCheckoutSession(session.ID); err != nil {
			return application.NewInternalError(err)
		}
		if err := repos.Bookings.Update(ctx, booking); err != nil {
			return application.NewInternalError(err)
		}

		result = CreateBookingResult{
			BookingID:   booking.ID,
			RedirectURL: session.RedirectURL,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking initiated",
		"booking_id", result.BookingID,
		"slot_id", cmd.SlotID,
		"student_id", cmd.StudentID,
	)
	return &result, nil
}

func sessionDescription(slot *domain.Slot) string {
	return fmt.Sprintf("%s - %s (%s)",
		slot.StartTime.Format("2006-01-02 15:04"),
		slot.EndTime.Format("15:04"),
		slot.Timezone,
	)
}
