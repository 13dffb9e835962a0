// Package services orchestrates the booking, cancellation, webhook and
// slot flows over the application ports.
package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/domain"
)

// CheckoutPolicy carries the payment configuration the booking flow
// needs: the platform's cut and where the client is sent after checkout.
type CheckoutPolicy struct {
	PlatformFeeRate float64
	Currency        string
	SuccessURL      string
	CancelURL       string
}

// CreateBookingCommand requests a new booking for a slot.
type CreateBookingCommand struct {
	StudentID uuid.UUID
	SlotID    uuid.UUID
}

// CreateBookingResult is returned once the checkout session is open.
type CreateBookingResult struct {
	BookingID   uuid.UUID
	RedirectURL string
}

// CancelBookingCommand requests cancellation of a confirmed booking.
type CancelBookingCommand struct {
	BookingID uuid.UUID
	UserID    uuid.UUID
	Reason    string
}

// CancelBookingResult reports the cancellation outcome, including the
// refund the provider was asked for and its transaction id, if any.
type CancelBookingResult struct {
	NewStatus     domain.BookingStatus
	PaymentStatus domain.PaymentStatus
	RefundCents   int64
	RefundID      string
}

// CheckoutCompletedEvent is the reconciliation handler's view of a
// verified "checkout completed" provider event.
type CheckoutCompletedEvent struct {
	BookingID       uuid.UUID
	SlotID          uuid.UUID
	PaymentIntentID string
}

// CreateSlotCommand opens a new bookable window for a mentor.
type CreateSlotCommand struct {
	MentorID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	FeeCents  int64
	Timezone  string
}
