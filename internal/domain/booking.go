// Package domain holds the booking and slot entities and the state
// machines that govern their lifecycles.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	BookingPendingPayment        BookingStatus = "PENDING_PAYMENT"
	BookingConfirmed             BookingStatus = "CONFIRMED"
	BookingCancelled             BookingStatus = "CANCELLED"
	BookingCompleted             BookingStatus = "COMPLETED"
	BookingStudentCancelledFull  BookingStatus = "CANCELED_BY_STUDENT_FULL_REFUND"
	BookingStudentCancelledNoRef BookingStatus = "CANCELED_BY_STUDENT_NO_REFUND"
	BookingMentorCancelled       BookingStatus = "CANCELED_BY_MENTOR"
	BookingRescheduled           BookingStatus = "RESCHEDULED"
)

// PaymentStatus tracks the money side of a booking independently of the
// booking status.
type PaymentStatus string

const (
	PaymentPending      PaymentStatus = "PENDING"
	PaymentPaid         PaymentStatus = "PAID"
	PaymentFailed       PaymentStatus = "FAILED"
	PaymentRefunded     PaymentStatus = "REFUNDED"
	PaymentRefundFailed PaymentStatus = "REFUND_FAILED"
	PaymentNoRefund     PaymentStatus = "NO_REFUND"
)

// Booking is a student's claim on a slot. Time, fee and timezone are
// snapshotted from the slot at creation time and stay authoritative even
// if the slot changes afterwards. SlotID is nullable: the slot row may be
// reassigned or removed independently of the booking.
type Booking struct {
	ID        uuid.UUID
	StudentID uuid.UUID
	MentorID  uuid.UUID
	SlotID    *uuid.UUID

	BookedStartTime time.Time
	BookedEndTime   time.Time
	BookedFeeCents  int64
	BookedTimezone  string

	Status        BookingStatus
	PaymentStatus PaymentStatus

	CheckoutSessionID *string
	PaymentIntentID   *string

	CancelledBy        *uuid.UUID
	CancelledAt        *time.Time
	CancellationReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBooking creates a PENDING_PAYMENT booking snapshotting the slot's
// time window, fee and timezone.
func NewBooking(studentID uuid.UUID, slot *Slot) (*Booking, error) {
	if studentID == uuid.Nil {
		return nil, NewMissingRequiredFieldError("student id")
	}
	if slot == nil {
		return nil, NewMissingRequiredFieldError("slot")
	}
	slotID := slot.ID
	now := time.Now().UTC()
	return &Booking{
		ID:              uuid.New(),
		StudentID:       studentID,
		MentorID:        slot.MentorID,
		SlotID:          &slotID,
		BookedStartTime: slot.StartTime,
		BookedEndTime:   slot.EndTime,
		BookedFeeCents:  slot.FeeCents,
		BookedTimezone:  slot.Timezone,
		Status:          BookingPendingPayment,
		PaymentStatus:   PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (b *Booking) transition(target BookingStatus) error {
	if err := b.canTransitionTo(target); err != nil {
		return err
	}
	b.Status = target
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (b *Booking) canTransitionTo(target BookingStatus) error {
	switch b.Status {
	case BookingPendingPayment:
		return b.allow(target, BookingConfirmed, BookingCancelled)
	case BookingConfirmed:
		return b.allow(target,
			BookingCompleted,
			BookingStudentCancelledFull,
			BookingStudentCancelledNoRef,
			BookingMentorCancelled,
			BookingRescheduled,
		)
	}
	return NewInvalidTransitionError(b.Status, target)
}

func (b *Booking) allow(target BookingStatus, allowed ...BookingStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidTransitionError(b.Status, target)
}

// AttachCheckoutSession records the external checkout-session id opened
// for this booking.
func (b *Booking) AttachCheckoutSession(sessionID string) error {
	if sessionID == "" {
		return NewMissingRequiredFieldError("checkout session id")
	}
	b.CheckoutSessionID = &sessionID
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Confirm applies a verified payment confirmation: the booking moves to
// CONFIRMED/PAID and the payment-intent id is recorded. Only valid from
// PENDING_PAYMENT with payment still pending; the webhook idempotency
// guard checks that before calling.
func (b *Booking) Confirm(paymentIntentID string) error {
	if b.PaymentStatus != PaymentPending {
		return NewInvalidStateError(string(b.PaymentStatus), string(PaymentPending))
	}
	if err := b.transition(BookingConfirmed); err != nil {
		return err
	}
	b.PaymentStatus = PaymentPaid
	if paymentIntentID != "" {
		b.PaymentIntentID = &paymentIntentID
	}
	return nil
}

// ApplyCancellation moves the booking into the terminal cancellation
// state decided by the policy engine and records who cancelled, when and
// why. The payment status is whatever the refund attempt produced.
func (b *Booking) ApplyCancellation(
	status BookingStatus,
	paymentStatus PaymentStatus,
	cancelledBy uuid.UUID,
	reason string,
	at time.Time,
) error {
	if err := b.transition(status); err != nil {
		return err
	}
	b.PaymentStatus = paymentStatus
	b.CancelledBy = &cancelledBy
	b.CancelledAt = &at
	if reason != "" {
		b.CancellationReason = &reason
	}
	return nil
}

// Complete marks a confirmed booking as held. Only meaningful after the
// session window has ended; callers enforce the clock check.
func (b *Booking) Complete() error {
	return b.transition(BookingCompleted)
}

// Expire abandons a booking whose checkout was never completed.
func (b *Booking) Expire() error {
	if err := b.transition(BookingCancelled); err != nil {
		return err
	}
	b.PaymentStatus = PaymentFailed
	return nil
}

// IsTerminal reports whether the booking can no longer change state.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingCancelled, BookingCompleted,
		BookingStudentCancelledFull, BookingStudentCancelledNoRef,
		BookingMentorCancelled:
		return true
	default:
		return false
	}
}

// IsParticipant reports whether the user is the booking's student or
// mentor.
func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return userID == b.StudentID || userID == b.MentorID
}
