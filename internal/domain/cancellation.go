package domain

import (
	"time"

	"github.com/google/uuid"
)

// FullRefundNotice is the minimum time before session start at which a
// student still gets a full refund.
const FullRefundNotice = 24 * time.Hour

// Cancellation labels sent to the payment provider with refund requests.
const (
	CancelLabelStudentFullRefund = "student_full_refund"
	CancelLabelStudentNoRefund   = "student_no_refund"
	CancelLabelMentor            = "mentor_cancelled"
)

// CancellationOutcome is the deterministic result of applying the refund
// policy table to a booking at a point in time.
type CancellationOutcome struct {
	Actor         Role
	RefundCents   int64
	BookingStatus BookingStatus
	SlotStatus    SlotStatus
	Label         string
}

// ResolveCancellation computes refund eligibility and the resulting
// booking/slot states for a cancellation requested by userID at now.
//
//	student, >= 24h to start: full refund, slot available
//	student, <  24h to start: no refund,  slot available
//	mentor,  any time before session end: full refund, slot unavailable
//
// It is a pure function: callers run it once for the cheap precondition
// check and again under the row locks before committing.
func ResolveCancellation(b *Booking, userID uuid.UUID, now time.Time) (CancellationOutcome, error) {
	var actor Role
	switch userID {
	case b.StudentID:
		actor = RoleStudent
	case b.MentorID:
		actor = RoleMentor
	default:
		return CancellationOutcome{}, ErrNotParticipant
	}

	if b.Status != BookingConfirmed || b.PaymentStatus != PaymentPaid {
		return CancellationOutcome{}, NewInvalidStateError(
			string(b.Status)+"/"+string(b.PaymentStatus),
			string(BookingConfirmed)+"/"+string(PaymentPaid),
		)
	}
	if !now.Before(b.BookedEndTime) {
		return CancellationOutcome{}, ErrSessionAlreadyEnded
	}

	if actor == RoleMentor {
		return CancellationOutcome{
			Actor:         RoleMentor,
			RefundCents:   b.BookedFeeCents,
			BookingStatus: BookingMentorCancelled,
			SlotStatus:    SlotUnavailable,
			Label:         CancelLabelMentor,
		}, nil
	}

	if b.BookedStartTime.Sub(now) >= FullRefundNotice {
		return CancellationOutcome{
			Actor:         RoleStudent,
			RefundCents:   b.BookedFeeCents,
			BookingStatus: BookingStudentCancelledFull,
			SlotStatus:    SlotAvailable,
			Label:         CancelLabelStudentFullRefund,
		}, nil
	}
	return CancellationOutcome{
		Actor:         RoleStudent,
		RefundCents:   0,
		BookingStatus: BookingStudentCancelledNoRef,
		SlotStatus:    SlotAvailable,
		Label:         CancelLabelStudentNoRefund,
	}, nil
}
