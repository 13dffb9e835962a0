// Package notify is the fire-and-forget boundary to the notification
// system. Dispatch failures are logged and dropped: they must never roll
// back or delay a booking transaction.
package notify

import (
	"context"
	"log/slog"

	"github.com/mentorlink/booking-service/internal/domain"
)

// Notifier receives booking lifecycle events after they have committed.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *domain.Booking)
	BookingCancelled(ctx context.Context, booking *domain.Booking, refundCents int64)
	BookingCompleted(ctx context.Context, booking *domain.Booking)
}

// LogNotifier is the default sink: it records the event and leaves
// delivery to whatever tails the logs. Real fan-out lives outside this
// service.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) BookingConfirmed(ctx context.Context, booking *domain.Booking) {
	n.logger.InfoContext(ctx, "notify: booking confirmed",
		"booking_id", booking.ID,
		"student_id", booking.StudentID,
		"mentor_id", booking.MentorID,
		"start_time", booking.BookedStartTime,
	)
}

func (n *LogNotifier) BookingCancelled(ctx context.Context, booking *domain.Booking, refundCents int64) {
	n.logger.InfoContext(ctx, "notify: booking cancelled",
		"booking_id", booking.ID,
		"status", booking.Status,
		"refund_cents", refundCents,
	)
}

func (n *LogNotifier) BookingCompleted(ctx context.Context, booking *domain.Booking) {
	n.logger.InfoContext(ctx, "notify: booking completed",
		"booking_id", booking.ID,
	)
}
