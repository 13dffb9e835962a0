package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/booking-service/internal/domain"
)

func createTestSlot(t *testing.T) *domain.Slot {
	t.Helper()
	start := time.Now().UTC().Add(48 * time.Hour)
	slot, err := domain.NewSlot(uuid.New(), start, start.Add(time.Hour), 10000, "Europe/Berlin")
	require.NoError(t, err)
	return slot
}

func createTestBooking(t *testing.T) *domain.Booking {
	t.Helper()
	booking, err := domain.NewBooking(uuid.New(), createTestSlot(t))
	require.NoError(t, err)
	return booking
}

func createConfirmedBooking(t *testing.T) *domain.Booking {
	t.Helper()
	booking := createTestBooking(t)
	require.NoError(t, booking.Confirm("pi_test_123"))
	return booking
}

func TestNewBooking(t *testing.T) {
	t.Run("creates booking snapshotting the slot", func(t *testing.T) {
		studentID := uuid.New()
		slot := createTestSlot(t)

		booking, err := domain.NewBooking(studentID, slot)

		require.NoError(t, err)
		assert.Equal(t, studentID, booking.StudentID)
		assert.Equal(t, slot.MentorID, booking.MentorID)
		require.NotNil(t, booking.SlotID)
		assert.Equal(t, slot.ID, *booking.SlotID)
		assert.Equal(t, slot.StartTime, booking.BookedStartTime)
		assert.Equal(t, slot.EndTime, booking.BookedEndTime)
		assert.Equal(t, slot.FeeCents, booking.BookedFeeCents)
		assert.Equal(t, slot.Timezone, booking.BookedTimezone)
		assert.Equal(t, domain.BookingPendingPayment, booking.Status)
		assert.Equal(t, domain.PaymentPending, booking.PaymentStatus)
		assert.NotZero(t, booking.CreatedAt)
	})

	t.Run("rejects nil student id", func(t *testing.T) {
		_, err := domain.NewBooking(uuid.Nil, createTestSlot(t))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "student id")
	})

	t.Run("rejects nil slot", func(t *testing.T) {
		_, err := domain.NewBooking(uuid.New(), nil)

		assert.Error(t, err)
	})
}

func TestBooking_Confirm(t *testing.T) {
	t.Run("PENDING_PAYMENT -> CONFIRMED transition", func(t *testing.T) {
		booking := createTestBooking(t)

		err := booking.Confirm("pi_abc")

		require.NoError(t, err)
		assert.Equal(t, domain.BookingConfirmed, booking.Status)
		assert.Equal(t, domain.PaymentPaid, booking.PaymentStatus)
		require.NotNil(t, booking.PaymentIntentID)
		assert.Equal(t, "pi_abc", *booking.PaymentIntentID)
	})

	t.Run("rejects a second confirmation", func(t *testing.T) {
		booking := createConfirmedBooking(t)

		err := booking.Confirm("pi_other")

		assert.Error(t, err)
		assert.Equal(t, domain.BookingConfirmed, booking.Status)
		assert.Equal(t, "pi_test_123", *booking.PaymentIntentID)
	})

	t.Run("rejects confirmation of an expired booking", func(t *testing.T) {
		booking := createTestBooking(t)
		require.NoError(t, booking.Expire())

		err := booking.Confirm("pi_late")

		assert.Error(t, err)
		assert.Equal(t, domain.BookingCancelled, booking.Status)
	})
}

func TestBooking_StateTransitions(t *testing.T) {
	t.Run("CONFIRMED -> COMPLETED transition", func(t *testing.T) {
		booking := createConfirmedBooking(t)

		err := booking.Complete()

		require.NoError(t, err)
		assert.Equal(t, domain.BookingCompleted, booking.Status)
	})

	t.Run("PENDING_PAYMENT cannot complete", func(t *testing.T) {
		booking := createTestBooking(t)

		err := booking.Complete()

		assert.Error(t, err)
		assert.Equal(t, domain.BookingPendingPayment, booking.Status)
	})

	t.Run("PENDING_PAYMENT -> CANCELLED on expiry", func(t *testing.T) {
		booking := createTestBooking(t)

		err := booking.Expire()

		require.NoError(t, err)
		assert.Equal(t, domain.BookingCancelled, booking.Status)
		assert.Equal(t, domain.PaymentFailed, booking.PaymentStatus)
	})

	t.Run("terminal states accept no transitions", func(t *testing.T) {
		booking := createConfirmedBooking(t)
		require.NoError(t, booking.Complete())

		assert.Error(t, booking.Complete())
		assert.Error(t, booking.Expire())
		assert.Error(t, booking.Confirm("pi_zombie"))
	})
}

func TestBooking_ApplyCancellation(t *testing.T) {
	t.Run("records actor, time and reason", func(t *testing.T) {
		booking := createConfirmedBooking(t)
		by := booking.StudentID
		at := time.Now().UTC()

		err := booking.ApplyCancellation(
			domain.BookingStudentCancelledFull,
			domain.PaymentRefunded,
			by,
			"can no longer attend",
			at,
		)

		require.NoError(t, err)
		assert.Equal(t, domain.BookingStudentCancelledFull, booking.Status)
		assert.Equal(t, domain.PaymentRefunded, booking.PaymentStatus)
		require.NotNil(t, booking.CancelledBy)
		assert.Equal(t, by, *booking.CancelledBy)
		require.NotNil(t, booking.CancelledAt)
		assert.Equal(t, at, *booking.CancelledAt)
		require.NotNil(t, booking.CancellationReason)
		assert.Equal(t, "can no longer attend", *booking.CancellationReason)
		assert.True(t, booking.IsTerminal())
	})

	t.Run("rejects cancellation from PENDING_PAYMENT", func(t *testing.T) {
		booking := createTestBooking(t)

		err := booking.ApplyCancellation(
			domain.BookingMentorCancelled,
			domain.PaymentRefunded,
			booking.MentorID,
			"",
			time.Now().UTC(),
		)

		assert.Error(t, err)
		assert.Equal(t, domain.BookingPendingPayment, booking.Status)
	})

	t.Run("empty reason stays nil", func(t *testing.T) {
		booking := createConfirmedBooking(t)

		err := booking.ApplyCancellation(
			domain.BookingStudentCancelledNoRef,
			domain.PaymentNoRefund,
			booking.StudentID,
			"",
			time.Now().UTC(),
		)

		require.NoError(t, err)
		assert.Nil(t, booking.CancellationReason)
	})
}

func TestBooking_IsParticipant(t *testing.T) {
	booking := createTestBooking(t)

	assert.True(t, booking.IsParticipant(booking.StudentID))
	assert.True(t, booking.IsParticipant(booking.MentorID))
	assert.False(t, booking.IsParticipant(uuid.New()))
}
