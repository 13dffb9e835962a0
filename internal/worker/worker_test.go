package worker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/application/services"
	"github.com/mentorlink/booking-service/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedSlotAndBooking(t *testing.T, store *services.MemStore) (*domain.Booking, *domain.Slot) {
	t.Helper()
	start := time.Now().UTC().Add(48 * time.Hour)
	slot, err := domain.NewSlot(uuid.New(), start, start.Add(time.Hour), 10000, "UTC")
	require.NoError(t, err)
	booking, err := domain.NewBooking(uuid.New(), slot)
	require.NoError(t, err)
	store.PutSlot(slot)
	store.PutBooking(booking)
	return booking, slot
}

func TestExpirationWorker(t *testing.T) {
	t.Run("expires stale pending bookings", func(t *testing.T) {
		store := services.NewMemStore()
		booking, slot := seedSlotAndBooking(t, store)
		booking.CreatedAt = time.Now().UTC().Add(-time.Hour)
		store.PutBooking(booking)

		w := NewExpirationWorker(store.Repositories().Bookings, store, 30*time.Minute, time.Minute, 100, testLogger())
		require.NoError(t, w.processExpirations(context.Background()))

		saved, _ := store.GetBooking(booking.ID)
		assert.Equal(t, domain.BookingCancelled, saved.Status)
		assert.Equal(t, domain.PaymentFailed, saved.PaymentStatus)

		// The slot never left the market while payment was pending.
		savedSlot, _ := store.GetSlot(slot.ID)
		assert.Equal(t, domain.SlotAvailable, savedSlot.Status)
	})

	t.Run("leaves fresh pending bookings alone", func(t *testing.T) {
		store := services.NewMemStore()
		booking, _ := seedSlotAndBooking(t, store)

		w := NewExpirationWorker(store.Repositories().Bookings, store, 30*time.Minute, time.Minute, 100, testLogger())
		require.NoError(t, w.processExpirations(context.Background()))

		saved, _ := store.GetBooking(booking.ID)
		assert.Equal(t, domain.BookingPendingPayment, saved.Status)
	})

	t.Run("skips bookings confirmed between list and lock", func(t *testing.T) {
		store := services.NewMemStore()
		booking, _ := seedSlotAndBooking(t, store)
		booking.CreatedAt = time.Now().UTC().Add(-time.Hour)
		require.NoError(t, booking.Confirm("pi_test"))
		store.PutBooking(booking)

		w := NewExpirationWorker(store.Repositories().Bookings, store, 30*time.Minute, time.Minute, 100, testLogger())
		require.NoError(t, w.processExpirations(context.Background()))

		saved, _ := store.GetBooking(booking.ID)
		assert.Equal(t, domain.BookingConfirmed, saved.Status)
	})
}

// failingBookings errors on the sweep list queries; the embedded
// interface panics on anything else, which these tests never reach.
type failingBookings struct {
	application.BookingRepository
}

func (failingBookings) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	return nil, errors.New("list query failed")
}

func (failingBookings) FindOverdueConfirmed(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	return nil, errors.New("list query failed")
}

func TestWorkerStart_LogsFirstSweepFailure(t *testing.T) {
	// Start runs one sweep before the ticker loop; with the context
	// already cancelled that first sweep is all that executes.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("expiration worker", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		w := NewExpirationWorker(failingBookings{}, services.NewMemStore(), 30*time.Minute, time.Hour, 100, logger)
		w.Start(ctx)

		assert.Contains(t, buf.String(), "expiration processing failed")
	})

	t.Run("completion worker", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		w := NewCompletionWorker(failingBookings{}, services.NewMemStore(), time.Hour, 100, logger)
		w.Start(ctx)

		assert.Contains(t, buf.String(), "completion processing failed")
	})
}

func TestCompletionWorker(t *testing.T) {
	t.Run("completes confirmed bookings past their end time", func(t *testing.T) {
		store := services.NewMemStore()
		booking, slot := seedSlotAndBooking(t, store)
		require.NoError(t, booking.Confirm("pi_test"))
		booking.BookedStartTime = time.Now().UTC().Add(-2 * time.Hour)
		booking.BookedEndTime = time.Now().UTC().Add(-time.Hour)
		slot.MarkBooked()
		store.PutBooking(booking)
		store.PutSlot(slot)

		w := NewCompletionWorker(store.Repositories().Bookings, store, time.Minute, 100, testLogger())
		require.NoError(t, w.processCompletions(context.Background()))

		saved, _ := store.GetBooking(booking.ID)
		assert.Equal(t, domain.BookingCompleted, saved.Status)
		savedSlot, _ := store.GetSlot(slot.ID)
		assert.Equal(t, domain.SlotCompleted, savedSlot.Status)
	})

	t.Run("ignores sessions still in progress", func(t *testing.T) {
		store := services.NewMemStore()
		booking, _ := seedSlotAndBooking(t, store)
		require.NoError(t, booking.Confirm("pi_test"))
		store.PutBooking(booking)

		w := NewCompletionWorker(store.Repositories().Bookings, store, time.Minute, 100, testLogger())
		require.NoError(t, w.processCompletions(context.Background()))

		saved, _ := store.GetBooking(booking.ID)
		assert.Equal(t, domain.BookingConfirmed, saved.Status)
	})
}
