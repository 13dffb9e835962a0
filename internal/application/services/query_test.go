package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/application/services"
	"github.com/mentorlink/booking-service/internal/domain"
)

func TestQueryService_FindByCheckoutSession(t *testing.T) {
	store := services.NewMemStore()
	studentID := seedStudent(store)
	mentorID := seedMentor(store, "acct_mentor_1")
	slot := seedSlot(t, store, mentorID, 48*time.Hour, 10000)

	booking, err := domain.NewBooking(studentID, slot)
	require.NoError(t, err)
	require.NoError(t, booking.AttachCheckoutSession("cs_test_lookup"))
	store.PutBooking(booking)

	service := services.NewQueryService(store.Repositories().Bookings)

	t.Run("participant resolves the booking", func(t *testing.T) {
		for _, userID := range []uuid.UUID{studentID, mentorID} {
			found, err := service.FindByCheckoutSession(context.Background(), "cs_test_lookup", userID)

			require.NoError(t, err)
			assert.Equal(t, booking.ID, found.ID)
		}
	})

	t.Run("outsider is rejected", func(t *testing.T) {
		_, err := service.FindByCheckoutSession(context.Background(), "cs_test_lookup", uuid.New())

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeForbidden, svcErr.Code)
	})

	t.Run("unknown session id", func(t *testing.T) {
		_, err := service.FindByCheckoutSession(context.Background(), "cs_missing", studentID)

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeNotFound, svcErr.Code)
	})

	t.Run("empty session id", func(t *testing.T) {
		_, err := service.FindByCheckoutSession(context.Background(), "", studentID)

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeInvalidInput, svcErr.Code)
	})
}
