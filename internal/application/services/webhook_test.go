package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/application/services"
	"github.com/mentorlink/booking-service/internal/domain"
)

type WebhookServiceTestSuite struct {
	suite.Suite
	store   *services.MemStore
	service *services.WebhookService

	mentorID  uuid.UUID
	studentID uuid.UUID
}

func TestWebhookServiceSuite(t *testing.T) {
	suite.Run(t, new(WebhookServiceTestSuite))
}

func (suite *WebhookServiceTestSuite) SetupTest() {
	suite.store = services.NewMemStore()
	suite.service = services.NewWebhookService(suite.store, services.NopNotifier{}, testLogger())

	suite.studentID = seedStudent(suite.store)
	suite.mentorID = seedMentor(suite.store, "acct_mentor_1")
}

// seedPendingBooking places an awaiting-payment booking and its still
// available slot in the store, mirroring the state left behind by a
// successful checkout-session creation.
func (suite *WebhookServiceTestSuite) seedPendingBooking() (*domain.Booking, *domain.Slot) {
	slot := seedSlot(suite.T(), suite.store, suite.mentorID, 48*time.Hour, 10000)
	booking, err := domain.NewBooking(suite.studentID, slot)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), booking.AttachCheckoutSession("cs_test_1"))
	suite.store.PutBooking(booking)
	return booking, slot
}

// ============================================================================
// HAPPY PATH TESTS
// ============================================================================

func (suite *WebhookServiceTestSuite) Test_HandleCheckoutCompleted_ConfirmsBookingAndBooksSlot() {
	booking, slot := suite.seedPendingBooking()

	err := suite.service.HandleCheckoutCompleted(context.Background(), services.CheckoutCompletedEvent{
		BookingID:       booking.ID,
		SlotID:          slot.ID,
		PaymentIntentID: "pi_webhook_1",
	})

	require.NoError(suite.T(), err)

	saved, ok := suite.store.GetBooking(booking.ID)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), domain.BookingConfirmed, saved.Status)
	assert.Equal(suite.T(), domain.PaymentPaid, saved.PaymentStatus)
	require.NotNil(suite.T(), saved.PaymentIntentID)
	assert.Equal(suite.T(), "pi_webhook_1", *saved.PaymentIntentID)

	savedSlot, ok := suite.store.GetSlot(slot.ID)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), domain.SlotBooked, savedSlot.Status)
}

// ============================================================================
// EDGE CASE TESTS
// ============================================================================

func (suite *WebhookServiceTestSuite) Test_HandleCheckoutCompleted_DuplicateDeliveryIsNoOp() {
	booking, slot := suite.seedPendingBooking()
	event := services.CheckoutCompletedEvent{
		BookingID:       booking.ID,
		SlotID:          slot.ID,
		PaymentIntentID: "pi_webhook_1",
	}

	require.NoError(suite.T(), suite.service.HandleCheckoutCompleted(context.Background(), event))
	afterFirst, _ := suite.store.GetBooking(booking.ID)

	// Same event again, and once more with a different intent id: the
	// first reconciliation must stick.
	require.NoError(suite.T(), suite.service.HandleCheckoutCompleted(context.Background(), event))
	event.PaymentIntentID = "pi_webhook_2"
	require.NoError(suite.T(), suite.service.HandleCheckoutCompleted(context.Background(), event))

	afterThird, ok := suite.store.GetBooking(booking.ID)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), afterFirst, afterThird)
	assert.Equal(suite.T(), "pi_webhook_1", *afterThird.PaymentIntentID)

	savedSlot, _ := suite.store.GetSlot(slot.ID)
	assert.Equal(suite.T(), domain.SlotBooked, savedSlot.Status)
}

func (suite *WebhookServiceTestSuite) Test_HandleCheckoutCompleted_SlotAlreadyBookedStillConfirms() {
	booking, slot := suite.seedPendingBooking()
	slot.MarkBooked()
	suite.store.PutSlot(slot)

	err := suite.service.HandleCheckoutCompleted(context.Background(), services.CheckoutCompletedEvent{
		BookingID:       booking.ID,
		SlotID:          slot.ID,
		PaymentIntentID: "pi_webhook_1",
	})

	require.NoError(suite.T(), err)

	saved, _ := suite.store.GetBooking(booking.ID)
	assert.Equal(suite.T(), domain.BookingConfirmed, saved.Status)

	savedSlot, _ := suite.store.GetSlot(slot.ID)
	assert.Equal(suite.T(), domain.SlotBooked, savedSlot.Status)
}

func (suite *WebhookServiceTestSuite) Test_HandleCheckoutCompleted_CancelledBookingNotResurrected() {
	booking, slot := suite.seedPendingBooking()
	require.NoError(suite.T(), booking.Expire())
	suite.store.PutBooking(booking)

	err := suite.service.HandleCheckoutCompleted(context.Background(), services.CheckoutCompletedEvent{
		BookingID:       booking.ID,
		SlotID:          slot.ID,
		PaymentIntentID: "pi_late",
	})

	require.NoError(suite.T(), err)

	saved, _ := suite.store.GetBooking(booking.ID)
	assert.Equal(suite.T(), domain.BookingCancelled, saved.Status)
	assert.Nil(suite.T(), saved.PaymentIntentID)

	savedSlot, _ := suite.store.GetSlot(slot.ID)
	assert.Equal(suite.T(), domain.SlotAvailable, savedSlot.Status)
}

// ============================================================================
// FAILURE RECOVERY TESTS
// ============================================================================

func (suite *WebhookServiceTestSuite) Test_HandleCheckoutCompleted_UnknownBooking() {
	_, slot := suite.seedPendingBooking()

	err := suite.service.HandleCheckoutCompleted(context.Background(), services.CheckoutCompletedEvent{
		BookingID:       uuid.New(),
		SlotID:          slot.ID,
		PaymentIntentID: "pi_webhook_1",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeNotFound, svcErr.Code)
}

func (suite *WebhookServiceTestSuite) Test_HandleCheckoutCompleted_UnknownSlot() {
	booking, _ := suite.seedPendingBooking()

	err := suite.service.HandleCheckoutCompleted(context.Background(), services.CheckoutCompletedEvent{
		BookingID:       booking.ID,
		SlotID:          uuid.New(),
		PaymentIntentID: "pi_webhook_1",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeNotFound, svcErr.Code)

	// Nothing was written: the booking stays pending.
	saved, _ := suite.store.GetBooking(booking.ID)
	assert.Equal(suite.T(), domain.BookingPendingPayment, saved.Status)
}
