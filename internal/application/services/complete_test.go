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

type CompleteServiceTestSuite struct {
	suite.Suite
	store   *services.MemStore
	service *services.CompleteService

	mentorID  uuid.UUID
	studentID uuid.UUID
}

func TestCompleteServiceSuite(t *testing.T) {
	suite.Run(t, new(CompleteServiceTestSuite))
}

func (suite *CompleteServiceTestSuite) SetupTest() {
	suite.store = services.NewMemStore()
	suite.service = services.NewCompleteService(suite.store, services.NopNotifier{}, testLogger())

	suite.studentID = seedStudent(suite.store)
	suite.mentorID = seedMentor(suite.store, "acct_mentor_1")
}

// seedEndedBooking builds a confirmed booking whose session window lies
// in the past, backdating the snapshot the way a finished session looks.
func (suite *CompleteServiceTestSuite) seedEndedBooking() (*domain.Booking, *domain.Slot) {
	slot := seedSlot(suite.T(), suite.store, suite.mentorID, 48*time.Hour, 10000)
	booking, err := domain.NewBooking(suite.studentID, slot)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), booking.Confirm("pi_test_123"))
	booking.BookedStartTime = time.Now().UTC().Add(-2 * time.Hour)
	booking.BookedEndTime = time.Now().UTC().Add(-time.Hour)
	slot.MarkBooked()
	suite.store.PutBooking(booking)
	suite.store.PutSlot(slot)
	return booking, slot
}

func (suite *CompleteServiceTestSuite) Test_Complete_AfterSessionEnd() {
	booking, slot := suite.seedEndedBooking()

	completed, err := suite.service.Complete(context.Background(), booking.ID, suite.mentorID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.BookingCompleted, completed.Status)

	saved, _ := suite.store.GetBooking(booking.ID)
	assert.Equal(suite.T(), domain.BookingCompleted, saved.Status)
	savedSlot, _ := suite.store.GetSlot(slot.ID)
	assert.Equal(suite.T(), domain.SlotCompleted, savedSlot.Status)
}

func (suite *CompleteServiceTestSuite) Test_Complete_EitherParticipantMayComplete() {
	booking, _ := suite.seedEndedBooking()

	_, err := suite.service.Complete(context.Background(), booking.ID, suite.studentID)

	require.NoError(suite.T(), err)
}

func (suite *CompleteServiceTestSuite) Test_Complete_BeforeSessionEndRejected() {
	booking, _ := suite.seedEndedBooking()
	booking.BookedStartTime = time.Now().UTC().Add(time.Hour)
	booking.BookedEndTime = time.Now().UTC().Add(2 * time.Hour)
	suite.store.PutBooking(booking)

	_, err := suite.service.Complete(context.Background(), booking.ID, suite.mentorID)

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeInvalidState, svcErr.Code)
}

func (suite *CompleteServiceTestSuite) Test_Complete_OutsiderForbidden() {
	booking, _ := suite.seedEndedBooking()

	_, err := suite.service.Complete(context.Background(), booking.ID, uuid.New())

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeForbidden, svcErr.Code)
}

func (suite *CompleteServiceTestSuite) Test_Complete_PendingBookingRejected() {
	slot := seedSlot(suite.T(), suite.store, suite.mentorID, 48*time.Hour, 10000)
	booking, err := domain.NewBooking(suite.studentID, slot)
	require.NoError(suite.T(), err)
	suite.store.PutBooking(booking)

	_, err = suite.service.Complete(context.Background(), booking.ID, suite.studentID)

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeInvalidState, svcErr.Code)
}

func (suite *CompleteServiceTestSuite) Test_Complete_TwiceRejected() {
	booking, _ := suite.seedEndedBooking()

	_, err := suite.service.Complete(context.Background(), booking.ID, suite.mentorID)
	require.NoError(suite.T(), err)

	_, err = suite.service.Complete(context.Background(), booking.ID, suite.mentorID)

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeInvalidState, svcErr.Code)
}
