package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/application/services"
	"github.com/mentorlink/booking-service/internal/domain"
)

type SlotServiceTestSuite struct {
	suite.Suite
	store   *services.MemStore
	service *services.SlotService

	mentorID uuid.UUID
}

func TestSlotServiceSuite(t *testing.T) {
	suite.Run(t, new(SlotServiceTestSuite))
}

func (suite *SlotServiceTestSuite) SetupTest() {
	suite.store = services.NewMemStore()
	suite.service = services.NewSlotService(
		suite.store,
		suite.store.Repositories().Slots,
		testLogger(),
	)
	suite.mentorID = seedMentor(suite.store, "acct_mentor_1")
}

// ============================================================================
// HAPPY PATH TESTS
// ============================================================================

func (suite *SlotServiceTestSuite) Test_Create_Success() {
	start := time.Now().UTC().Add(48 * time.Hour)

	slot, err := suite.service.Create(context.Background(), services.CreateSlotCommand{
		MentorID:  suite.mentorID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		FeeCents:  7500,
		Timezone:  "Europe/Berlin",
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.SlotAvailable, slot.Status)

	saved, ok := suite.store.GetSlot(slot.ID)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), int64(7500), saved.FeeCents)
}

func (suite *SlotServiceTestSuite) Test_Create_BackToBackSlotsAllowed() {
	start := time.Now().UTC().Add(48 * time.Hour)

	_, err := suite.service.Create(context.Background(), services.CreateSlotCommand{
		MentorID:  suite.mentorID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		FeeCents:  5000,
		Timezone:  "UTC",
	})
	require.NoError(suite.T(), err)

	_, err = suite.service.Create(context.Background(), services.CreateSlotCommand{
		MentorID:  suite.mentorID,
		StartTime: start.Add(time.Hour),
		EndTime:   start.Add(2 * time.Hour),
		FeeCents:  5000,
		Timezone:  "UTC",
	})
	require.NoError(suite.T(), err)
}

func (suite *SlotServiceTestSuite) Test_Cancel_OwnAvailableSlot() {
	slot := seedSlot(suite.T(), suite.store, suite.mentorID, 48*time.Hour, 5000)

	cancelled, err := suite.service.Cancel(context.Background(), slot.ID, suite.mentorID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.SlotCancelled, cancelled.Status)

	saved, _ := suite.store.GetSlot(slot.ID)
	assert.Equal(suite.T(), domain.SlotCancelled, saved.Status)
}

// ============================================================================
// EDGE CASE TESTS
// ============================================================================

func (suite *SlotServiceTestSuite) Test_Create_OverlapRejected() {
	start := time.Now().UTC().Add(48 * time.Hour)

	_, err := suite.service.Create(context.Background(), services.CreateSlotCommand{
		MentorID:  suite.mentorID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		FeeCents:  5000,
		Timezone:  "UTC",
	})
	require.NoError(suite.T(), err)

	_, err = suite.service.Create(context.Background(), services.CreateSlotCommand{
		MentorID:  suite.mentorID,
		StartTime: start.Add(30 * time.Minute),
		EndTime:   start.Add(90 * time.Minute),
		FeeCents:  5000,
		Timezone:  "UTC",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeSlotOverlap, svcErr.Code)
}

func (suite *SlotServiceTestSuite) Test_Create_OtherMentorMayOverlap() {
	start := time.Now().UTC().Add(48 * time.Hour)
	otherMentor := seedMentor(suite.store, "acct_mentor_2")

	_, err := suite.service.Create(context.Background(), services.CreateSlotCommand{
		MentorID:  suite.mentorID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		FeeCents:  5000,
		Timezone:  "UTC",
	})
	require.NoError(suite.T(), err)

	_, err = suite.service.Create(context.Background(), services.CreateSlotCommand{
		MentorID:  otherMentor,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		FeeCents:  6000,
		Timezone:  "UTC",
	})
	require.NoError(suite.T(), err)
}

// exclusionSlotRepo fails inserts the way postgres reports a tripped
// overlap exclusion constraint.
type exclusionSlotRepo struct {
	application.SlotRepository
}

func (exclusionSlotRepo) Create(ctx context.Context, s *domain.Slot) error {
	return &pgconn.PgError{Code: "23P01", ConstraintName: "slots_no_overlap"}
}

type exclusionTxCoordinator struct {
	store *services.MemStore
}

func (c exclusionTxCoordinator) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos application.Repositories) error) error {
	return c.store.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		repos.Slots = exclusionSlotRepo{repos.Slots}
		return fn(ctx, repos)
	})
}

func (suite *SlotServiceTestSuite) Test_Create_LostInsertRaceSurfacesAsOverlap() {
	// A rival create can slip between HasOverlap and the insert; the
	// database constraint rejects the insert and the caller should see
	// the same overlap error as the in-transaction check produces.
	service := services.NewSlotService(
		exclusionTxCoordinator{store: suite.store},
		suite.store.Repositories().Slots,
		testLogger(),
	)
	start := time.Now().UTC().Add(48 * time.Hour)

	_, err := service.Create(context.Background(), services.CreateSlotCommand{
		MentorID:  suite.mentorID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		FeeCents:  5000,
		Timezone:  "UTC",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeSlotOverlap, svcErr.Code)
}

func (suite *SlotServiceTestSuite) Test_Create_InvalidWindowRejected() {
	start := time.Now().UTC().Add(48 * time.Hour)

	_, err := suite.service.Create(context.Background(), services.CreateSlotCommand{
		MentorID:  suite.mentorID,
		StartTime: start.Add(time.Hour),
		EndTime:   start,
		FeeCents:  5000,
		Timezone:  "UTC",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeInvalidInput, svcErr.Code)
}

func (suite *SlotServiceTestSuite) Test_Cancel_ForeignSlotForbidden() {
	slot := seedSlot(suite.T(), suite.store, suite.mentorID, 48*time.Hour, 5000)

	_, err := suite.service.Cancel(context.Background(), slot.ID, uuid.New())

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeForbidden, svcErr.Code)

	saved, _ := suite.store.GetSlot(slot.ID)
	assert.Equal(suite.T(), domain.SlotAvailable, saved.Status)
}

func (suite *SlotServiceTestSuite) Test_Cancel_BookedSlotRejected() {
	slot := seedSlot(suite.T(), suite.store, suite.mentorID, 48*time.Hour, 5000)
	slot.MarkBooked()
	suite.store.PutSlot(slot)

	_, err := suite.service.Cancel(context.Background(), slot.ID, suite.mentorID)

	svcErr, ok := application.IsServiceError(err)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), application.ErrCodeInvalidState, svcErr.Code)
}

// ============================================================================
// LISTING TESTS
// ============================================================================

func (suite *SlotServiceTestSuite) Test_ListAvailable_FiltersByStatus() {
	open := seedSlot(suite.T(), suite.store, suite.mentorID, 48*time.Hour, 5000)
	taken := seedSlot(suite.T(), suite.store, suite.mentorID, 72*time.Hour, 5000)
	taken.MarkBooked()
	suite.store.PutSlot(taken)

	available, err := suite.service.ListAvailable(context.Background(), suite.mentorID)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), available, 1)
	assert.Equal(suite.T(), open.ID, available[0].ID)

	all, err := suite.service.ListForMentor(context.Background(), suite.mentorID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 2)
}
