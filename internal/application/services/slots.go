package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/domain"
	"github.com/mentorlink/booking-service/internal/infrastructure/persistence"
)

// SlotService manages a mentor's bookable windows.
type SlotService struct {
	tc     application.TransactionCoordinator
	slots  application.SlotRepository
	logger *slog.Logger
}

func NewSlotService(
	tc application.TransactionCoordinator,
	slots application.SlotRepository,
	logger *slog.Logger,
) *SlotService {
	return &SlotService{
		tc:     tc,
		slots:  slots,
		logger: logger,
	}
}

// Create opens a new available slot. The no-overlap invariant per mentor
// is checked inside the transaction; the slots table additionally
// carries an exclusion constraint as a backstop against writers that
// bypass this path.
func (s *SlotService) Create(ctx context.Context, cmd CreateSlotCommand) (*domain.Slot, error) {
	slot, err := domain.NewSlot(cmd.MentorID, cmd.StartTime, cmd.EndTime, cmd.FeeCents, cmd.Timezone)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	err = s.tc.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		overlaps, err := repos.Slots.HasOverlap(ctx, cmd.MentorID, cmd.StartTime, cmd.EndTime)
		if err != nil {
			return application.NewInternalError(err)
		}
		if overlaps {
			return application.NewSlotOverlapError()
		}
		if err := repos.Slots.Create(ctx, slot); err != nil {
			// Two concurrent creates can both pass HasOverlap; the
			// constraint catches the loser at insert time.
			if persistence.IsExclusionViolation(err) {
				return application.NewSlotOverlapError()
			}
			return application.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "slot created",
		"slot_id", slot.ID,
		"mentor_id", slot.MentorID,
		"start_time", slot.StartTime,
	)
	return slot, nil
}

// Cancel withdraws a mentor's own slot that is still available. A booked
// slot cannot be withdrawn here; the mentor cancels the booking instead,
// which routes through the refund policy.
func (s *SlotService) Cancel(ctx context.Context, slotID, mentorID uuid.UUID) (*domain.Slot, error) {
	var cancelled *domain.Slot

	err := s.tc.WithTransaction(ctx, func(ctx context.Context, repos application.Repositories) error {
		slot, err := repos.Slots.FindByIDForUpdate(ctx, slotID)
		if err != nil {
			return application.NewNotFoundError("slot")
		}
		if slot.MentorID != mentorID {
			return application.NewForbiddenError()
		}
		if slot.Status != domain.SlotAvailable {
			return application.NewInvalidStateError(
				domain.NewInvalidStateError(string(slot.Status), string(domain.SlotAvailable)))
		}
		slot.MarkCancelled()
		if err := repos.Slots.Update(ctx, slot); err != nil {
			return application.NewInternalError(err)
		}
		cancelled = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "slot cancelled", "slot_id", slotID, "mentor_id", mentorID)
	return cancelled, nil
}

// ListForMentor returns every slot the mentor owns.
func (s *SlotService) ListForMentor(ctx context.Context, mentorID uuid.UUID) ([]*domain.Slot, error) {
	return s.slots.FindByMentorID(ctx, mentorID)
}

// ListAvailable returns a mentor's slots that are open for booking.
func (s *SlotService) ListAvailable(ctx context.Context, mentorID uuid.UUID) ([]*domain.Slot, error) {
	return s.slots.FindAvailableByMentorID(ctx, mentorID)
}
