package domain

import (
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the availability state of a mentor's slot.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotCancelled   SlotStatus = "cancelled"
	SlotCompleted   SlotStatus = "completed"
	SlotUnavailable SlotStatus = "unavailable"
)

// Slot is a mentor-owned bookable time range. Slots are never deleted,
// only transitioned. The status setters write unconditionally: which
// transition is legal is the caller's policy, the ledger is a dumb,
// race-free store guarded by row locks.
type Slot struct {
	ID        uuid.UUID
	MentorID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	FeeCents  int64
	Timezone  string
	Status    SlotStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSlot validates and creates an available slot. The per-mentor overlap
// invariant is enforced at persistence time under a transaction.
func NewSlot(mentorID uuid.UUID, start, end time.Time, feeCents int64, timezone string) (*Slot, error) {
	if mentorID == uuid.Nil {
		return nil, NewMissingRequiredFieldError("mentor id")
	}
	if timezone == "" {
		return nil, NewMissingRequiredFieldError("timezone")
	}
	if !end.After(start) {
		return nil, NewInvalidSlotWindowError(start, end)
	}
	if start.Before(time.Now().UTC()) {
		return nil, NewSlotInPastError(start)
	}
	if feeCents <= 0 {
		return nil, NewInvalidAmountError(feeCents)
	}
	now := time.Now().UTC()
	return &Slot{
		ID:        uuid.New(),
		MentorID:  mentorID,
		StartTime: start,
		EndTime:   end,
		FeeCents:  feeCents,
		Timezone:  timezone,
		Status:    SlotAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Slot) setStatus(status SlotStatus) {
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
}

func (s *Slot) MarkBooked()      { s.setStatus(SlotBooked) }
func (s *Slot) MarkAvailable()   { s.setStatus(SlotAvailable) }
func (s *Slot) MarkUnavailable() { s.setStatus(SlotUnavailable) }
func (s *Slot) MarkCancelled()   { s.setStatus(SlotCancelled) }
func (s *Slot) MarkCompleted()   { s.setStatus(SlotCompleted) }

// Overlaps reports whether the slot's window intersects [start, end).
func (s *Slot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}
