package postgres

import (
	"time"

	"github.com/google/uuid"
)

// BookingModel mirrors the bookings table row.
type BookingModel struct {
	ID        uuid.UUID
	StudentID uuid.UUID
	MentorID  uuid.UUID
	SlotID    *uuid.UUID

	BookedStartTime time.Time
	BookedEndTime   time.Time
	BookedFeeCents  int64
	BookedTimezone  string

	Status        string
	PaymentStatus string

	CheckoutSessionID *string
	PaymentIntentID   *string

	CancelledBy        *uuid.UUID
	CancelledAt        *time.Time
	CancellationReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotModel mirrors the slots table row.
type SlotModel struct {
	ID        uuid.UUID
	MentorID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	FeeCents  int64
	Timezone  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserModel mirrors the account fields this service reads.
type UserModel struct {
	ID              uuid.UUID
	Email           string
	Role            string
	PayoutAccountID *string
}
