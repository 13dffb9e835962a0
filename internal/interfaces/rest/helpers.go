package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/domain"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// WriteJSON writes a success envelope.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// Booking is the wire representation of a booking.
type Booking struct {
	ID                 uuid.UUID  `json:"id"`
	StudentID          uuid.UUID  `json:"student_id"`
	MentorID           uuid.UUID  `json:"mentor_id"`
	SlotID             *uuid.UUID `json:"slot_id,omitempty"`
	BookedStartTime    time.Time  `json:"booked_start_time"`
	BookedEndTime      time.Time  `json:"booked_end_time"`
	BookedFeeCents     int64      `json:"booked_fee_cents"`
	BookedTimezone     string     `json:"booked_timezone"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"payment_status"`
	CheckoutSessionID  *string    `json:"checkout_session_id,omitempty"`
	CancelledBy        *uuid.UUID `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func ToAPIBooking(b *domain.Booking) Booking {
	return Booking{
		ID:                 b.ID,
		StudentID:          b.StudentID,
		MentorID:           b.MentorID,
		SlotID:             b.SlotID,
		BookedStartTime:    b.BookedStartTime,
		BookedEndTime:      b.BookedEndTime,
		BookedFeeCents:     b.BookedFeeCents,
		BookedTimezone:     b.BookedTimezone,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		CheckoutSessionID:  b.CheckoutSessionID,
		CancelledBy:        b.CancelledBy,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func ToAPIBookings(bookings []*domain.Booking) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ToAPIBooking(b))
	}
	return out
}

// Slot is the wire representation of a mentor's slot.
type Slot struct {
	ID        uuid.UUID `json:"id"`
	MentorID  uuid.UUID `json:"mentor_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	FeeCents  int64     `json:"fee_cents"`
	Timezone  string    `json:"timezone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToAPISlot(s *domain.Slot) Slot {
	return Slot{
		ID:        s.ID,
		MentorID:  s.MentorID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		FeeCents:  s.FeeCents,
		Timezone:  s.Timezone,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func ToAPISlots(slots []*domain.Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, ToAPISlot(s))
	}
	return out
}
