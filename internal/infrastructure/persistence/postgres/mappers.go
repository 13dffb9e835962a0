package postgres

import (
	"github.com/mentorlink/booking-service/internal/domain"
)

func toDomainBooking(m BookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                 m.ID,
		StudentID:          m.StudentID,
		MentorID:           m.MentorID,
		SlotID:             m.SlotID,
		BookedStartTime:    m.BookedStartTime,
		BookedEndTime:      m.BookedEndTime,
		BookedFeeCents:     m.BookedFeeCents,
		BookedTimezone:     m.BookedTimezone,
		Status:             domain.BookingStatus(m.Status),
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		CheckoutSessionID:  m.CheckoutSessionID,
		PaymentIntentID:    m.PaymentIntentID,
		CancelledBy:        m.CancelledBy,
		CancelledAt:        m.CancelledAt,
		CancellationReason: m.CancellationReason,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) *BookingModel {
	return &BookingModel{
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
		PaymentIntentID:    b.PaymentIntentID,
		CancelledBy:        b.CancelledBy,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func toDomainSlot(m SlotModel) *domain.Slot {
	return &domain.Slot{
		ID:        m.ID,
		MentorID:  m.MentorID,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		FeeCents:  m.FeeCents,
		Timezone:  m.Timezone,
		Status:    domain.SlotStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toSlotModel(s *domain.Slot) *SlotModel {
	return &SlotModel{
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

func toDomainUser(m UserModel) *domain.User {
	u := &domain.User{
		ID:    m.ID,
		Email: m.Email,
		Role:  domain.Role(m.Role),
	}
	if m.PayoutAccountID != nil {
		u.PayoutAccountID = *m.PayoutAccountID
	}
	return u
}
