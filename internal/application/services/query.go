package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/domain"
)

// QueryService serves read-only booking lookups.
type QueryService struct {
	bookings application.BookingRepository
}

func NewQueryService(bookings application.BookingRepository) *QueryService {
	return &QueryService{bookings: bookings}
}

// FindByCheckoutSession resolves a booking from the checkout-session id
// the client carries back from the payment page. Only the booking's
// student or mentor may see it.
func (s *QueryService) FindByCheckoutSession(ctx context.Context, sessionID string, userID uuid.UUID) (*domain.Booking, error) {
	if sessionID == "" {
		return nil, application.NewInvalidInputError(domain.NewMissingRequiredFieldError("session id"))
	}
	booking, err := s.bookings.FindByCheckoutSessionID(ctx, sessionID)
	if err != nil {
		return nil, application.NewNotFoundError("booking")
	}
	if !booking.IsParticipant(userID) {
		return nil, application.NewForbiddenError()
	}
	return booking, nil
}

// ListForStudent returns the student's bookings, newest first.
func (s *QueryService) ListForStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	return s.bookings.FindByStudentID(ctx, studentID, limit, offset)
}

// ListForMentor returns the bookings received by a mentor, newest first.
func (s *QueryService) ListForMentor(ctx context.Context, mentorID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	return s.bookings.FindByMentorID(ctx, mentorID, limit, offset)
}
