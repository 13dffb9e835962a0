package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/application/services"
	"github.com/mentorlink/booking-service/internal/domain"
	"github.com/mentorlink/booking-service/internal/interfaces/rest"
	"github.com/mentorlink/booking-service/internal/interfaces/rest/middleware"
)

type createBookingRequest struct {
	SlotID uuid.UUID `json:"slot_id"`
}

type createBookingResponse struct {
	BookingID   uuid.UUID `json:"booking_id"`
	RedirectURL string    `json:"redirect_url"`
}

// CreateBooking books a slot for the authenticated student and returns
// the checkout redirect URL.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewForbiddenError(), h.logger)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	result, err := h.bookingService.Create(r.Context(), services.CreateBookingCommand{
		StudentID: userID,
		SlotID:    req.SlotID,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, createBookingResponse{
		BookingID:   result.BookingID,
		RedirectURL: result.RedirectURL,
	})
}

// GetBookingStatus resolves a booking from the checkout-session id the
// payment page redirects back with.
func (h *Handlers) GetBookingStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewForbiddenError(), h.logger)
		return
	}

	booking, err := h.queryService.FindByCheckoutSession(r.Context(), r.PathValue("sessionID"), userID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToAPIBooking(booking))
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type cancelBookingResponse struct {
	BookingID     uuid.UUID            `json:"booking_id"`
	Status        domain.BookingStatus `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	RefundCents   int64                `json:"refund_cents"`
	RefundID      string               `json:"refund_id,omitempty"`
}

// CancelBooking cancels a confirmed booking on behalf of either
// participant and reports the refund outcome.
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewForbiddenError(), h.logger)
		return
	}

	bookingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	var req cancelBookingRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
			return
		}
	}

	result, err := h.cancelService.Cancel(r.Context(), services.CancelBookingCommand{
		BookingID: bookingID,
		UserID:    userID,
		Reason:    req.Reason,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, cancelBookingResponse{
		BookingID:     bookingID,
		Status:        result.NewStatus,
		PaymentStatus: result.PaymentStatus,
		RefundCents:   result.RefundCents,
		RefundID:      result.RefundID,
	})
}

// CompleteBooking marks a confirmed booking as held after its window.
func (h *Handlers) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewForbiddenError(), h.logger)
		return
	}

	bookingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	booking, err := h.completeService.Complete(r.Context(), bookingID, userID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToAPIBooking(booking))
}

// ListStudentBookings lists the authenticated user's bookings as a
// student, newest first.
func (h *Handlers) ListStudentBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewForbiddenError(), h.logger)
		return
	}

	limit, offset := pagination(r)
	bookings, err := h.queryService.ListForStudent(r.Context(), userID, limit, offset)
	if err != nil {
		rest.WriteError(w, application.NewInternalError(err), h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToAPIBookings(bookings))
}

// ListMentorBookings lists the bookings the authenticated user has
// received as a mentor, newest first.
func (h *Handlers) ListMentorBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewForbiddenError(), h.logger)
		return
	}

	limit, offset := pagination(r)
	bookings, err := h.queryService.ListForMentor(r.Context(), userID, limit, offset)
	if err != nil {
		rest.WriteError(w, application.NewInternalError(err), h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToAPIBookings(bookings))
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, 100)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
