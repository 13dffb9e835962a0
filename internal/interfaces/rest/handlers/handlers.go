// Package handlers wires the HTTP routes to the application services.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mentorlink/booking-service/internal/application/services"
	"github.com/mentorlink/booking-service/internal/config"
)

type Handlers struct {
	bookingService  *services.BookingService
	cancelService   *services.CancelService
	completeService *services.CompleteService
	queryService    *services.QueryService
	slotService     *services.SlotService
	webhookService  *services.WebhookService
	stripeCfg       config.StripeConfig
	logger          *slog.Logger
}

func NewHandlers(
	bookingService *services.BookingService,
	cancelService *services.CancelService,
	completeService *services.CompleteService,
	queryService *services.QueryService,
	slotService *services.SlotService,
	webhookService *services.WebhookService,
	stripeCfg config.StripeConfig,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		bookingService:  bookingService,
		cancelService:   cancelService,
		completeService: completeService,
		queryService:    queryService,
		slotService:     slotService,
		webhookService:  webhookService,
		stripeCfg:       stripeCfg,
		logger:          logger,
	}
}

// Register mounts all routes. Every route is authenticated except the
// webhook, which the provider signs instead.
func (h *Handlers) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	protected := func(fn http.HandlerFunc) http.Handler {
		return auth(fn)
	}

	mux.Handle("POST /api/v1/bookings", protected(h.CreateBooking))
	mux.Handle("GET /api/v1/bookings/status/{sessionID}", protected(h.GetBookingStatus))
	mux.Handle("POST /api/v1/bookings/{id}/cancel", protected(h.CancelBooking))
	mux.Handle("POST /api/v1/bookings/{id}/complete", protected(h.CompleteBooking))
	mux.Handle("GET /api/v1/students/bookings", protected(h.ListStudentBookings))
	mux.Handle("GET /api/v1/mentors/bookings", protected(h.ListMentorBookings))

	mux.Handle("POST /api/v1/mentors/slots", protected(h.CreateSlot))
	mux.Handle("GET /api/v1/mentors/slots", protected(h.ListOwnSlots))
	mux.Handle("POST /api/v1/mentors/slots/{id}/cancel", protected(h.CancelSlot))
	mux.Handle("GET /api/v1/mentors/{id}/slots", protected(h.ListMentorSlots))

	mux.HandleFunc("POST /api/v1/webhooks/stripe", h.StripeWebhook)
}
