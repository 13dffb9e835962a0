package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/application/services"
	"github.com/mentorlink/booking-service/internal/infrastructure/stripe"
	"github.com/mentorlink/booking-service/internal/interfaces/rest"
)

const maxWebhookBodyBytes = 64 * 1024

// StripeWebhook receives provider events. Delivery is at-least-once, so
// every ack decision here is about retry behavior: a 2xx stops
// redelivery, anything else makes the provider try again. Events we can
// never act on (wrong type, missing correlation metadata) are acked so
// they stop coming; anything that might succeed on a later delivery,
// including a booking row not yet visible, is not.
func (h *Handlers) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	event, err := stripe.ConstructEvent(
		payload,
		r.Header.Get("Stripe-Signature"),
		h.stripeCfg.WebhookSecret,
		h.stripeCfg.WebhookTolerance,
	)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		rest.WriteError(w, &application.ServiceError{
			Code:       application.ErrCodeWebhookSignatureInvalid,
			Message:    "webhook signature verification failed",
			HTTPStatus: http.StatusBadRequest,
		}, h.logger)
		return
	}

	if event.Type != stripe.EventCheckoutSessionCompleted {
		h.logger.Debug("ignoring webhook event", "type", event.Type, "event_id", event.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	var session stripe.CheckoutSessionObject
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		h.logger.Warn("webhook event payload malformed", "event_id", event.ID, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	bookingID, err := uuid.Parse(session.Metadata["booking_id"])
	if err != nil {
		h.logger.Warn("webhook session missing booking_id metadata",
			"event_id", event.ID,
			"session_id", session.ID,
		)
		w.WriteHeader(http.StatusOK)
		return
	}
	slotID, err := uuid.Parse(session.Metadata["slot_id"])
	if err != nil {
		h.logger.Warn("webhook session missing slot_id metadata",
			"event_id", event.ID,
			"session_id", session.ID,
		)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Unknown booking or slot answers 404 and the provider redelivers.
	// The checkout session is opened while the booking transaction is
	// still uncommitted, so the completion event can legitimately arrive
	// before the booking row is visible; retrying bridges that window.
	err = h.webhookService.HandleCheckoutCompleted(r.Context(), services.CheckoutCompletedEvent{
		BookingID:       bookingID,
		SlotID:          slotID,
		PaymentIntentID: session.PaymentIntent,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusOK)
}
