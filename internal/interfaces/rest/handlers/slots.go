package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/application"
	"github.com/mentorlink/booking-service/internal/application/services"
	"github.com/mentorlink/booking-service/internal/interfaces/rest"
	"github.com/mentorlink/booking-service/internal/interfaces/rest/middleware"
)

type createSlotRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	FeeCents  int64     `json:"fee_cents"`
	Timezone  string    `json:"timezone"`
}

// CreateSlot opens a new bookable window for the authenticated mentor.
func (h *Handlers) CreateSlot(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewForbiddenError(), h.logger)
		return
	}

	var req createSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	slot, err := h.slotService.Create(r.Context(), services.CreateSlotCommand{
		MentorID:  userID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		FeeCents:  req.FeeCents,
		Timezone:  req.Timezone,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToAPISlot(slot))
}

// ListOwnSlots lists every slot the authenticated mentor owns.
func (h *Handlers) ListOwnSlots(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewForbiddenError(), h.logger)
		return
	}

	slots, err := h.slotService.ListForMentor(r.Context(), userID)
	if err != nil {
		rest.WriteError(w, application.NewInternalError(err), h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToAPISlots(slots))
}

// ListMentorSlots is the browsing view: a mentor's open future slots.
func (h *Handlers) ListMentorSlots(w http.ResponseWriter, r *http.Request) {
	mentorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	slots, err := h.slotService.ListAvailable(r.Context(), mentorID)
	if err != nil {
		rest.WriteError(w, application.NewInternalError(err), h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToAPISlots(slots))
}

// CancelSlot withdraws an available slot owned by the mentor.
func (h *Handlers) CancelSlot(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewForbiddenError(), h.logger)
		return
	}

	slotID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	slot, err := h.slotService.Cancel(r.Context(), slotID, userID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToAPISlot(slot))
}
