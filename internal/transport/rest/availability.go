package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/service/availability"
)

type slotRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
	Notes     string    `json:"notes,omitempty"`
}

type slotResponse struct {
	ID          string    `json:"id"`
	AttendantID string    `json:"attendant_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Available   bool      `json:"available"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Server) publishSlot(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "publishSlot")

	attendantID, ok := urlUUID(r, "attendantID")
	if !ok {
		writeBadRequest(w, r, log, "invalid attendant id")
		return
	}

	var req slotRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeBadRequest(w, r, log, "failed to decode request body")
		return
	}

	slot, err := s.availability.PublishSlot(r.Context(), attendantID, availability.SlotInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Available: req.Available,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, log, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, toSlotResponse(slot))
}

func (s *Server) updateSlot(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "updateSlot")

	attendantID, ok := urlUUID(r, "attendantID")
	if !ok {
		writeBadRequest(w, r, log, "invalid attendant id")
		return
	}
	slotID, ok := urlUUID(r, "slotID")
	if !ok {
		writeBadRequest(w, r, log, "invalid slot id")
		return
	}

	var req slotRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeBadRequest(w, r, log, "failed to decode request body")
		return
	}

	slot, err := s.availability.UpdateSlot(r.Context(), attendantID, slotID, availability.SlotInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Available: req.Available,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, log, err)
		return
	}
	render.JSON(w, r, toSlotResponse(slot))
}

func (s *Server) deleteSlot(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "deleteSlot")

	attendantID, ok := urlUUID(r, "attendantID")
	if !ok {
		writeBadRequest(w, r, log, "invalid attendant id")
		return
	}
	slotID, ok := urlUUID(r, "slotID")
	if !ok {
		writeBadRequest(w, r, log, "invalid slot id")
		return
	}

	if err := s.availability.DeleteSlot(r.Context(), attendantID, slotID); err != nil {
		writeError(w, r, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSlots(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "listSlots")

	attendantID, ok := urlUUID(r, "attendantID")
	if !ok {
		writeBadRequest(w, r, log, "invalid attendant id")
		return
	}
	from, to, ok := queryWindow(r)
	if !ok {
		writeBadRequest(w, r, log, "from and to must be RFC3339 timestamps")
		return
	}

	slots, err := s.availability.ListSlots(r.Context(), attendantID, from, to)
	if err != nil {
		writeError(w, r, log, err)
		return
	}

	out := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toSlotResponse(slot))
	}
	render.JSON(w, r, map[string]any{"slots": out})
}

func (s *Server) findFreeSlot(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "findFreeSlot")

	attendantID, ok := urlUUID(r, "attendantID")
	if !ok {
		writeBadRequest(w, r, log, "invalid attendant id")
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeBadRequest(w, r, log, "start must be an RFC3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeBadRequest(w, r, log, "end must be an RFC3339 timestamp")
		return
	}

	slot, err := s.availability.FindFreeSlot(r.Context(), attendantID, start, end)
	if err != nil {
		writeError(w, r, log, err)
		return
	}
	render.JSON(w, r, toSlotResponse(slot))
}

func toSlotResponse(slot domain.AvailabilitySlot) slotResponse {
	return slotResponse{
		ID:          slot.ID.String(),
		AttendantID: slot.AttendantID.String(),
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		Available:   slot.Available,
		Notes:       slot.Notes,
		CreatedAt:   slot.CreatedAt,
		UpdatedAt:   slot.UpdatedAt,
	}
}
