package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/service/scheduling"
)

type serviceSelectionRequest struct {
	ServiceID      string `json:"service_id"`
	UnitPriceCents *int64 `json:"unit_price_cents,omitempty"`
	Quantity       int    `json:"quantity,omitempty"`
}

type createBookingRequest struct {
	CustomerID  string                    `json:"customer_id"`
	LocationID  string                    `json:"location_id"`
	AttendantID string                    `json:"attendant_id"`
	StartTime   time.Time                 `json:"start_time"`
	Notes       string                    `json:"notes,omitempty"`
	Services    []serviceSelectionRequest `json:"services"`
}

type recurrenceRequest struct {
	Cadence         string `json:"cadence"`
	Weekdays        []int  `json:"weekdays,omitempty"`
	Termination     string `json:"termination"`
	EndDate         string `json:"end_date,omitempty"`
	OccurrenceCount *int   `json:"occurrence_count,omitempty"`
	Interval        int    `json:"interval,omitempty"`
}

type createRecurringRequest struct {
	createBookingRequest
	Recurrence recurrenceRequest `json:"recurrence"`
}

type lineItemResponse struct {
	ID             string `json:"id"`
	ServiceID      string `json:"service_id"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	TotalCents     int64  `json:"total_cents"`
	Description    string `json:"description,omitempty"`
}

type bookingResponse struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customer_id"`
	LocationID      string             `json:"location_id"`
	AttendantID     string             `json:"attendant_id"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         time.Time          `json:"end_time"`
	Notes           string             `json:"notes,omitempty"`
	TotalPriceCents int64              `json:"total_price_cents"`
	FinalPriceCents *int64             `json:"final_price_cents,omitempty"`
	Status          string             `json:"status"`
	IsRecurring     bool               `json:"is_recurring"`
	SeriesID        *string            `json:"series_id,omitempty"`
	OriginBookingID *string            `json:"origin_booking_id,omitempty"`
	LineItems       []lineItemResponse `json:"line_items,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type completeBookingRequest struct {
	FinalPriceCents int64 `json:"final_price_cents"`
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "createBooking")

	var req createBookingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeBadRequest(w, r, log, "failed to decode request body")
		return
	}

	in, ok := req.toInput(w, r, log)
	if !ok {
		return
	}

	booking, err := s.scheduling.ScheduleOne(r.Context(), in)
	if err != nil {
		writeError(w, r, log, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, toBookingResponse(booking))
}

func (s *Server) createRecurringSeries(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "createRecurringSeries")

	var req createRecurringRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeBadRequest(w, r, log, "failed to decode request body")
		return
	}

	in, ok := req.createBookingRequest.toInput(w, r, log)
	if !ok {
		return
	}

	spec, err := req.Recurrence.toSpec()
	if err != nil {
		writeBadRequest(w, r, log, err.Error())
		return
	}

	bookings, err := s.scheduling.ScheduleSeries(r.Context(), in, spec)
	if err != nil {
		writeError(w, r, log, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, map[string]any{"bookings": out})
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "getBooking")

	bookingID, ok := urlUUID(r, "bookingID")
	if !ok {
		writeBadRequest(w, r, log, "invalid booking id")
		return
	}

	booking, err := s.scheduling.GetBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, r, log, err)
		return
	}
	render.JSON(w, r, toBookingResponse(booking))
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "listBookings")

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

	bookings, err := s.scheduling.ListBookings(r.Context(), attendantID, from, to)
	if err != nil {
		writeError(w, r, log, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	render.JSON(w, r, map[string]any{"bookings": out})
}

func (s *Server) confirmBooking(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "confirmBooking", s.scheduling.Confirm)
}

func (s *Server) cancelBooking(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "cancelBooking", s.scheduling.Cancel)
}

func (s *Server) completeBooking(w http.ResponseWriter, r *http.Request) {
	log := s.handlerLog(r, "completeBooking")

	bookingID, ok := urlUUID(r, "bookingID")
	if !ok {
		writeBadRequest(w, r, log, "invalid booking id")
		return
	}

	var req completeBookingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeBadRequest(w, r, log, "failed to decode request body")
		return
	}

	booking, err := s.scheduling.Complete(r.Context(), bookingID, req.FinalPriceCents)
	if err != nil {
		writeError(w, r, log, err)
		return
	}
	render.JSON(w, r, toBookingResponse(booking))
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, handler string, fn func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)) {
	log := s.handlerLog(r, handler)

	bookingID, ok := urlUUID(r, "bookingID")
	if !ok {
		writeBadRequest(w, r, log, "invalid booking id")
		return
	}

	booking, err := fn(r.Context(), bookingID)
	if err != nil {
		writeError(w, r, log, err)
		return
	}
	render.JSON(w, r, toBookingResponse(booking))
}

func (req createBookingRequest) toInput(w http.ResponseWriter, r *http.Request, log *slog.Logger) (scheduling.ScheduleInput, bool) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		writeBadRequest(w, r, log, "invalid customer_id")
		return scheduling.ScheduleInput{}, false
	}
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		writeBadRequest(w, r, log, "invalid location_id")
		return scheduling.ScheduleInput{}, false
	}
	attendantID, err := uuid.Parse(req.AttendantID)
	if err != nil {
		writeBadRequest(w, r, log, "invalid attendant_id")
		return scheduling.ScheduleInput{}, false
	}
	if req.StartTime.IsZero() {
		writeBadRequest(w, r, log, "start_time is required")
		return scheduling.ScheduleInput{}, false
	}

	selections := make([]scheduling.ServiceSelection, 0, len(req.Services))
	for _, svc := range req.Services {
		serviceID, err := uuid.Parse(svc.ServiceID)
		if err != nil {
			writeBadRequest(w, r, log, "invalid service_id")
			return scheduling.ScheduleInput{}, false
		}
		selections = append(selections, scheduling.ServiceSelection{
			ServiceID:      serviceID,
			UnitPriceCents: svc.UnitPriceCents,
			Quantity:       svc.Quantity,
		})
	}

	return scheduling.ScheduleInput{
		CustomerID:  customerID,
		LocationID:  locationID,
		AttendantID: attendantID,
		StartTime:   req.StartTime,
		Notes:       req.Notes,
		Selections:  selections,
	}, true
}

func (req recurrenceRequest) toSpec() (domain.RecurrenceSpec, error) {
	spec := domain.RecurrenceSpec{
		Recurring:       true,
		Cadence:         domain.RecurrenceCadence(req.Cadence),
		Weekdays:        req.Weekdays,
		Termination:     domain.RecurrenceTermination(req.Termination),
		OccurrenceCount: req.OccurrenceCount,
		Interval:        req.Interval,
	}
	if req.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return domain.RecurrenceSpec{}, err
		}
		spec.EndDate = &endDate
	}
	return spec, nil
}

func toBookingResponse(b domain.Booking) bookingResponse {
	out := bookingResponse{
		ID:              b.ID.String(),
		CustomerID:      b.CustomerID.String(),
		LocationID:      b.LocationID.String(),
		AttendantID:     b.AttendantID.String(),
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Notes:           b.Notes,
		TotalPriceCents: b.TotalPriceCents,
		FinalPriceCents: b.FinalPriceCents,
		Status:          string(b.Status),
		IsRecurring:     b.IsRecurring,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.SeriesID != nil {
		id := b.SeriesID.String()
		out.SeriesID = &id
	}
	if b.OriginBookingID != nil {
		id := b.OriginBookingID.String()
		out.OriginBookingID = &id
	}
	for _, li := range b.LineItems {
		out.LineItems = append(out.LineItems, lineItemResponse{
			ID:             li.ID.String(),
			ServiceID:      li.ServiceID.String(),
			UnitPriceCents: li.UnitPriceCents,
			Quantity:       li.Quantity,
			TotalCents:     li.TotalCents,
			Description:    li.Description,
		})
	}
	return out
}
