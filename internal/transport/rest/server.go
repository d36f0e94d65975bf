package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/service/availability"
	"agendly/backend/internal/service/scheduling"
)

type schedulingService interface {
	ScheduleOne(ctx context.Context, in scheduling.ScheduleInput) (domain.Booking, error)
	ScheduleSeries(ctx context.Context, in scheduling.ScheduleInput, spec domain.RecurrenceSpec) ([]domain.Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	ListBookings(ctx context.Context, attendantID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	Confirm(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	Complete(ctx context.Context, bookingID uuid.UUID, finalPriceCents int64) (domain.Booking, error)
}

type availabilityService interface {
	PublishSlot(ctx context.Context, attendantID uuid.UUID, in availability.SlotInput) (domain.AvailabilitySlot, error)
	UpdateSlot(ctx context.Context, attendantID, slotID uuid.UUID, in availability.SlotInput) (domain.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, attendantID, slotID uuid.UUID) error
	ListSlots(ctx context.Context, attendantID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.AvailabilitySlot, error)
	FindFreeSlot(ctx context.Context, attendantID uuid.UUID, start, end time.Time) (domain.AvailabilitySlot, error)
}

type Server struct {
	scheduling   schedulingService
	availability availabilityService
	log          *slog.Logger
}

func NewServer(scheduling schedulingService, availability availabilityService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		scheduling:   scheduling,
		availability: availability,
		log:          log.With(slog.String("component", "rest")),
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", s.createBooking)
			r.Post("/recurring", s.createRecurringSeries)
			r.Route("/{bookingID}", func(r chi.Router) {
				r.Get("/", s.getBooking)
				r.Post("/confirm", s.confirmBooking)
				r.Post("/cancel", s.cancelBooking)
				r.Post("/complete", s.completeBooking)
			})
		})

		r.Route("/attendants/{attendantID}", func(r chi.Router) {
			r.Get("/bookings", s.listBookings)
			r.Route("/slots", func(r chi.Router) {
				r.Post("/", s.publishSlot)
				r.Get("/", s.listSlots)
				r.Get("/free", s.findFreeSlot)
				r.Put("/{slotID}", s.updateSlot)
				r.Delete("/{slotID}", s.deleteSlot)
			})
		})
	})

	return r
}

func (s *Server) handlerLog(r *http.Request, handler string) *slog.Logger {
	return s.log.With(
		slog.String("handler", handler),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func urlUUID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func queryWindow(r *http.Request) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
