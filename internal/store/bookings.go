package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agendly/backend/internal/domain"
)

type BookingRepository interface {
	GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	ListBookings(ctx context.Context, attendantID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	ListLineItems(ctx context.Context, bookingID uuid.UUID) ([]domain.BookingLineItem, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus, finalPriceCents *int64) (domain.Booking, error)

	// InAttendantTx runs fn in one transaction serialized per attendant.
	// Everything fn persists commits together or not at all.
	InAttendantTx(ctx context.Context, attendantID uuid.UUID, fn func(ctx context.Context, tx ScheduleTx) error) error
}

// ScheduleTx is the transactional surface the schedulers write through.
type ScheduleTx interface {
	// HasConflict reports whether any non-cancelled booking for the
	// attendant overlaps the half-open interval [start, end).
	HasConflict(ctx context.Context, attendantID uuid.UUID, start, end time.Time) (bool, error)
	CreateBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	CreateLineItems(ctx context.Context, items []domain.BookingLineItem) ([]domain.BookingLineItem, error)
}

// CatalogRepository resolves the entities a booking request references.
type CatalogRepository interface {
	GetCustomer(ctx context.Context, customerID uuid.UUID) (domain.Customer, error)
	GetLocation(ctx context.Context, locationID uuid.UUID) (domain.Location, error)
	GetAttendant(ctx context.Context, attendantID uuid.UUID) (domain.Attendant, error)
	GetServices(ctx context.Context, serviceIDs []uuid.UUID) ([]domain.CatalogService, error)
}
