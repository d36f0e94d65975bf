package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a scheduled occupation of one attendant's time for one
// customer at one location. Prices are integer cents.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID              uuid.UUID     `bun:"id,pk,type:uuid"`
	CustomerID      uuid.UUID     `bun:"customer_id,notnull,type:uuid"`
	LocationID      uuid.UUID     `bun:"location_id,notnull,type:uuid"`
	AttendantID     uuid.UUID     `bun:"attendant_id,notnull,type:uuid"`
	StartTime       time.Time     `bun:"start_time,notnull"`
	EndTime         time.Time     `bun:"end_time,notnull"`
	Notes           string        `bun:"notes"`
	TotalPriceCents int64         `bun:"total_price_cents,notnull"`
	FinalPriceCents *int64        `bun:"final_price_cents"`
	Status          BookingStatus `bun:"status,notnull"`
	IsRecurring     bool          `bun:"is_recurring,notnull"`
	SeriesID        *uuid.UUID    `bun:"series_id,type:uuid"`
	OriginBookingID *uuid.UUID    `bun:"origin_booking_id,type:uuid"`
	CreatedAt       time.Time     `bun:"created_at,notnull"`
	UpdatedAt       time.Time     `bun:"updated_at,notnull"`

	LineItems []BookingLineItem `bun:"-"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}

// Confirm moves a scheduled booking to confirmed.
func (b *Booking) Confirm() error {
	switch b.Status {
	case BookingStatusScheduled:
		b.Status = BookingStatusConfirmed
		return nil
	case BookingStatusConfirmed:
		return NewBusinessError("booking is already confirmed")
	case BookingStatusCompleted:
		return NewBusinessError("booking is already completed")
	case BookingStatusCancelled:
		return NewBusinessError("booking is cancelled")
	default:
		return NewBusinessError(fmt.Sprintf("unknown booking status %q", b.Status))
	}
}

// Complete records the final price and moves the booking to completed.
// Completed is terminal.
func (b *Booking) Complete(finalPriceCents int64) error {
	if finalPriceCents <= 0 {
		return NewBusinessError("final price must be greater than zero")
	}
	switch b.Status {
	case BookingStatusScheduled, BookingStatusConfirmed:
		b.Status = BookingStatusCompleted
		b.FinalPriceCents = &finalPriceCents
		return nil
	case BookingStatusCompleted:
		return NewBusinessError("booking is already completed")
	case BookingStatusCancelled:
		return NewBusinessError("booking is cancelled")
	default:
		return NewBusinessError(fmt.Sprintf("unknown booking status %q", b.Status))
	}
}

// Cancel moves a non-terminal booking to cancelled. Cancelled is terminal.
func (b *Booking) Cancel() error {
	switch b.Status {
	case BookingStatusScheduled, BookingStatusConfirmed:
		b.Status = BookingStatusCancelled
		return nil
	case BookingStatusCompleted:
		return NewBusinessError("booking is already completed")
	case BookingStatusCancelled:
		return NewBusinessError("booking is already cancelled")
	default:
		return NewBusinessError(fmt.Sprintf("unknown booking status %q", b.Status))
	}
}

// BookingLineItem is one service rendered within a booking. It is owned
// exclusively by its booking and created and destroyed with it.
type BookingLineItem struct {
	bun.BaseModel `bun:"table:booking_line_items"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"`
	BookingID      uuid.UUID `bun:"booking_id,notnull,type:uuid"`
	ServiceID      uuid.UUID `bun:"service_id,notnull,type:uuid"`
	UnitPriceCents int64     `bun:"unit_price_cents,notnull"`
	Quantity       int       `bun:"quantity,notnull"`
	TotalCents     int64     `bun:"total_cents,notnull"`
	Description    string    `bun:"description"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
	UpdatedAt      time.Time `bun:"updated_at,notnull"`
}

func (li *BookingLineItem) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if li.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			li.ID = id
		}
		if li.CreatedAt.IsZero() {
			li.CreatedAt = now
		}
		if li.UpdatedAt.IsZero() {
			li.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		li.UpdatedAt = now
	}
	return nil
}
