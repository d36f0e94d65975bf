package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	return uuid.MustParse(s)
}

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		name       string
		status     BookingStatus
		transition func(b *Booking) error
		wantStatus BookingStatus
		wantErr    string
	}{
		{
			name:       "confirm scheduled",
			status:     BookingStatusScheduled,
			transition: func(b *Booking) error { return b.Confirm() },
			wantStatus: BookingStatusConfirmed,
		},
		{
			name:       "confirm twice",
			status:     BookingStatusConfirmed,
			transition: func(b *Booking) error { return b.Confirm() },
			wantErr:    "booking is already confirmed",
		},
		{
			name:       "confirm cancelled",
			status:     BookingStatusCancelled,
			transition: func(b *Booking) error { return b.Confirm() },
			wantErr:    "booking is cancelled",
		},
		{
			name:       "complete scheduled",
			status:     BookingStatusScheduled,
			transition: func(b *Booking) error { return b.Complete(5000) },
			wantStatus: BookingStatusCompleted,
		},
		{
			name:       "complete confirmed",
			status:     BookingStatusConfirmed,
			transition: func(b *Booking) error { return b.Complete(5000) },
			wantStatus: BookingStatusCompleted,
		},
		{
			name:       "complete twice",
			status:     BookingStatusCompleted,
			transition: func(b *Booking) error { return b.Complete(5000) },
			wantErr:    "booking is already completed",
		},
		{
			name:       "complete cancelled",
			status:     BookingStatusCancelled,
			transition: func(b *Booking) error { return b.Complete(5000) },
			wantErr:    "booking is cancelled",
		},
		{
			name:       "complete with zero final price",
			status:     BookingStatusConfirmed,
			transition: func(b *Booking) error { return b.Complete(0) },
			wantErr:    "final price must be greater than zero",
		},
		{
			name:       "complete with negative final price",
			status:     BookingStatusConfirmed,
			transition: func(b *Booking) error { return b.Complete(-100) },
			wantErr:    "final price must be greater than zero",
		},
		{
			name:       "cancel scheduled",
			status:     BookingStatusScheduled,
			transition: func(b *Booking) error { return b.Cancel() },
			wantStatus: BookingStatusCancelled,
		},
		{
			name:       "cancel confirmed",
			status:     BookingStatusConfirmed,
			transition: func(b *Booking) error { return b.Cancel() },
			wantStatus: BookingStatusCancelled,
		},
		{
			name:       "cancel completed",
			status:     BookingStatusCompleted,
			transition: func(b *Booking) error { return b.Cancel() },
			wantErr:    "booking is already completed",
		},
		{
			name:       "cancel twice",
			status:     BookingStatusCancelled,
			transition: func(b *Booking) error { return b.Cancel() },
			wantErr:    "booking is already cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Booking{Status: tt.status}
			err := tt.transition(&b)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error")
				}
				var bErr *BusinessError
				if !errors.As(err, &bErr) {
					t.Fatalf("error type = %T, want *BusinessError", err)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("error = %q, want %q", err.Error(), tt.wantErr)
				}
				if b.Status != tt.status {
					t.Fatalf("status changed on failed transition: %s -> %s", tt.status, b.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("transition error: %v", err)
			}
			if b.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", b.Status, tt.wantStatus)
			}
		})
	}
}

func TestBookingCompleteRecordsFinalPrice(t *testing.T) {
	b := Booking{Status: BookingStatusConfirmed}
	if err := b.Complete(12345); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if b.FinalPriceCents == nil || *b.FinalPriceCents != 12345 {
		t.Fatalf("final price = %v, want 12345", b.FinalPriceCents)
	}
}

func TestAttendantAuthorizedFor(t *testing.T) {
	a := Attendant{ServiceIDs: nil}
	id := mustUUID(t, "00000000-0000-0000-0000-000000000001")
	if a.AuthorizedFor(id) {
		t.Fatalf("empty service set must authorize nothing")
	}

	a.ServiceIDs = append(a.ServiceIDs, id)
	if !a.AuthorizedFor(id) {
		t.Fatalf("expected authorization for %s", id)
	}
}
