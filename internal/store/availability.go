package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agendly/backend/internal/domain"
)

type AvailabilityRepository interface {
	CreateSlot(ctx context.Context, slot domain.AvailabilitySlot) (domain.AvailabilitySlot, error)
	UpdateSlot(ctx context.Context, slot domain.AvailabilitySlot) (domain.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, attendantID, slotID uuid.UUID) error
	ListSlots(ctx context.Context, attendantID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.AvailabilitySlot, error)

	// FindFreeSlot returns an available slot covering [start, end), or
	// ErrNotFound when the attendant has none.
	FindFreeSlot(ctx context.Context, attendantID uuid.UUID, start, end time.Time) (domain.AvailabilitySlot, error)
}
