package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AvailabilitySlot is an attendant-declared window during which they are
// bookable. Slots are managed only by the owning attendant.
type AvailabilitySlot struct {
	bun.BaseModel `bun:"table:availability_slots"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	AttendantID uuid.UUID `bun:"attendant_id,notnull,type:uuid"`
	StartTime   time.Time `bun:"start_time,notnull"`
	EndTime     time.Time `bun:"end_time,notnull"`
	Available   bool      `bun:"available,notnull"`
	Notes       string    `bun:"notes"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

func (s *AvailabilitySlot) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}
