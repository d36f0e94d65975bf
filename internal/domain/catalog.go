package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email"`
	Phone     string    `bun:"phone"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (c *Customer) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if c.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			c.ID = id
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		c.UpdatedAt = now
	}
	return nil
}

type Location struct {
	bun.BaseModel `bun:"table:locations"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	Address   string    `bun:"address"`
	Active    bool      `bun:"active,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (l *Location) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if l.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			l.ID = id
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		if l.UpdatedAt.IsZero() {
			l.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		l.UpdatedAt = now
	}
	return nil
}

// Attendant is a staff member whose calendar bookings occupy. ServiceIDs
// is the set of catalog services the attendant is authorized to perform.
type Attendant struct {
	bun.BaseModel `bun:"table:attendants"`

	ID         uuid.UUID   `bun:"id,pk,type:uuid"`
	Name       string      `bun:"name,notnull"`
	LocationID uuid.UUID   `bun:"location_id,notnull,type:uuid"`
	Active     bool        `bun:"active,notnull"`
	ServiceIDs []uuid.UUID `bun:"service_ids,array,type:uuid[]"`
	CreatedAt  time.Time   `bun:"created_at,notnull"`
	UpdatedAt  time.Time   `bun:"updated_at,notnull"`
}

func (a *Attendant) AuthorizedFor(serviceID uuid.UUID) bool {
	for _, id := range a.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

func (a *Attendant) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// CatalogService is a bookable service offering with a catalog price and
// a duration. Overlapping services in one visit share the slot, so a
// booking's duration is the longest selected service, not the sum.
type CatalogService struct {
	bun.BaseModel `bun:"table:services"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	Name            string    `bun:"name,notnull"`
	Active          bool      `bun:"active,notnull"`
	PriceCents      int64     `bun:"price_cents,notnull"`
	DurationMinutes int       `bun:"duration_minutes,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

func (s *CatalogService) BeforeAppendModel(ctx context.Context, query bun.Query) error {
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
