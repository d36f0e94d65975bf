package scheduling

import (
	"fmt"

	"github.com/google/uuid"

	"agendly/backend/internal/domain"
)

type ServiceSelection struct {
	ServiceID      uuid.UUID
	UnitPriceCents *int64
	Quantity       int
}

// buildLineItems computes the booking's duration, total price, and line
// items from the resolved services. The duration is the longest selected
// service, not the sum: services performed in the same visit share the
// slot. Unit price is the explicit override when supplied, else the
// catalog price; quantity defaults to 1.
func buildLineItems(services map[uuid.UUID]domain.CatalogService, selections []ServiceSelection) (int, int64, []domain.BookingLineItem, error) {
	durationMinutes := 0
	var totalCents int64
	items := make([]domain.BookingLineItem, 0, len(selections))

	for _, sel := range selections {
		svc, ok := services[sel.ServiceID]
		if !ok {
			return 0, 0, nil, domain.NewBusinessError(fmt.Sprintf("service %s was not resolved", sel.ServiceID))
		}

		if svc.DurationMinutes > durationMinutes {
			durationMinutes = svc.DurationMinutes
		}

		unit := svc.PriceCents
		if sel.UnitPriceCents != nil {
			unit = *sel.UnitPriceCents
		}
		if unit < 0 {
			return 0, 0, nil, domain.NewBusinessError("unit price must not be negative")
		}

		quantity := sel.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 1 {
			return 0, 0, nil, domain.NewBusinessError("quantity must be at least 1")
		}

		lineTotal := unit * int64(quantity)
		totalCents += lineTotal

		items = append(items, domain.BookingLineItem{
			ServiceID:      svc.ID,
			UnitPriceCents: unit,
			Quantity:       quantity,
			TotalCents:     lineTotal,
			Description:    svc.Name,
		})
	}

	if durationMinutes <= 0 {
		return 0, 0, nil, domain.NewBusinessError("selected services have no duration")
	}

	return durationMinutes, totalCents, items, nil
}
