package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/fiscal"
	"agendly/backend/internal/lock"
	"agendly/backend/internal/store"
)

const defaultLockTTL = 10 * time.Second

type Service struct {
	bookings store.BookingRepository
	catalog  store.CatalogRepository
	locker   lock.Locker
	issuer   fiscal.Issuer
	log      *slog.Logger
	horizon  time.Duration
	lockTTL  time.Duration
}

func NewService(bookings store.BookingRepository, catalog store.CatalogRepository, locker lock.Locker, issuer fiscal.Issuer, log *slog.Logger, horizon time.Duration) *Service {
	if log == nil {
		log = slog.Default()
	}
	if horizon <= 0 {
		horizon = domain.DefaultRecurrenceHorizon
	}
	return &Service{
		bookings: bookings,
		catalog:  catalog,
		locker:   locker,
		issuer:   issuer,
		log:      log.With(slog.String("component", "scheduling")),
		horizon:  horizon,
		lockTTL:  defaultLockTTL,
	}
}

type ScheduleInput struct {
	CustomerID  uuid.UUID
	LocationID  uuid.UUID
	AttendantID uuid.UUID
	StartTime   time.Time
	Notes       string
	Selections  []ServiceSelection
}

// ScheduleOne books a single non-recurring appointment. Booking and line
// items commit in one transaction.
func (s *Service) ScheduleOne(ctx context.Context, in ScheduleInput) (domain.Booking, error) {
	start := in.StartTime.UTC()
	if start.IsZero() {
		return domain.Booking{}, domain.NewBusinessError("start time is required")
	}

	services, err := s.resolve(ctx, in)
	if err != nil {
		return domain.Booking{}, err
	}

	durationMinutes, totalCents, items, err := buildLineItems(services, in.Selections)
	if err != nil {
		return domain.Booking{}, err
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	var out domain.Booking
	err = s.withAttendantLock(ctx, in.AttendantID, func() error {
		return s.bookings.InAttendantTx(ctx, in.AttendantID, func(ctx context.Context, tx store.ScheduleTx) error {
			conflict, err := tx.HasConflict(ctx, in.AttendantID, start, end)
			if err != nil {
				return err
			}
			if conflict {
				return domain.NewBusinessError("slot already booked")
			}

			created, err := s.persistBooking(ctx, tx, in, start, end, totalCents, items, nil, nil)
			if err != nil {
				return err
			}
			out = created
			return nil
		})
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.log.Info(
		"booking scheduled",
		slog.String("booking_id", out.ID.String()),
		slog.String("attendant_id", out.AttendantID.String()),
		slog.Time("start_time", out.StartTime),
		slog.Time("end_time", out.EndTime),
	)
	return out, nil
}

// ScheduleSeries materializes a whole recurring series in one
// transaction. A conflicting occurrence is skipped, not failed: a long
// series should not be blocked by one colliding date. Storage errors
// roll the entire series back.
func (s *Service) ScheduleSeries(ctx context.Context, in ScheduleInput, spec domain.RecurrenceSpec) ([]domain.Booking, error) {
	if !spec.Recurring {
		return nil, domain.NewBusinessError("recurrence spec is not recurring")
	}

	start := in.StartTime.UTC()
	if start.IsZero() {
		return nil, domain.NewBusinessError("start time is required")
	}

	services, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	durationMinutes, totalCents, items, err := buildLineItems(services, in.Selections)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(durationMinutes) * time.Minute

	dates, err := domain.ExpandDates(start, spec, s.horizon)
	if err != nil {
		return nil, err
	}

	seriesID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	hour, minute, sec := start.Hour(), start.Minute(), start.Second()

	var (
		out      []domain.Booking
		originID *uuid.UUID
		skipped  int
	)
	err = s.withAttendantLock(ctx, in.AttendantID, func() error {
		return s.bookings.InAttendantTx(ctx, in.AttendantID, func(ctx context.Context, tx store.ScheduleTx) error {
			for _, date := range dates {
				occStart := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, sec, 0, time.UTC)
				occEnd := occStart.Add(duration)

				conflict, err := tx.HasConflict(ctx, in.AttendantID, occStart, occEnd)
				if err != nil {
					return err
				}
				if conflict {
					skipped++
					s.log.Debug(
						"series occurrence skipped",
						slog.String("series_id", seriesID.String()),
						slog.Time("start_time", occStart),
					)
					continue
				}

				created, err := s.persistBooking(ctx, tx, in, occStart, occEnd, totalCents, items, &seriesID, originID)
				if err != nil {
					return err
				}
				if originID == nil {
					origin := created.ID
					originID = &origin
				}
				out = append(out, created)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(
		"series scheduled",
		slog.String("series_id", seriesID.String()),
		slog.String("attendant_id", in.AttendantID.String()),
		slog.Int("created", len(out)),
		slog.Int("skipped", skipped),
	)
	return out, nil
}

// persistBooking writes one booking and a fresh set of line items inside
// the current transaction.
func (s *Service) persistBooking(ctx context.Context, tx store.ScheduleTx, in ScheduleInput, start, end time.Time, totalCents int64, items []domain.BookingLineItem, seriesID, originID *uuid.UUID) (domain.Booking, error) {
	booking := domain.Booking{
		CustomerID:      in.CustomerID,
		LocationID:      in.LocationID,
		AttendantID:     in.AttendantID,
		StartTime:       start,
		EndTime:         end,
		Notes:           in.Notes,
		TotalPriceCents: totalCents,
		Status:          domain.BookingStatusScheduled,
		IsRecurring:     seriesID != nil,
		SeriesID:        seriesID,
		OriginBookingID: originID,
	}

	created, err := tx.CreateBooking(ctx, booking)
	if err != nil {
		return domain.Booking{}, err
	}

	lineItems := make([]domain.BookingLineItem, len(items))
	copy(lineItems, items)
	for i := range lineItems {
		lineItems[i].BookingID = created.ID
	}

	saved, err := tx.CreateLineItems(ctx, lineItems)
	if err != nil {
		return domain.Booking{}, err
	}
	created.LineItems = saved
	return created, nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	return s.bookings.GetBooking(ctx, bookingID)
}

func (s *Service) ListBookings(ctx context.Context, attendantID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	start := windowStart.UTC()
	end := windowEnd.UTC()
	if !end.After(start) {
		return nil, domain.NewBusinessError("window end must be after window start")
	}
	return s.bookings.ListBookings(ctx, attendantID, start, end)
}

func (s *Service) Confirm(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := booking.Confirm(); err != nil {
		return domain.Booking{}, err
	}
	return s.bookings.UpdateStatus(ctx, bookingID, domain.BookingStatusConfirmed, nil)
}

func (s *Service) Cancel(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := booking.Cancel(); err != nil {
		return domain.Booking{}, err
	}
	return s.bookings.UpdateStatus(ctx, bookingID, domain.BookingStatusCancelled, nil)
}

// Complete records the final price and triggers fiscal-document
// issuance. Issuance failures are logged, never surfaced: the booking is
// completed either way.
func (s *Service) Complete(ctx context.Context, bookingID uuid.UUID, finalPriceCents int64) (domain.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := booking.Complete(finalPriceCents); err != nil {
		return domain.Booking{}, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingStatusCompleted, &finalPriceCents)
	if err != nil {
		return domain.Booking{}, err
	}

	if s.issuer != nil {
		if err := s.issuer.IssueDocument(ctx, bookingID); err != nil {
			s.log.Warn("fiscal document trigger failed", slog.String("booking_id", bookingID.String()), slog.Any("err", err))
		}
	}
	return updated, nil
}

// resolve fetches and validates every entity the request references.
// Nothing is persisted until resolution succeeds.
func (s *Service) resolve(ctx context.Context, in ScheduleInput) (map[uuid.UUID]domain.CatalogService, error) {
	if len(in.Selections) == 0 {
		return nil, domain.NewBusinessError("at least one service is required")
	}

	if _, err := s.catalog.GetCustomer(ctx, in.CustomerID); err != nil {
		return nil, fmt.Errorf("customer %s: %w", in.CustomerID, err)
	}

	location, err := s.catalog.GetLocation(ctx, in.LocationID)
	if err != nil {
		return nil, fmt.Errorf("location %s: %w", in.LocationID, err)
	}
	if !location.Active {
		return nil, domain.NewBusinessError("location is inactive")
	}

	attendant, err := s.catalog.GetAttendant(ctx, in.AttendantID)
	if err != nil {
		return nil, fmt.Errorf("attendant %s: %w", in.AttendantID, err)
	}
	if !attendant.Active {
		return nil, domain.NewBusinessError("attendant is inactive")
	}

	ids := make([]uuid.UUID, 0, len(in.Selections))
	seen := make(map[uuid.UUID]struct{}, len(in.Selections))
	for _, sel := range in.Selections {
		if _, ok := seen[sel.ServiceID]; ok {
			continue
		}
		seen[sel.ServiceID] = struct{}{}
		ids = append(ids, sel.ServiceID)
	}

	rows, err := s.catalog.GetServices(ctx, ids)
	if err != nil {
		return nil, err
	}
	services := make(map[uuid.UUID]domain.CatalogService, len(rows))
	for _, svc := range rows {
		services[svc.ID] = svc
	}

	for _, id := range ids {
		svc, ok := services[id]
		if !ok {
			return nil, fmt.Errorf("service %s: %w", id, store.ErrNotFound)
		}
		if !svc.Active {
			return nil, domain.NewBusinessError(fmt.Sprintf("service %q is inactive", svc.Name))
		}
		if !attendant.AuthorizedFor(id) {
			return nil, domain.NewBusinessError(fmt.Sprintf("attendant is not authorized for service %q", svc.Name))
		}
	}

	return services, nil
}

func (s *Service) withAttendantLock(ctx context.Context, attendantID uuid.UUID, fn func() error) error {
	if s.locker == nil {
		return fn()
	}

	key := "attendant:" + attendantID.String()
	ok, err := s.locker.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrLocked
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key); err != nil {
			s.log.Warn("lock release failed", slog.String("key", key), slog.Any("err", err))
		}
	}()

	return fn()
}
