package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

// overlapConstraint is the storage-level exclusion constraint on
// (attendant_id, [start_time, end_time)) for non-cancelled bookings. It
// is the source of truth for slot conflicts; the service-level conflict
// check is an early exit, not the correctness guarantee.
const overlapConstraint = "bookings_no_overlap"

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

type scheduleTx struct {
	tx bun.Tx
}

func (r *BookingRepo) InAttendantTx(ctx context.Context, attendantID uuid.UUID, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockAttendantCalendar(ctx, tx, attendantID); err != nil {
			return err
		}
		return fn(ctx, scheduleTx{tx: tx})
	})
}

func lockAttendantCalendar(ctx context.Context, tx bun.Tx, attendantID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", attendantID.String()).Exec(ctx)
	return err
}

func (r *BookingRepo) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.NewSelect().
		Model(&b).
		Where("id = ?", bookingID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}

	items, err := r.ListLineItems(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	b.LineItems = items
	return b, nil
}

func (r *BookingRepo) ListBookings(ctx context.Context, attendantID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("attendant_id = ?", attendantID).
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListLineItems(ctx context.Context, bookingID uuid.UUID) ([]domain.BookingLineItem, error) {
	var rows []domain.BookingLineItem
	err := r.db.NewSelect().
		Model(&rows).
		Where("booking_id = ?", bookingID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus, finalPriceCents *int64) (domain.Booking, error) {
	q := r.db.NewUpdate().
		Model((*domain.Booking)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", bookingID)
	if finalPriceCents != nil {
		q = q.Set("final_price_cents = ?", *finalPriceCents)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return domain.Booking{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, err
	}
	if affected == 0 {
		return domain.Booking{}, store.ErrNotFound
	}

	return r.GetBooking(ctx, bookingID)
}

func (r scheduleTx) HasConflict(ctx context.Context, attendantID uuid.UUID, start, end time.Time) (bool, error) {
	return r.tx.NewSelect().
		Model((*domain.Booking)(nil)).
		Where("attendant_id = ?", attendantID).
		Where("status != ?", domain.BookingStatusCancelled).
		Where("start_time < ?", end).
		Where("end_time > ?", start).
		Exists(ctx)
}

func (r scheduleTx) CreateBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	m := booking
	m.LineItems = nil

	_, err := r.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		if isOverlapViolation(err) {
			return domain.Booking{}, store.ErrConflict
		}
		return domain.Booking{}, err
	}

	booking.ID = m.ID
	booking.CreatedAt = m.CreatedAt
	booking.UpdatedAt = m.UpdatedAt
	return booking, nil
}

func (r scheduleTx) CreateLineItems(ctx context.Context, items []domain.BookingLineItem) ([]domain.BookingLineItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	rows := make([]domain.BookingLineItem, len(items))
	copy(rows, items)

	_, err := r.tx.NewInsert().Model(&rows).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23P01" && pgErr.ConstraintName == overlapConstraint
}
