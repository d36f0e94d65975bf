package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

type AvailabilityRepo struct {
	db *bun.DB
}

func NewAvailabilityRepo(db *bun.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

func (r *AvailabilityRepo) CreateSlot(ctx context.Context, slot domain.AvailabilitySlot) (domain.AvailabilitySlot, error) {
	m := slot
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.AvailabilitySlot{}, err
	}
	return m, nil
}

func (r *AvailabilityRepo) UpdateSlot(ctx context.Context, slot domain.AvailabilitySlot) (domain.AvailabilitySlot, error) {
	m := slot
	res, err := r.db.NewUpdate().
		Model(&m).
		Column("start_time", "end_time", "available", "notes", "updated_at").
		Where("id = ?", slot.ID).
		Where("attendant_id = ?", slot.AttendantID).
		Exec(ctx)
	if err != nil {
		return domain.AvailabilitySlot{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.AvailabilitySlot{}, err
	}
	if affected == 0 {
		return domain.AvailabilitySlot{}, store.ErrNotFound
	}
	return m, nil
}

func (r *AvailabilityRepo) DeleteSlot(ctx context.Context, attendantID, slotID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.AvailabilitySlot)(nil)).
		Where("attendant_id = ?", attendantID).
		Where("id = ?", slotID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *AvailabilityRepo) ListSlots(ctx context.Context, attendantID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.AvailabilitySlot, error) {
	var rows []domain.AvailabilitySlot
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

func (r *AvailabilityRepo) FindFreeSlot(ctx context.Context, attendantID uuid.UUID, start, end time.Time) (domain.AvailabilitySlot, error) {
	var slot domain.AvailabilitySlot
	err := r.db.NewSelect().
		Model(&slot).
		Where("attendant_id = ?", attendantID).
		Where("available = TRUE").
		Where("start_time <= ?", start).
		Where("end_time >= ?", end).
		OrderExpr("start_time ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AvailabilitySlot{}, store.ErrNotFound
		}
		return domain.AvailabilitySlot{}, err
	}
	return slot, nil
}
