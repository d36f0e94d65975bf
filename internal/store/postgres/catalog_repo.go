package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

type CatalogRepo struct {
	db *bun.DB
}

func NewCatalogRepo(db *bun.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) GetCustomer(ctx context.Context, customerID uuid.UUID) (domain.Customer, error) {
	var c domain.Customer
	if err := r.getByID(ctx, &c, customerID); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

func (r *CatalogRepo) GetLocation(ctx context.Context, locationID uuid.UUID) (domain.Location, error) {
	var l domain.Location
	if err := r.getByID(ctx, &l, locationID); err != nil {
		return domain.Location{}, err
	}
	return l, nil
}

func (r *CatalogRepo) GetAttendant(ctx context.Context, attendantID uuid.UUID) (domain.Attendant, error) {
	var a domain.Attendant
	if err := r.getByID(ctx, &a, attendantID); err != nil {
		return domain.Attendant{}, err
	}
	return a, nil
}

func (r *CatalogRepo) GetServices(ctx context.Context, serviceIDs []uuid.UUID) ([]domain.CatalogService, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	var rows []domain.CatalogService
	err := r.db.NewSelect().
		Model(&rows).
		Where("id IN (?)", bun.In(serviceIDs)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CatalogRepo) getByID(ctx context.Context, model any, id uuid.UUID) error {
	err := r.db.NewSelect().
		Model(model).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
