package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

type Service struct {
	repo store.AvailabilityRepository
}

func NewService(repo store.AvailabilityRepository) *Service {
	return &Service{repo: repo}
}

type SlotInput struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
	Notes     string
}

func (s *Service) PublishSlot(ctx context.Context, attendantID uuid.UUID, in SlotInput) (domain.AvailabilitySlot, error) {
	if attendantID == uuid.Nil {
		return domain.AvailabilitySlot{}, domain.NewBusinessError("attendant id is required")
	}
	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if !end.After(start) {
		return domain.AvailabilitySlot{}, domain.NewBusinessError("end time must be after start time")
	}

	return s.repo.CreateSlot(ctx, domain.AvailabilitySlot{
		AttendantID: attendantID,
		StartTime:   start,
		EndTime:     end,
		Available:   in.Available,
		Notes:       in.Notes,
	})
}

func (s *Service) UpdateSlot(ctx context.Context, attendantID, slotID uuid.UUID, in SlotInput) (domain.AvailabilitySlot, error) {
	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if !end.After(start) {
		return domain.AvailabilitySlot{}, domain.NewBusinessError("end time must be after start time")
	}

	return s.repo.UpdateSlot(ctx, domain.AvailabilitySlot{
		ID:          slotID,
		AttendantID: attendantID,
		StartTime:   start,
		EndTime:     end,
		Available:   in.Available,
		Notes:       in.Notes,
	})
}

func (s *Service) DeleteSlot(ctx context.Context, attendantID, slotID uuid.UUID) error {
	return s.repo.DeleteSlot(ctx, attendantID, slotID)
}

func (s *Service) ListSlots(ctx context.Context, attendantID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.AvailabilitySlot, error) {
	start := windowStart.UTC()
	end := windowEnd.UTC()
	if !end.After(start) {
		return nil, domain.NewBusinessError("window end must be after window start")
	}
	return s.repo.ListSlots(ctx, attendantID, start, end)
}

func (s *Service) FindFreeSlot(ctx context.Context, attendantID uuid.UUID, start, end time.Time) (domain.AvailabilitySlot, error) {
	if !end.After(start) {
		return domain.AvailabilitySlot{}, domain.NewBusinessError("end time must be after start time")
	}
	return s.repo.FindFreeSlot(ctx, attendantID, start.UTC(), end.UTC())
}
