package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/repository"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrInvalidSlot  = errors.New("invalid slot definition")
)

// --- Service Interface ---

// SlotService is the coach's CRUD surface for recurring weekly slot
// templates. Pure data entry: none of this touches sessions or bookings.
type SlotService interface {
	CreateSlot(ctx context.Context, dayOfWeek int, startTime, endTime, location string, maxCapacity int) (*domain.Slot, error)
	GetSlots(ctx context.Context) ([]domain.Slot, error)
	UpdateSlot(ctx context.Context, id string, dayOfWeek int, startTime, endTime, location string, maxCapacity int, active bool) (*domain.Slot, error)
	// DeactivateSlot retires a slot from future materialization. Slots are
	// never deleted, and already-materialized sessions are unaffected.
	DeactivateSlot(ctx context.Context, id string) error
}

// --- Service Implementation ---

type slotService struct {
	slotRepo repository.SlotRepository
}

// NewSlotService creates a new instance of slotService.
func NewSlotService(slotRepo repository.SlotRepository) SlotService {
	return &slotService{slotRepo: slotRepo}
}

// CreateSlot validates and persists a new weekly template. The id is a UUID
// assigned here because it becomes the stable prefix of every session id
// derived from this slot.
func (s *slotService) CreateSlot(ctx context.Context, dayOfWeek int, startTime, endTime, location string, maxCapacity int) (*domain.Slot, error) {
	if err := validateSlotFields(dayOfWeek, startTime, endTime, maxCapacity); err != nil {
		return nil, err
	}

	slot := &domain.Slot{
		ID:          uuid.NewString(),
		DayOfWeek:   dayOfWeek,
		StartTime:   startTime,
		EndTime:     endTime,
		Location:    location,
		MaxCapacity: maxCapacity,
		Active:      true,
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// GetSlots lists every slot template, active and inactive.
func (s *slotService) GetSlots(ctx context.Context) ([]domain.Slot, error) {
	return s.slotRepo.GetAll(ctx)
}

// UpdateSlot edits a template. Changes take effect at the next
// materialization; existing sessions keep the values copied at creation.
func (s *slotService) UpdateSlot(ctx context.Context, id string, dayOfWeek int, startTime, endTime, location string, maxCapacity int, active bool) (*domain.Slot, error) {
	if err := validateSlotFields(dayOfWeek, startTime, endTime, maxCapacity); err != nil {
		return nil, err
	}

	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	slot.DayOfWeek = dayOfWeek
	slot.StartTime = startTime
	slot.EndTime = endTime
	slot.Location = location
	slot.MaxCapacity = maxCapacity
	slot.Active = active

	if err := s.slotRepo.Update(ctx, slot); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

// DeactivateSlot flips the active flag off.
func (s *slotService) DeactivateSlot(ctx context.Context, id string) error {
	err := s.slotRepo.SetActive(ctx, id, false)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSlotNotFound
	}
	return err
}

// --- Validation helpers ---

func validateSlotFields(dayOfWeek int, startTime, endTime string, maxCapacity int) error {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return fmt.Errorf("%w: dayOfWeek must be 0 (Sunday) through 6 (Saturday)", ErrInvalidSlot)
	}
	if maxCapacity <= 0 {
		return fmt.Errorf("%w: maxCapacity must be positive", ErrInvalidSlot)
	}
	if err := validateTime(startTime); err != nil {
		return err
	}
	if err := validateTime(endTime); err != nil {
		return err
	}
	if endTime <= startTime {
		return fmt.Errorf("%w: endTime must be after startTime", ErrInvalidSlot)
	}
	return nil
}

// validateTime checks the "HH:mm" wire format used for slot/session times.
func validateTime(value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("%w: time %q is not in HH:mm format", ErrInvalidSlot, value)
	}
	return nil
}
