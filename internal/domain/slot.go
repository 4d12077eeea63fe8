package domain

import (
	"errors"
	"fmt"

	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// ErrInvalidGranularity возвращается при недопустимом шаге слотов
var ErrInvalidGranularity = errors.New("slot granularity must be a positive divisor of the day")

// SlotState вычисляемое состояние слота
type SlotState string

const (
	SlotAvailable SlotState = "available"
	SlotPartial   SlotState = "partial"
	SlotFull      SlotState = "full"
	SlotBlocked   SlotState = "blocked"
)

// SlotAvailability занятость одного слота
type SlotAvailability struct {
	Time         types.TimeString
	BookedCourts int
	Capacity     int
	IsBlocked    bool
	BlockReason  *string
}

// IsFull true, если заняты все корты (независимо от блокировки)
func (s SlotAvailability) IsFull() bool {
	return s.BookedCourts >= s.Capacity
}

// State состояние слота. Блокировка важнее занятости.
func (s SlotAvailability) State() SlotState {
	return DeriveSlotState(s.BookedCourts, s.Capacity, s.IsBlocked)
}

// DeriveSlotState чистая функция от вместимости, числа занятых кортов и наличия блокировки
func DeriveSlotState(bookedCourts, capacity int, blocked bool) SlotState {
	switch {
	case blocked:
		return SlotBlocked
	case bookedCourts <= 0:
		return SlotAvailable
	case bookedCourts >= capacity:
		return SlotFull
	default:
		return SlotPartial
	}
}

// GenerateSlots генерирует время начала слотов от opening с шагом granularity, пока время < closing.
// Если opening >= closing - пустой список без ошибки.
func GenerateSlots(opening, closing types.TimeString, granularity int) ([]types.TimeString, error) {
	if err := ValidateGranularity(granularity); err != nil {
		return nil, err
	}

	slots := make([]types.TimeString, 0)
	for m := opening.Minutes(); m < closing.Minutes(); m += granularity {
		slot, err := types.NewTimeStringFromMinutes(m)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// ValidateGranularity шаг должен быть положительным делителем суток
func ValidateGranularity(granularity int) error {
	if granularity <= 0 || types.MinutesPerDay%granularity != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGranularity, granularity)
	}
	return nil
}

// ContainingSlot возвращает слот сетки (opening, granularity), в который попадает t.
// false, если t раньше открытия или шаг некорректен.
func ContainingSlot(t, opening types.TimeString, granularity int) (types.TimeString, bool) {
	if granularity <= 0 || t.IsBefore(opening) {
		return types.TimeString{}, false
	}
	offset := (t.Minutes() - opening.Minutes()) / granularity * granularity
	slot, err := opening.AddMinutes(offset)
	if err != nil {
		return types.TimeString{}, false
	}
	return slot, true
}

// IsOnGrid true, если t совпадает с началом одного из слотов
func IsOnGrid(t types.TimeString, slots []types.TimeString) bool {
	for _, s := range slots {
		if s.Equal(t) {
			return true
		}
	}
	return false
}
