package get_availability

import (
	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// aggregateSlots собирает занятость по сетке.
// Бронирование целиком относится к слоту, в который попадает его время начала, и не делится между слотами.
// Возвращает слоты, блокировки вне сетки и число бронирований вне сетки.
func aggregateSlots(
	venue *domain.Venue,
	slots []types.TimeString,
	granularity int,
	bookings []*domain.Booking,
	blocks []*domain.SlotBlock,
) ([]Slot, []*domain.SlotBlock, int) {
	booked := make([]int, len(slots))
	unmatchedBookings := 0

	for _, booking := range bookings {
		if !booking.IsActive() {
			continue
		}

		idx, ok := slotIndex(booking.Time.Normalize(), venue.OpeningTime, granularity, len(slots))
		if !ok {
			unmatchedBookings++
			continue
		}
		booked[idx] += booking.ConsumedCourts()
	}

	blockByMinute := make(map[int]*domain.SlotBlock, len(blocks))
	for _, block := range blocks {
		blockByMinute[block.Time.Minutes()] = block
	}

	result := make([]Slot, len(slots))
	for i, slotTime := range slots {
		block, blocked := blockByMinute[slotTime.Minutes()]
		if blocked {
			delete(blockByMinute, slotTime.Minutes())
		}

		slot := Slot{
			Time:         slotTime,
			BookedCourts: booked[i],
			Capacity:     venue.Capacity,
			IsBlocked:    blocked,
			State:        domain.DeriveSlotState(booked[i], venue.Capacity, blocked),
		}
		if blocked {
			slot.BlockReason = block.Reason
		}
		result[i] = slot
	}

	orphaned := make([]*domain.SlotBlock, 0, len(blockByMinute))
	for _, block := range blocks {
		if _, left := blockByMinute[block.Time.Minutes()]; left {
			orphaned = append(orphaned, block)
		}
	}

	return result, orphaned, unmatchedBookings
}

// slotIndex номер слота сетки, содержащего t
func slotIndex(t, opening types.TimeString, granularity, slotCount int) (int, bool) {
	slotStart, ok := domain.ContainingSlot(t, opening, granularity)
	if !ok {
		return 0, false
	}
	idx := (slotStart.Minutes() - opening.Minutes()) / granularity
	if idx >= slotCount {
		return 0, false
	}
	return idx, true
}
