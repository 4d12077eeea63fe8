package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

func slotStrings(slots []types.TimeString) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

func TestGenerateSlots_WorkingDay(t *testing.T) {
	slots, err := GenerateSlots(types.MustTimeString("09:00"), types.MustTimeString("17:00"), 30)
	require.NoError(t, err)

	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0].String())
	assert.Equal(t, "16:30", slots[len(slots)-1].String())

	for i := 1; i < len(slots); i++ {
		assert.Equal(t, 30, slots[i].Minutes()-slots[i-1].Minutes())
	}
}

func TestGenerateSlots_EmptyWhenHoursInvalid(t *testing.T) {
	slots, err := GenerateSlots(types.MustTimeString("09:00"), types.MustTimeString("09:00"), 30)
	require.NoError(t, err)
	assert.Empty(t, slots)

	slots, err = GenerateSlots(types.MustTimeString("18:00"), types.MustTimeString("09:00"), 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_PartialLastSlot(t *testing.T) {
	slots, err := GenerateSlots(types.MustTimeString("09:00"), types.MustTimeString("10:45"), 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, slotStrings(slots))
}

func TestGenerateSlots_UntilMidnight(t *testing.T) {
	slots, err := GenerateSlots(types.MustTimeString("22:00"), types.MustTimeString("24:00"), 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"22:00", "23:00"}, slotStrings(slots))
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	first, err := GenerateSlots(types.MustTimeString("06:00"), types.MustTimeString("23:00"), 15)
	require.NoError(t, err)
	second, err := GenerateSlots(types.MustTimeString("06:00"), types.MustTimeString("23:00"), 15)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateSlots_InvalidGranularity(t *testing.T) {
	for _, g := range []int{0, -30, 7} {
		_, err := GenerateSlots(types.MustTimeString("09:00"), types.MustTimeString("17:00"), g)
		assert.ErrorIs(t, err, ErrInvalidGranularity, "granularity %d", g)
	}
}

func TestContainingSlot(t *testing.T) {
	opening := types.MustTimeString("09:00")

	slot, ok := ContainingSlot(types.MustTimeString("10:15"), opening, 30)
	require.True(t, ok)
	assert.Equal(t, "10:00", slot.String())

	slot, ok = ContainingSlot(types.MustTimeString("10:30"), opening, 30)
	require.True(t, ok)
	assert.Equal(t, "10:30", slot.String())

	_, ok = ContainingSlot(types.MustTimeString("08:45"), opening, 30)
	assert.False(t, ok)
}

func TestDeriveSlotState(t *testing.T) {
	assert.Equal(t, SlotAvailable, DeriveSlotState(0, 3, false))
	assert.Equal(t, SlotPartial, DeriveSlotState(2, 3, false))
	assert.Equal(t, SlotFull, DeriveSlotState(3, 3, false))
	assert.Equal(t, SlotBlocked, DeriveSlotState(3, 3, true))
	assert.Equal(t, SlotBlocked, DeriveSlotState(0, 3, true))

	s := SlotAvailability{BookedCourts: 3, Capacity: 3, IsBlocked: true}
	assert.True(t, s.IsFull())
	assert.Equal(t, SlotBlocked, s.State())
}
