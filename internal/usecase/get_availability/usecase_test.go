package get_availability

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	bookingRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/booking"
	"github.com/m04kA/FitKits-SlotService/internal/infra/storage/memory"
	"github.com/m04kA/FitKits-SlotService/pkg/logger"
	"github.com/m04kA/FitKits-SlotService/pkg/ptr"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

const venueID int64 = 1

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newStore(capacity int) *memory.Store {
	store := memory.NewStore()
	store.PutVenue(domain.Venue{
		ID:          venueID,
		OwnerID:     7,
		OpeningTime: types.MustTimeString("09:00"),
		ClosingTime: types.MustTimeString("11:00"),
		Capacity:    capacity,
		IsActive:    true,
	})
	return store
}

func newUseCase(store *memory.Store) *UseCase {
	return NewUseCase(store.Venues(), store.Bookings(), store.SlotBlocks(), 30, logger.Nop())
}

func putSlotBooking(t *testing.T, store *memory.Store, id int64, date, at string, status domain.BookingStatus, courts int) {
	t.Helper()
	bt, err := domain.NewSlotBookingTime(types.MustTimeString(at), 60)
	require.NoError(t, err)
	store.PutBooking(domain.Booking{ID: id, VenueID: venueID, Date: mustDate(t, date), Time: bt, Status: status, Courts: courts})
}

func putRangeBooking(t *testing.T, store *memory.Store, id int64, date, start, end string, courts int) {
	t.Helper()
	bt, err := domain.NewRangeBookingTime(types.MustTimeString(start), types.MustTimeString(end))
	require.NoError(t, err)
	store.PutBooking(domain.Booking{ID: id, VenueID: venueID, Date: mustDate(t, date), Time: bt, Status: domain.StatusConfirmed, Courts: courts})
}

func putBlock(t *testing.T, store *memory.Store, date, at string, reason *string) {
	t.Helper()
	require.NoError(t, store.SlotBlocks().Create(context.Background(), &domain.SlotBlock{
		VenueID:   venueID,
		Date:      mustDate(t, date),
		Time:      types.MustTimeString(at),
		Reason:    reason,
		CreatedBy: 7,
	}))
}

func slotAt(t *testing.T, resp *Response, at string) Slot {
	t.Helper()
	for _, s := range resp.Slots {
		if s.Time.String() == at {
			return s
		}
	}
	t.Fatalf("slot %s not found", at)
	return Slot{}
}

func TestExecute_CountsOnlyActiveBookings(t *testing.T) {
	store := newStore(3)
	putSlotBooking(t, store, 1, "2025-06-10", "10:00", domain.StatusConfirmed, 1)
	putSlotBooking(t, store, 2, "2025-06-10", "10:00", domain.StatusConfirmed, 1)
	putSlotBooking(t, store, 3, "2025-06-10", "10:00", domain.StatusCancelled, 1)
	putSlotBooking(t, store, 4, "2025-06-10", "10:00", domain.StatusRefunded, 1)
	putSlotBooking(t, store, 5, "2025-06-11", "10:00", domain.StatusConfirmed, 1)

	resp, err := newUseCase(store).Execute(context.Background(), &Request{VenueID: venueID, Date: mustDate(t, "2025-06-10")})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 4)
	slot := slotAt(t, resp, "10:00")
	assert.Equal(t, 2, slot.BookedCourts)
	assert.Equal(t, 3, slot.Capacity)
	assert.Equal(t, domain.SlotPartial, slot.State)
	assert.Equal(t, domain.SlotAvailable, slotAt(t, resp, "09:00").State)
}

func TestExecute_BlockDoesNotAffectBookings(t *testing.T) {
	store := newStore(3)
	for i := int64(1); i <= 3; i++ {
		putSlotBooking(t, store, i, "2025-06-10", "10:00", domain.StatusConfirmed, 1)
	}
	putBlock(t, store, "2025-06-10", "10:00", ptr.Ptr("maintenance"))

	resp, err := newUseCase(store).Execute(context.Background(), &Request{VenueID: venueID, Date: mustDate(t, "2025-06-10")})
	require.NoError(t, err)

	slot := slotAt(t, resp, "10:00")
	assert.True(t, slot.IsBlocked)
	assert.Equal(t, 3, slot.BookedCourts)
	assert.Equal(t, domain.SlotBlocked, slot.State)
	require.NotNil(t, slot.BlockReason)
	assert.Equal(t, "maintenance", *slot.BlockReason)
}

func TestExecute_FullSlot(t *testing.T) {
	store := newStore(2)
	putSlotBooking(t, store, 1, "2025-06-10", "09:30", domain.StatusPending, 2)

	resp, err := newUseCase(store).Execute(context.Background(), &Request{VenueID: venueID, Date: mustDate(t, "2025-06-10")})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotFull, slotAt(t, resp, "09:30").State)
}

func TestExecute_RangeBookingsAlignToContainingSlot(t *testing.T) {
	store := newStore(4)
	// 09:40 попадает в слот 09:30; бронирование не делится между слотами
	putRangeBooking(t, store, 1, "2025-06-10", "09:40", "10:40", 1)
	putRangeBooking(t, store, 2, "2025-06-10", "10:30", "11:00", 2)
	// До открытия - не учитывается
	putRangeBooking(t, store, 3, "2025-06-10", "08:00", "09:00", 1)

	resp, err := newUseCase(store).Execute(context.Background(), &Request{VenueID: venueID, Date: mustDate(t, "2025-06-10")})
	require.NoError(t, err)

	assert.Equal(t, 0, slotAt(t, resp, "09:00").BookedCourts)
	assert.Equal(t, 1, slotAt(t, resp, "09:30").BookedCourts)
	assert.Equal(t, 0, slotAt(t, resp, "10:00").BookedCourts)
	assert.Equal(t, 2, slotAt(t, resp, "10:30").BookedCourts)
}

func TestExecute_LateAndInconsistentBookingRowsAreCounted(t *testing.T) {
	store := memory.NewStore()
	store.PutVenue(domain.Venue{
		ID:          venueID,
		OwnerID:     7,
		OpeningTime: types.MustTimeString("20:00"),
		ClosingTime: types.MustTimeString("24:00"),
		Capacity:    2,
		IsActive:    true,
	})
	valid := func(s string) types.NullTimeString {
		return types.NullTimeString{Time: types.MustTimeString(s), Valid: true}
	}

	// Строки в том виде, в каком их отдаёт Postgres: конец в полночь и отрицательная длительность
	untilMidnight, err := bookingRepo.ToBookingTime(types.NullTimeString{}, sql.NullInt64{}, valid("23:00"), valid("00:00"))
	require.NoError(t, err)
	negative, err := bookingRepo.ToBookingTime(valid("21:00"), sql.NullInt64{Int64: -30, Valid: true}, types.NullTimeString{}, types.NullTimeString{})
	require.NoError(t, err)

	date := mustDate(t, "2025-06-10")
	store.PutBooking(domain.Booking{ID: 1, VenueID: venueID, Date: date, Time: untilMidnight, Status: domain.StatusConfirmed, Courts: 1})
	store.PutBooking(domain.Booking{ID: 2, VenueID: venueID, Date: date, Time: negative, Status: domain.StatusConfirmed, Courts: 1})

	resp, err := newUseCase(store).Execute(context.Background(), &Request{VenueID: venueID, Date: date})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 8)
	assert.Equal(t, 1, slotAt(t, resp, "23:00").BookedCourts)
	assert.Equal(t, 0, slotAt(t, resp, "23:30").BookedCourts)
	assert.Equal(t, 1, slotAt(t, resp, "21:00").BookedCourts)
}

func TestExecute_OrphanedBlockIsNotMatched(t *testing.T) {
	store := newStore(2)
	putBlock(t, store, "2025-06-10", "09:00", nil)
	putBlock(t, store, "2025-06-10", "18:00", ptr.Ptr("evening league"))

	resp, err := newUseCase(store).Execute(context.Background(), &Request{VenueID: venueID, Date: mustDate(t, "2025-06-10")})
	require.NoError(t, err)

	blocked := 0
	for _, s := range resp.Slots {
		if s.IsBlocked {
			blocked++
		}
	}
	assert.Equal(t, 1, blocked)
	require.Len(t, resp.OrphanedBlocks, 1)
	assert.Equal(t, "18:00", resp.OrphanedBlocks[0].Time.String())
}

func TestExecute_VenueGranularity(t *testing.T) {
	store := memory.NewStore()
	store.PutVenue(domain.Venue{
		ID:                     venueID,
		OpeningTime:            types.MustTimeString("09:00"),
		ClosingTime:            types.MustTimeString("12:00"),
		Capacity:               1,
		IsActive:               true,
		SlotGranularityMinutes: ptr.Ptr(60),
	})

	resp, err := newUseCase(store).Execute(context.Background(), &Request{VenueID: venueID, Date: mustDate(t, "2025-06-10")})
	require.NoError(t, err)
	assert.Equal(t, 60, resp.GranularityMinutes)
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, "11:00", resp.Slots[2].Time.String())
}

func TestExecute_Errors(t *testing.T) {
	store := newStore(1)
	store.PutVenue(domain.Venue{ID: 2, OpeningTime: types.MustTimeString("09:00"), ClosingTime: types.MustTimeString("10:00"), Capacity: 1, IsActive: false})
	uc := newUseCase(store)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{VenueID: 99, Date: mustDate(t, "2025-06-10")})
	assert.ErrorIs(t, err, ErrVenueNotFound)

	_, err = uc.Execute(ctx, &Request{VenueID: 2, Date: mustDate(t, "2025-06-10")})
	assert.ErrorIs(t, err, ErrVenueNotFound)

	_, err = uc.Execute(ctx, &Request{VenueID: 0, Date: mustDate(t, "2025-06-10")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{VenueID: venueID})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type brokenBlocks struct{}

func (brokenBlocks) ListByVenueAndDate(context.Context, int64, time.Time) ([]*domain.SlotBlock, error) {
	return nil, errors.New("connection refused")
}

func TestExecute_StorageError(t *testing.T) {
	store := newStore(1)
	uc := NewUseCase(store.Venues(), store.Bookings(), brokenBlocks{}, 30, logger.Nop())

	_, err := uc.Execute(context.Background(), &Request{VenueID: venueID, Date: mustDate(t, "2025-06-10")})
	assert.ErrorIs(t, err, ErrStorage)
}
