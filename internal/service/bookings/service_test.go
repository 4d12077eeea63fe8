package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/infra/cache/monthsummary"
	"github.com/m04kA/FitKits-SlotService/internal/infra/storage/memory"
	"github.com/m04kA/FitKits-SlotService/internal/service/bookings/models"
	"github.com/m04kA/FitKits-SlotService/pkg/logger"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

type recordingNotifier struct {
	events []domain.SlotEvent
}

func (n *recordingNotifier) Publish(e domain.SlotEvent) {
	n.events = append(n.events, e)
}

var (
	owner      = domain.Caller{UserID: 7, Role: domain.RoleVenueOwner}
	otherOwner = domain.Caller{UserID: 8, Role: domain.RoleVenueOwner}
	admin      = domain.Caller{UserID: 1, Role: domain.RoleAdmin}
)

func setup(t *testing.T) (*Service, *memory.Store, *recordingNotifier) {
	t.Helper()
	store := memory.NewStore()
	store.PutVenue(domain.Venue{ID: 1, OwnerID: 7, OpeningTime: types.MustTimeString("09:00"), ClosingTime: types.MustTimeString("12:00"), Capacity: 2, IsActive: true})
	store.PutVenue(domain.Venue{ID: 2, OwnerID: 8, OpeningTime: types.MustTimeString("09:00"), ClosingTime: types.MustTimeString("12:00"), Capacity: 2, IsActive: true})

	d, err := domain.ParseDate("2025-06-10")
	require.NoError(t, err)
	bt, err := domain.NewRangeBookingTime(types.MustTimeString("10:00"), types.MustTimeString("11:00"))
	require.NoError(t, err)

	store.PutBooking(domain.Booking{ID: 1, VenueID: 1, UserID: 50, Date: d, Time: bt, Status: domain.StatusConfirmed, Courts: 1})
	store.PutBooking(domain.Booking{ID: 2, VenueID: 1, UserID: 51, Date: d, Time: bt, Status: domain.StatusCancelled, Courts: 1})
	store.PutBooking(domain.Booking{ID: 3, VenueID: 2, UserID: 52, Date: d, Time: bt, Status: domain.StatusPending, Courts: 1})

	notifier := &recordingNotifier{}
	svc := NewService(store.Bookings(), store.Venues(), memory.NewTxManager(), monthsummary.NopCache{}, notifier, logger.Nop())
	return svc, store, notifier
}

func TestUpdateStatus_CancelsActiveBooking(t *testing.T) {
	svc, store, notifier := setup(t)

	resp, err := svc.UpdateStatus(context.Background(), owner, &models.UpdateStatusRequest{VenueID: 1, BookingID: 1, Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "11:00", resp.EndTime)

	stored, err := store.Bookings().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, domain.SlotEventBooking, notifier.events[0].Kind)
	assert.Equal(t, []string{"10:00"}, notifier.events[0].Times)
}

func TestUpdateStatus_Errors(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  domain.Caller
		req     models.UpdateStatusRequest
		wantErr error
	}{
		{"unknown status", admin, models.UpdateStatusRequest{VenueID: 1, BookingID: 1, Status: "lost"}, ErrInvalidStatus},
		{"back to confirmed", admin, models.UpdateStatusRequest{VenueID: 1, BookingID: 1, Status: "confirmed"}, ErrInvalidTransition},
		{"already cancelled", admin, models.UpdateStatusRequest{VenueID: 1, BookingID: 2, Status: "refunded"}, ErrInvalidTransition},
		{"booking of another venue", admin, models.UpdateStatusRequest{VenueID: 1, BookingID: 3, Status: "cancelled"}, ErrBookingNotFound},
		{"missing booking", admin, models.UpdateStatusRequest{VenueID: 1, BookingID: 99, Status: "cancelled"}, ErrBookingNotFound},
		{"missing venue", admin, models.UpdateStatusRequest{VenueID: 99, BookingID: 1, Status: "cancelled"}, ErrVenueNotFound},
		{"not the owner", otherOwner, models.UpdateStatusRequest{VenueID: 1, BookingID: 1, Status: "cancelled"}, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.UpdateStatus(ctx, tt.caller, &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetVenueBookings(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	active, err := svc.GetVenueBookings(ctx, owner, &models.GetVenueBookingsRequest{VenueID: 1, Date: "2025-06-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, active.Total)

	all, err := svc.GetVenueBookings(ctx, owner, &models.GetVenueBookingsRequest{VenueID: 1, Date: "2025-06-10", IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	_, err = svc.GetVenueBookings(ctx, otherOwner, &models.GetVenueBookingsRequest{VenueID: 1, Date: "2025-06-10"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetVenueBookings(ctx, owner, &models.GetVenueBookingsRequest{VenueID: 1, Date: "10/06/2025"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetVenueBooking(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	resp, err := svc.GetVenueBooking(ctx, admin, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)

	// Бронирование другой площадки не раскрывается
	_, err = svc.GetVenueBooking(ctx, owner, 1, 3)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = svc.GetVenueBooking(ctx, owner, 1, 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = svc.GetVenueBooking(ctx, otherOwner, 1, 1)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFromDomainBooking_LegacyShape(t *testing.T) {
	bt, err := domain.NewSlotBookingTime(types.MustTimeString("18:00"), 90)
	require.NoError(t, err)

	resp := models.FromDomainBooking(&domain.Booking{ID: 5, Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), Time: bt, Status: domain.StatusPending})
	assert.Equal(t, "18:00", resp.StartTime)
	assert.Equal(t, "19:30", resp.EndTime)
	assert.Equal(t, 1, resp.Courts)
}
