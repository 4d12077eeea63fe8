package slotblocks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/infra/storage/memory"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
	"github.com/m04kA/FitKits-SlotService/pkg/logger"
	"github.com/m04kA/FitKits-SlotService/pkg/ptr"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

const (
	venueID      int64 = 1
	otherVenueID int64 = 2
	ownerID      int64 = 7
	otherOwnerID int64 = 8
	testDate           = "2025-06-10"
)

var (
	owner      = domain.Caller{UserID: ownerID, Role: domain.RoleVenueOwner}
	otherOwner = domain.Caller{UserID: otherOwnerID, Role: domain.RoleVenueOwner}
	admin      = domain.Caller{UserID: 1, Role: domain.RoleAdmin}
)

type fakeCache struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (c *fakeCache) Invalidate(_ context.Context, venueID int64, year int, month time.Month) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"))
	return c.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.SlotEvent
}

func (n *fakeNotifier) Publish(event domain.SlotEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) all() []domain.SlotEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.SlotEvent(nil), n.events...)
}

// failingBlocks ломает вставку для выбранного времени
type failingBlocks struct {
	*memory.SlotBlockRepository
	failAt string
}

func (f *failingBlocks) Create(ctx context.Context, block *domain.SlotBlock) error {
	if block.Time.String() == f.failAt {
		return errors.New("connection reset by peer")
	}
	return f.SlotBlockRepository.Create(ctx, block)
}

type fixture struct {
	store    *memory.Store
	service  *Service
	cache    *fakeCache
	notifier *fakeNotifier
}

func newFixture(t *testing.T, cfg Config, wrap func(*memory.SlotBlockRepository) SlotBlockRepository) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.PutVenue(domain.Venue{
		ID:          venueID,
		OwnerID:     ownerID,
		Name:        "Center Court",
		OpeningTime: types.MustTimeString("09:00"),
		ClosingTime: types.MustTimeString("11:00"),
		Capacity:    3,
		IsActive:    true,
	})
	store.PutVenue(domain.Venue{
		ID:          otherVenueID,
		OwnerID:     otherOwnerID,
		Name:        "Riverside",
		OpeningTime: types.MustTimeString("08:00"),
		ClosingTime: types.MustTimeString("10:00"),
		Capacity:    1,
		IsActive:    true,
	})

	var blocks SlotBlockRepository = store.SlotBlocks()
	if wrap != nil {
		blocks = wrap(store.SlotBlocks())
	}

	f := &fixture{store: store, cache: &fakeCache{}, notifier: &fakeNotifier{}}
	f.service = NewService(
		store.Venues(),
		store.Bookings(),
		blocks,
		memory.NewTxManager(),
		f.cache,
		f.notifier,
		nil,
		cfg,
		logger.Nop(),
	)
	return f
}

func (f *fixture) blocksOn(t *testing.T, venue int64, date string) []*domain.SlotBlock {
	t.Helper()
	d, err := domain.ParseDate(date)
	require.NoError(t, err)
	blocks, err := f.store.SlotBlocks().ListByVenueAndDate(context.Background(), venue, d)
	require.NoError(t, err)
	return blocks
}

func (f *fixture) putBooking(t *testing.T, id int64, at string, status domain.BookingStatus) {
	t.Helper()
	d, err := domain.ParseDate(testDate)
	require.NoError(t, err)
	bt, err := domain.NewSlotBookingTime(types.MustTimeString(at), 30)
	require.NoError(t, err)
	f.store.PutBooking(domain.Booking{ID: id, VenueID: venueID, UserID: 50, Date: d, Time: bt, Status: status, Courts: 1})
}

func TestBlockSlot_IsIdempotent(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()
	req := models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00", Reason: ptr.Ptr("x")}

	first, err := f.service.BlockSlot(ctx, owner, req)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := f.service.BlockSlot(ctx, owner, req)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)

	assert.Len(t, f.blocksOn(t, venueID, testDate), 1)
	// Событие и сброс кэша только для реально созданной блокировки
	assert.Len(t, f.notifier.all(), 1)
	assert.Equal(t, []string{"2025-06"}, f.cache.calls)
}

func TestBlockSlot_RepeatUpdatesReason(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()

	_, err := f.service.BlockSlot(ctx, owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "09:30", Reason: ptr.Ptr("cleaning")})
	require.NoError(t, err)

	updated, err := f.service.BlockSlot(ctx, admin, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "09:30", Reason: ptr.Ptr("tournament")})
	require.NoError(t, err)
	require.NotNil(t, updated.Reason)
	assert.Equal(t, "tournament", *updated.Reason)
	assert.Equal(t, ownerID, updated.CreatedBy)

	// Без причины существующая причина сохраняется
	kept, err := f.service.BlockSlot(ctx, owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "09:30"})
	require.NoError(t, err)
	require.NotNil(t, kept.Reason)
	assert.Equal(t, "tournament", *kept.Reason)
}

func TestBlockSlot_Authorization(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()
	req := models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00"}

	_, err := f.service.BlockSlot(ctx, otherOwner, req)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.service.BlockSlot(ctx, domain.Caller{UserID: ownerID, Role: domain.RoleNone}, req)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, f.blocksOn(t, venueID, testDate))

	_, err = f.service.BlockSlot(ctx, admin, req)
	assert.NoError(t, err)
}

func TestBlockSlot_Validation(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     models.BlockSlotRequest
		wantErr error
	}{
		{
			name:    "unknown venue",
			req:     models.BlockSlotRequest{VenueID: 99, Date: testDate, Time: "10:00"},
			wantErr: ErrVenueNotFound,
		},
		{
			name:    "bad date",
			req:     models.BlockSlotRequest{VenueID: venueID, Date: "10.06.2025", Time: "10:00"},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "bad time",
			req:     models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10am"},
			wantErr: ErrInvalidTime,
		},
		{
			name:    "time between slots",
			req:     models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:15"},
			wantErr: ErrTimeOutsideHours,
		},
		{
			name:    "time at closing",
			req:     models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "11:00"},
			wantErr: ErrTimeOutsideHours,
		},
		{
			name:    "reason too long",
			req:     models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00", Reason: ptr.Ptr(strings.Repeat("a", domain.MaxBlockReasonLength+1))},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.BlockSlot(ctx, admin, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, f.blocksOn(t, venueID, testDate))
}

func TestBlockSlot_InactiveVenueIsNotFound(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.store.PutVenue(domain.Venue{
		ID:          3,
		OwnerID:     ownerID,
		OpeningTime: types.MustTimeString("09:00"),
		ClosingTime: types.MustTimeString("10:00"),
		Capacity:    1,
		IsActive:    false,
	})

	_, err := f.service.BlockSlot(context.Background(), owner, models.BlockSlotRequest{VenueID: 3, Date: testDate, Time: "09:00"})
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestBlockSlot_AllowedWhenFullByDefault(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	for i := int64(1); i <= 3; i++ {
		f.putBooking(t, i, "10:00", domain.StatusConfirmed)
	}

	block, err := f.service.BlockSlot(context.Background(), owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00"})
	require.NoError(t, err)
	assert.True(t, block.Created)

	// Бронирования не тронуты
	d, _ := domain.ParseDate(testDate)
	bookings, err := f.store.Bookings().ListByVenueAndDate(context.Background(), venueID, d, false)
	require.NoError(t, err)
	assert.Len(t, bookings, 3)
}

func TestBlockSlot_StrictPolicyRejectsFullSlot(t *testing.T) {
	f := newFixture(t, Config{RejectWhenFullyBooked: true}, nil)
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		f.putBooking(t, i, "10:00", domain.StatusConfirmed)
	}
	f.putBooking(t, 4, "09:00", domain.StatusConfirmed)
	f.putBooking(t, 5, "09:00", domain.StatusCancelled)

	_, err := f.service.BlockSlot(ctx, owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00"})
	assert.ErrorIs(t, err, ErrSlotFullyBooked)
	assert.Empty(t, f.blocksOn(t, venueID, testDate))

	// Частично занятый слот блокируется
	block, err := f.service.BlockSlot(ctx, owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "09:00"})
	require.NoError(t, err)
	assert.True(t, block.Created)

	// Уже заблокированный слот возвращается как есть, даже если он заполнился
	f.putBooking(t, 6, "09:00", domain.StatusConfirmed)
	f.putBooking(t, 7, "09:00", domain.StatusPending)
	again, err := f.service.BlockSlot(ctx, owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "09:00"})
	require.NoError(t, err)
	assert.False(t, again.Created)
}

func TestBlockSlot_ConcurrentCallsCreateOneBlock(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.service.BlockSlot(ctx, owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:30"})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if resp.Created {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, created)
	assert.Len(t, f.blocksOn(t, venueID, testDate), 1)
}

// Блокировка и новое бронирование одного слота не координируются: оба проходят,
// слот оказывается одновременно заблокированным и занятым. Строгий режим закрывает только
// порядок "бронирование, затем блокировка".
func TestBlockSlot_RaceWithBookingIsAccepted(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()

	d, err := domain.ParseDate(testDate)
	require.NoError(t, err)
	bt, err := domain.NewSlotBookingTime(types.MustTimeString("10:00"), 30)
	require.NoError(t, err)
	booking := domain.Booking{ID: 1, VenueID: venueID, UserID: 50, Date: d, Time: bt, Status: domain.StatusConfirmed, Courts: 1}

	var wg sync.WaitGroup
	var blockErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, blockErr = f.service.BlockSlot(ctx, owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00"})
	}()
	go func() {
		defer wg.Done()
		f.store.PutBooking(booking)
	}()
	wg.Wait()

	require.NoError(t, blockErr)
	assert.Len(t, f.blocksOn(t, venueID, testDate), 1)

	bookings, err := f.store.Bookings().ListByVenueAndDate(ctx, venueID, d, false)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestBlockFullDay_CountsOnlyNewBlocks(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()
	req := models.BlockFullDayRequest{VenueID: venueID, Date: testDate, Reason: ptr.Ptr("closed")}

	first, err := f.service.BlockFullDay(ctx, owner, req)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Total)
	assert.Equal(t, 4, first.Created)
	assert.Equal(t, 0, first.AlreadyBlocked)
	assert.Empty(t, first.Failed)

	second, err := f.service.BlockFullDay(ctx, owner, req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 4, second.AlreadyBlocked)

	assert.Len(t, f.blocksOn(t, venueID, testDate), 4)

	events := f.notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, events[0].Times)
}

func TestBlockFullDay_ReportsFailedSlots(t *testing.T) {
	f := newFixture(t, Config{}, func(r *memory.SlotBlockRepository) SlotBlockRepository {
		return &failingBlocks{SlotBlockRepository: r, failAt: "09:30"}
	})

	result, err := f.service.BlockFullDay(context.Background(), owner, models.BlockFullDayRequest{VenueID: venueID, Date: testDate})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "09:30", result.Failed[0].Time)
	assert.ErrorIs(t, result.Failed[0].Err, ErrStorage)
	assert.Contains(t, result.Failed[0].Err.Error(), "time=09:30")
}

func TestBlockFullDay_Forbidden(t *testing.T) {
	f := newFixture(t, Config{}, nil)

	_, err := f.service.BlockFullDay(context.Background(), otherOwner, models.BlockFullDayRequest{VenueID: venueID, Date: testDate})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.blocksOn(t, venueID, testDate))
}

func TestBlockMultipleSlots_ReportsPartialFailure(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()

	items := []models.BlockItem{
		{VenueID: venueID, Date: testDate, Time: "09:00"},
		{VenueID: venueID, Date: testDate, Time: "09:45"},      // не на сетке
		{VenueID: otherVenueID, Date: testDate, Time: "08:00"}, // чужая площадка
		{VenueID: venueID, Date: testDate, Time: "10:00"},
		{VenueID: otherVenueID, Date: "2025-06-11", Time: "09:00"}, // та же чужая площадка
	}

	result, err := f.service.BlockMultipleSlots(ctx, owner, items)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 3, result.Failed)
	assert.False(t, result.AllSucceeded())

	require.Len(t, result.Items, 5)
	assert.NoError(t, result.Items[0].Err)
	assert.ErrorIs(t, result.Items[1].Err, ErrTimeOutsideHours)
	assert.ErrorIs(t, result.Items[2].Err, ErrForbidden)
	assert.NoError(t, result.Items[3].Err)
	assert.ErrorIs(t, result.Items[4].Err, ErrForbidden)

	assert.Len(t, f.blocksOn(t, venueID, testDate), 2)
	assert.Empty(t, f.blocksOn(t, otherVenueID, testDate))

	// Одно событие на (площадка, дата)
	events := f.notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, []string{"09:00", "10:00"}, events[0].Times)
}

func TestBlockMultipleSlots_RejectsEmptyAndOversizedBatches(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()

	_, err := f.service.BlockMultipleSlots(ctx, admin, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	items := make([]models.BlockItem, domain.MaxBatchBlockItems+1)
	_, err = f.service.BlockMultipleSlots(ctx, admin, items)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnblockSlot_IsIdempotent(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()

	_, err := f.service.BlockSlot(ctx, owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00"})
	require.NoError(t, err)

	req := models.UnblockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00"}
	ok, err := f.service.UnblockSlot(ctx, owner, req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.blocksOn(t, venueID, testDate))

	ok, err = f.service.UnblockSlot(ctx, owner, req)
	require.NoError(t, err)
	assert.True(t, ok)

	events := f.notifier.all()
	require.Len(t, events, 2)
	assert.Equal(t, domain.SlotEventUnblocked, events[1].Kind)
}

func TestUnblockSlot_RemovesOrphanedBlock(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	ctx := context.Background()
	d, _ := domain.ParseDate(testDate)

	// Блокировка на 18:00 осталась после сокращения часов работы
	require.NoError(t, f.store.SlotBlocks().Create(ctx, &domain.SlotBlock{VenueID: venueID, Date: d, Time: types.MustTimeString("18:00"), CreatedBy: ownerID}))

	ok, err := f.service.UnblockSlot(ctx, owner, models.UnblockSlotRequest{VenueID: venueID, Date: testDate, Time: "18:00"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.blocksOn(t, venueID, testDate))
}

func TestUnblockSlot_Forbidden(t *testing.T) {
	f := newFixture(t, Config{}, nil)

	_, err := f.service.UnblockSlot(context.Background(), otherOwner, models.UnblockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBlockSlot_CacheErrorsAreIgnored(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.cache.err = errors.New("redis: connection refused")

	resp, err := f.service.BlockSlot(context.Background(), owner, models.BlockSlotRequest{VenueID: venueID, Date: testDate, Time: "10:00"})
	require.NoError(t, err)
	assert.True(t, resp.Created)
}
