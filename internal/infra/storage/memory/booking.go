package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	bookingRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/booking"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// BookingRepository бронирования в памяти
type BookingRepository struct {
	store *Store
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

// ListByVenueAndDate бронирования площадки на дату, по времени начала
func (r *BookingRepository) ListByVenueAndDate(_ context.Context, venueID int64, date time.Time, includeInactive bool) ([]*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	day := domain.NormalizeDate(date)
	out := make([]*domain.Booking, 0)
	for _, b := range r.store.bookings {
		if b.VenueID != venueID || !b.Date.Equal(day) {
			continue
		}
		if !includeInactive && !b.IsActive() {
			continue
		}
		b := b
		out = append(out, &b)
	}

	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Time.Normalize(), out[j].Time.Normalize()
		if ti.Equal(tj) {
			return out[i].ID < out[j].ID
		}
		return ti.IsBefore(tj)
	})
	return out, nil
}

// ListBookedDates даты периода с активными бронированиями
func (r *BookingRepository) ListBookedDates(_ context.Context, venueID int64, from, to time.Time) ([]time.Time, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	dates := make(map[time.Time]struct{})
	for _, b := range r.store.bookings {
		if b.VenueID == venueID && b.IsActive() && inRange(b.Date, from, to) {
			dates[b.Date] = struct{}{}
		}
	}
	return sortDates(dates), nil
}

// CountActiveAtSlot корты, занятые активными бронированиями с началом в [slotStart, slotEnd)
func (r *BookingRepository) CountActiveAtSlot(_ context.Context, venueID int64, date time.Time, slotStart, slotEnd types.TimeString) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	day := domain.NormalizeDate(date)
	total := 0
	for _, b := range r.store.bookings {
		if b.VenueID != venueID || !b.Date.Equal(day) || !b.IsActive() {
			continue
		}
		start := b.Time.Normalize()
		if !start.IsBefore(slotStart) && start.IsBefore(slotEnd) {
			total += b.ConsumedCourts()
		}
	}
	return total, nil
}

// UpdateStatus меняет статус бронирования
func (r *BookingRepository) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = r.store.now()
	r.store.bookings[id] = b
	return nil
}
