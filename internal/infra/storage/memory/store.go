package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

// Store хранилище в памяти для локального запуска и тестов.
// Отдаёт те же ошибки, что и репозитории Postgres, поэтому сервисы не различают драйверы.
type Store struct {
	mu       sync.RWMutex
	venues   map[int64]domain.Venue
	bookings map[int64]domain.Booking
	blocks   map[domain.SlotKey]domain.SlotBlock
	now      func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		venues:   make(map[int64]domain.Venue),
		bookings: make(map[int64]domain.Booking),
		blocks:   make(map[domain.SlotKey]domain.SlotBlock),
		now:      time.Now,
	}
}

// PutVenue добавляет или заменяет площадку
func (s *Store) PutVenue(v domain.Venue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.venues[v.ID] = v
}

// PutBooking добавляет или заменяет бронирование. Так внешний процесс создаёт бронирования.
func (s *Store) PutBooking(b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.Date = domain.NormalizeDate(b.Date)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	s.bookings[b.ID] = b
}

// Venues репозиторий площадок поверх хранилища
func (s *Store) Venues() *VenueRepository {
	return &VenueRepository{store: s}
}

// Bookings репозиторий бронирований поверх хранилища
func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{store: s}
}

// SlotBlocks репозиторий блокировок поверх хранилища
func (s *Store) SlotBlocks() *SlotBlockRepository {
	return &SlotBlockRepository{store: s}
}

func sortDates(dates map[time.Time]struct{}) []time.Time {
	out := make([]time.Time, 0, len(dates))
	for d := range dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(domain.NormalizeDate(from)) && !d.After(domain.NormalizeDate(to))
}

func copyReason(r *string) *string {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}
