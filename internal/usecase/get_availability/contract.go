package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

// VenueRepository интерфейс репозитория площадок
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListByVenueAndDate бронирования площадки на дату; includeInactive=false исключает отменённые и возвращённые
	ListByVenueAndDate(ctx context.Context, venueID int64, date time.Time, includeInactive bool) ([]*domain.Booking, error)
}

// SlotBlockRepository интерфейс репозитория блокировок
type SlotBlockRepository interface {
	ListByVenueAndDate(ctx context.Context, venueID int64, date time.Time) ([]*domain.SlotBlock, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
