package bookings

import (
	"context"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByVenueAndDate(ctx context.Context, venueID int64, date time.Time, includeInactive bool) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// VenueRepository интерфейс репозитория площадок
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MonthSummaryCache сбрасывает кэш месячной сводки
type MonthSummaryCache interface {
	Invalidate(ctx context.Context, venueID int64, year int, month time.Month) error
}

// Notifier рассылает события об изменении слотов
type Notifier interface {
	Publish(event domain.SlotEvent)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
