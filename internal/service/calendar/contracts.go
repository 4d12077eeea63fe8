package calendar

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
	ListBookedDates(ctx context.Context, venueID int64, from, to time.Time) ([]time.Time, error)
}

// SlotBlockRepository интерфейс репозитория блокировок
type SlotBlockRepository interface {
	ListBlockedDates(ctx context.Context, venueID int64, from, to time.Time) ([]time.Time, error)
}

// MonthSummaryCache кэш месячных сводок.
// Set пишет только если поколение, полученное от Generation, не сдвинулось.
type MonthSummaryCache interface {
	Get(ctx context.Context, venueID int64, year int, month time.Month) (*domain.MonthSummary, bool, error)
	Generation(ctx context.Context, venueID int64, year int, month time.Month) (int64, error)
	Set(ctx context.Context, summary *domain.MonthSummary, generation int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
