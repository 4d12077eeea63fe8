package slotblocks

import (
	"context"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// VenueRepository интерфейс репозитория площадок
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// BookingRepository интерфейс репозитория бронирований (нужен только строгому режиму)
type BookingRepository interface {
	CountActiveAtSlot(ctx context.Context, venueID int64, date time.Time, slotStart, slotEnd types.TimeString) (int, error)
}

// SlotBlockRepository интерфейс репозитория блокировок
type SlotBlockRepository interface {
	Create(ctx context.Context, block *domain.SlotBlock) error
	GetByTuple(ctx context.Context, venueID int64, date time.Time, slotTime types.TimeString) (*domain.SlotBlock, error)
	UpdateReason(ctx context.Context, venueID int64, date time.Time, slotTime types.TimeString, reason *string) (*domain.SlotBlock, error)
	Delete(ctx context.Context, venueID int64, date time.Time, slotTime types.TimeString) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MonthSummaryCache сбрасывает кэш месячной сводки после изменений
type MonthSummaryCache interface {
	Invalidate(ctx context.Context, venueID int64, year int, month time.Month) error
}

// Notifier рассылает события об изменении слотов
type Notifier interface {
	Publish(event domain.SlotEvent)
}

// Metrics счётчики операций блокировки
type Metrics interface {
	IncSlotBlockOp(operation, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
