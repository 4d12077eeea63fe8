package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	venueRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/venue"
)

// UseCase use case расчёта доступности слотов площадки на дату. Побочных эффектов нет.
type UseCase struct {
	venueRepo          VenueRepository
	bookingRepo        BookingRepository
	blockRepo          SlotBlockRepository
	defaultGranularity int
	logger             Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	venueRepo VenueRepository,
	bookingRepo BookingRepository,
	blockRepo SlotBlockRepository,
	defaultGranularity int,
	logger Logger,
) *UseCase {
	if defaultGranularity <= 0 {
		defaultGranularity = domain.DefaultSlotGranularityMinutes
	}
	return &UseCase{
		venueRepo:          venueRepo,
		bookingRepo:        bookingRepo,
		blockRepo:          blockRepo,
		defaultGranularity: defaultGranularity,
		logger:             logger,
	}
}

// Execute выполняет use case получения доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	date := domain.NormalizeDate(req.Date)
	uc.logger.Info("GetAvailability: venue=%d, date=%s", req.VenueID, domain.FormatDate(date))

	// 1. Площадка
	venue, err := uc.venueRepo.GetByID(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			uc.logger.Warn("GetAvailability: venue id=%d not found", req.VenueID)
			return nil, ErrVenueNotFound
		}
		uc.logger.Error("GetAvailability: failed to get venue id=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %v", ErrStorage, err)
	}
	if !venue.IsActive {
		uc.logger.Warn("GetAvailability: venue id=%d is inactive", req.VenueID)
		return nil, ErrVenueNotFound
	}

	// 2. Сетка слотов
	granularity := venue.Granularity(uc.defaultGranularity)
	slots, err := domain.GenerateSlots(venue.OpeningTime, venue.ClosingTime, granularity)
	if err != nil {
		uc.logger.Error("GetAvailability: venue id=%d has invalid granularity %d: %v", venue.ID, granularity, err)
		return nil, fmt.Errorf("%w: venue %d: %v", ErrInvalidInput, venue.ID, err)
	}

	// 3. Активные бронирования
	bookings, err := uc.bookingRepo.ListByVenueAndDate(ctx, venue.ID, date, false)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list bookings venue=%d: %v", venue.ID, err)
		return nil, fmt.Errorf("%w: failed to list bookings: %v", ErrStorage, err)
	}

	// 4. Блокировки
	blocks, err := uc.blockRepo.ListByVenueAndDate(ctx, venue.ID, date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list blocks venue=%d: %v", venue.ID, err)
		return nil, fmt.Errorf("%w: failed to list blocks: %v", ErrStorage, err)
	}

	// 5. Сводка по слотам
	result, orphaned, unmatched := aggregateSlots(venue, slots, granularity, bookings, blocks)
	if len(orphaned) > 0 {
		uc.logger.Warn("GetAvailability: venue=%d date=%s has %d blocks outside the slot grid",
			venue.ID, domain.FormatDate(date), len(orphaned))
	}
	if unmatched > 0 {
		uc.logger.Warn("GetAvailability: venue=%d date=%s has %d bookings outside opening hours",
			venue.ID, domain.FormatDate(date), unmatched)
	}

	uc.logger.Info("GetAvailability: venue=%d date=%s, %d slots", venue.ID, domain.FormatDate(date), len(result))

	return &Response{
		VenueID:            venue.ID,
		Date:               date,
		OpeningTime:        venue.OpeningTime,
		ClosingTime:        venue.ClosingTime,
		Capacity:           venue.Capacity,
		GranularityMinutes: granularity,
		Slots:              result,
		OrphanedBlocks:     orphaned,
	}, nil
}
