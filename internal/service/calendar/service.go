package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/internal/infra/cache/monthsummary"
	venueRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/venue"
)

const (
	minYear = 1970
	maxYear = 9999
)

// Service месячная сводка для календаря: только даты, без деталей по слотам
type Service struct {
	venueRepo   VenueRepository
	bookingRepo BookingRepository
	blockRepo   SlotBlockRepository
	cache       MonthSummaryCache
	logger      Logger
}

// NewService создает новый экземпляр сервиса календаря
func NewService(
	venueRepo VenueRepository,
	bookingRepo BookingRepository,
	blockRepo SlotBlockRepository,
	cache MonthSummaryCache,
	logger Logger,
) *Service {
	return &Service{
		venueRepo:   venueRepo,
		bookingRepo: bookingRepo,
		blockRepo:   blockRepo,
		cache:       cache,
		logger:      logger,
	}
}

// GetBlockedDatesInMonth даты месяца, в которых есть хотя бы одна блокировка
func (s *Service) GetBlockedDatesInMonth(ctx context.Context, venueID int64, year, month int) ([]string, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}

	dates, err := s.blockRepo.ListBlockedDates(ctx, venueID, from, to)
	if err != nil {
		s.logger.Error("GetBlockedDatesInMonth: venue=%d %04d-%02d: %v", venueID, year, month, err)
		return nil, fmt.Errorf("%w: GetBlockedDatesInMonth - venue=%d: %v", ErrStorage, venueID, err)
	}
	return formatDates(dates), nil
}

// GetBookedDatesInMonth даты месяца с активными (не отменёнными и не возвращёнными) бронированиями
func (s *Service) GetBookedDatesInMonth(ctx context.Context, venueID int64, year, month int) ([]string, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}

	dates, err := s.bookingRepo.ListBookedDates(ctx, venueID, from, to)
	if err != nil {
		s.logger.Error("GetBookedDatesInMonth: venue=%d %04d-%02d: %v", venueID, year, month, err)
		return nil, fmt.Errorf("%w: GetBookedDatesInMonth - venue=%d: %v", ErrStorage, venueID, err)
	}
	return formatDates(dates), nil
}

// GetMonthSummary обе выборки одним ответом. Сводка кэшируется; ошибки кэша не мешают чтению.
func (s *Service) GetMonthSummary(ctx context.Context, venueID int64, year, month int) (*domain.MonthSummary, error) {
	s.logger.Info("GetMonthSummary: venue=%d month=%04d-%02d", venueID, year, month)

	if _, _, err := monthBounds(year, month); err != nil {
		s.logger.Warn("GetMonthSummary: invalid month %d-%d: %v", year, month, err)
		return nil, err
	}

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("GetMonthSummary: venue id=%d not found", venueID)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("GetMonthSummary: failed to get venue id=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: GetMonthSummary - failed to get venue: %v", ErrStorage, err)
	}
	if !venue.IsActive {
		s.logger.Warn("GetMonthSummary: venue id=%d is inactive", venueID)
		return nil, ErrVenueNotFound
	}

	cached, found, err := s.cache.Get(ctx, venueID, year, time.Month(month))
	if err != nil {
		s.logger.Warn("GetMonthSummary: cache read failed venue=%d: %v", venueID, err)
	}
	if found {
		return cached, nil
	}

	// Поколение читается до выборки: сброс кэша писателем после этой точки отменит Set
	generation, genErr := s.cache.Generation(ctx, venueID, year, time.Month(month))
	if genErr != nil {
		s.logger.Warn("GetMonthSummary: cache generation read failed venue=%d: %v", venueID, genErr)
	}

	blocked, err := s.GetBlockedDatesInMonth(ctx, venueID, year, month)
	if err != nil {
		return nil, err
	}

	booked, err := s.GetBookedDatesInMonth(ctx, venueID, year, month)
	if err != nil {
		return nil, err
	}

	summary := &domain.MonthSummary{
		VenueID:      venueID,
		Year:         year,
		Month:        month,
		BlockedDates: blocked,
		BookedDates:  booked,
	}

	if err := s.storeSummary(ctx, summary, generation, genErr); err != nil {
		if errors.Is(err, monthsummary.ErrGenerationChanged) {
			s.logger.Info("GetMonthSummary: venue=%d month=%04d-%02d changed while reading, not cached", venueID, year, month)
		} else {
			s.logger.Warn("GetMonthSummary: cache write failed venue=%d: %v", venueID, err)
		}
	}

	s.logger.Info("GetMonthSummary: venue=%d month=%04d-%02d blocked=%d booked=%d",
		venueID, year, month, len(blocked), len(booked))
	return summary, nil
}

func (s *Service) storeSummary(ctx context.Context, summary *domain.MonthSummary, generation int64, genErr error) error {
	if genErr != nil {
		return nil
	}
	return s.cache.Set(ctx, summary, generation)
}

// monthBounds первый и последний день месяца
func monthBounds(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month %d", ErrInvalidMonth, month)
	}
	if year < minYear || year > maxYear {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: year %d", ErrInvalidMonth, year)
	}
	from, to := domain.MonthRange(year, time.Month(month))
	return from, to, nil
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, domain.FormatDate(d))
	}
	return out
}
