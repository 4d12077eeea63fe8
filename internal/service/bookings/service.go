package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	bookingRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/booking"
	venueRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/venue"
	"github.com/m04kA/FitKits-SlotService/internal/service/bookings/models"
)

// Service административные операции с бронированиями.
// Бронирования создаёт внешний процесс; здесь только просмотр и отмена/возврат, без удаления.
type Service struct {
	bookingRepo BookingRepository
	venueRepo   VenueRepository
	txManager   TransactionManager
	cache       MonthSummaryCache
	notifier    Notifier
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	venueRepo VenueRepository,
	txManager TransactionManager,
	cache MonthSummaryCache,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		venueRepo:   venueRepo,
		txManager:   txManager,
		cache:       cache,
		notifier:    notifier,
		logger:      logger,
	}
}

// GetVenueBookings получает бронирования площадки на дату.
// Доступно администратору и владельцу площадки.
func (s *Service) GetVenueBookings(ctx context.Context, caller domain.Caller, req *models.GetVenueBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetVenueBookings: venue=%d date=%s includeInactive=%t by user=%d",
		req.VenueID, req.Date, req.IncludeInactive, caller.UserID)

	if err := s.checkVenueAccess(ctx, "GetVenueBookings", caller, req.VenueID); err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.ListByVenueAndDate(ctx, req.VenueID, date, req.IncludeInactive)
	if err != nil {
		s.logger.Error("GetVenueBookings: repository error for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: GetVenueBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetVenueBookings: fetched %d bookings for venue=%d", len(bookings), req.VenueID)
	return models.FromDomainBookingList(bookings), nil
}

// GetVenueBooking получает бронирование площадки по ID.
// Бронирование другой площадки считается не найденным.
func (s *Service) GetVenueBooking(ctx context.Context, caller domain.Caller, venueID, bookingID int64) (*models.BookingResponse, error) {
	if err := s.checkVenueAccess(ctx, "GetVenueBooking", caller, venueID); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetVenueBooking: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetVenueBooking: failed to get booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetVenueBooking - repository error: %v", ErrInternal, err)
	}
	if booking.VenueID != venueID {
		s.logger.Warn("GetVenueBooking: booking id=%d belongs to venue=%d, not %d", bookingID, booking.VenueID, venueID)
		return nil, ErrBookingNotFound
	}

	return models.FromDomainBooking(booking), nil
}

// UpdateStatus переводит активное бронирование в cancelled или refunded
func (s *Service) UpdateStatus(ctx context.Context, caller domain.Caller, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: booking id=%d venue=%d status=%s by user=%d", req.BookingID, req.VenueID, req.Status, caller.UserID)

	status, ok := domain.ParseBookingStatus(req.Status)
	if !ok {
		s.logger.Warn("UpdateStatus: invalid status=%q", req.Status)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	if err := s.checkVenueAccess(ctx, "UpdateStatus", caller, req.VenueID); err != nil {
		return nil, err
	}

	var updated *domain.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if booking.VenueID != req.VenueID {
			return bookingRepo.ErrBookingNotFound
		}
		if !booking.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, status)
		}

		if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, status); err != nil {
			return err
		}

		booking.Status = status
		booking.UpdatedAt = time.Now().UTC()
		updated = booking
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Warn("UpdateStatus: booking id=%d not found at venue=%d", req.BookingID, req.VenueID)
			return nil, ErrBookingNotFound
		case errors.Is(err, ErrInvalidTransition):
			s.logger.Warn("UpdateStatus: booking id=%d: %v", req.BookingID, err)
			return nil, err
		default:
			s.logger.Error("UpdateStatus: failed to update booking id=%d: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}
	}

	// Отмена освобождает корт: сводка месяца и сетка дня устарели
	if err := s.cache.Invalidate(ctx, updated.VenueID, updated.Date.Year(), updated.Date.Month()); err != nil {
		s.logger.Warn("UpdateStatus: failed to invalidate month summary venue=%d: %v", updated.VenueID, err)
	}
	if s.notifier != nil {
		s.notifier.Publish(domain.SlotEvent{
			Kind:       domain.SlotEventBooking,
			VenueID:    updated.VenueID,
			Date:       domain.FormatDate(updated.Date),
			Times:      []string{updated.Time.Normalize().String()},
			OccurredAt: time.Now().UTC(),
		})
	}

	s.logger.Info("UpdateStatus: booking id=%d is now %s", updated.ID, updated.Status)
	return models.FromDomainBooking(updated), nil
}

// checkVenueAccess проверяет, что вызывающий - администратор или владелец площадки
func (s *Service) checkVenueAccess(ctx context.Context, op string, caller domain.Caller, venueID int64) error {
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("%s: venue id=%d not found", op, venueID)
			return ErrVenueNotFound
		}
		s.logger.Error("%s: failed to get venue id=%d: %v", op, venueID, err)
		return fmt.Errorf("%w: %s - failed to get venue: %v", ErrInternal, op, err)
	}

	if !caller.CanManageVenue(venue) {
		s.logger.Warn("%s: user=%d is not allowed to manage venue=%d", op, caller.UserID, venueID)
		return ErrForbidden
	}
	return nil
}
