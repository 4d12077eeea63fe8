package slotblocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	slotblockRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/slotblock"
	venueRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/venue"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// Результаты операций для метрик
const (
	resultCreated  = "created"
	resultExisting = "existing"
	resultDeleted  = "deleted"
	resultAbsent   = "absent"
	resultRejected = "rejected"
	resultError    = "error"
)

// Config настройки контроллера блокировок
type Config struct {
	// DefaultGranularityMinutes шаг слотов для площадок без собственного шага
	DefaultGranularityMinutes int
	// RejectWhenFullyBooked запрещает блокировать слот, все корты которого заняты
	RejectWhenFullyBooked bool
}

// Service контроллер блокировок слотов
type Service struct {
	venueRepo   VenueRepository
	bookingRepo BookingRepository
	blockRepo   SlotBlockRepository
	txManager   TransactionManager
	cache       MonthSummaryCache
	notifier    Notifier
	metrics     Metrics
	cfg         Config
	logger      Logger
}

// NewService создает новый экземпляр сервиса блокировок
func NewService(
	venueRepo VenueRepository,
	bookingRepo BookingRepository,
	blockRepo SlotBlockRepository,
	txManager TransactionManager,
	cache MonthSummaryCache,
	notifier Notifier,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *Service {
	if cfg.DefaultGranularityMinutes <= 0 {
		cfg.DefaultGranularityMinutes = domain.DefaultSlotGranularityMinutes
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		venueRepo:   venueRepo,
		bookingRepo: bookingRepo,
		blockRepo:   blockRepo,
		txManager:   txManager,
		cache:       cache,
		notifier:    notifier,
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger,
	}
}

// BlockSlot блокирует слот. Повторная блокировка не ошибка: возвращается существующая
// блокировка, причина обновляется, если передана новая.
func (s *Service) BlockSlot(ctx context.Context, caller domain.Caller, req models.BlockSlotRequest) (*models.BlockResponse, error) {
	s.logger.Info("BlockSlot: venue=%d date=%s time=%s by user=%d", req.VenueID, req.Date, req.Time, caller.UserID)

	venue, err := s.loadManagedVenue(ctx, "BlockSlot", caller, req.VenueID)
	if err != nil {
		return nil, err
	}

	date, slotTime, err := s.parseSlot(venue, req.Date, req.Time)
	if err != nil {
		s.logger.Warn("BlockSlot: invalid slot venue=%d date=%s time=%s: %v", req.VenueID, req.Date, req.Time, err)
		return nil, err
	}

	reason, err := normalizeReason(req.Reason)
	if err != nil {
		return nil, err
	}

	block, created, err := s.blockOne(ctx, caller, venue, date, slotTime, reason)
	if err != nil {
		return nil, err
	}

	if created {
		s.afterWrite(ctx, domain.SlotEventBlocked, venue.ID, date, []types.TimeString{slotTime})
	}

	s.logger.Info("BlockSlot: venue=%d date=%s time=%s created=%t", venue.ID, req.Date, slotTime, created)
	return models.FromDomainBlock(block, created), nil
}

// BlockMultipleSlots блокирует набор слотов, возможно разных площадок.
// Каждый элемент независим: ошибка одного не отменяет остальные.
func (s *Service) BlockMultipleSlots(ctx context.Context, caller domain.Caller, items []models.BlockItem) (*models.BatchResult, error) {
	s.logger.Info("BlockMultipleSlots: %d items by user=%d", len(items), caller.UserID)

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no slots to block", ErrInvalidInput)
	}
	if len(items) > domain.MaxBatchBlockItems {
		return nil, fmt.Errorf("%w: too many slots in one batch (%d > %d)", ErrInvalidInput, len(items), domain.MaxBatchBlockItems)
	}

	result := &models.BatchResult{Items: make([]models.BatchItemResult, 0, len(items))}
	venues := make(map[int64]*domain.Venue)
	venueErrs := make(map[int64]error)
	changed := newChangeSet()

	for _, item := range items {
		itemResult := models.BatchItemResult{Item: item}

		block, created, date, slotTime, err := s.blockItem(ctx, caller, item, venues, venueErrs)
		if err != nil {
			itemResult.Err = err
			result.Failed++
			s.metrics.IncSlotBlockOp("block_batch", resultError)
		} else {
			itemResult.Block = models.FromDomainBlock(block, created)
			result.Succeeded++
			if created {
				changed.add(item.VenueID, date, slotTime)
			}
		}

		result.Items = append(result.Items, itemResult)
	}

	changed.each(func(venueID int64, date time.Time, times []types.TimeString) {
		s.afterWrite(ctx, domain.SlotEventBlocked, venueID, date, times)
	})

	if result.Failed > 0 {
		s.logger.Warn("BlockMultipleSlots: %d of %d items failed", result.Failed, len(items))
	} else {
		s.logger.Info("BlockMultipleSlots: all %d items succeeded", len(items))
	}
	return result, nil
}

// BlockFullDay блокирует все слоты дня по сетке площадки
func (s *Service) BlockFullDay(ctx context.Context, caller domain.Caller, req models.BlockFullDayRequest) (*models.FullDayResult, error) {
	s.logger.Info("BlockFullDay: venue=%d date=%s by user=%d", req.VenueID, req.Date, caller.UserID)

	venue, err := s.loadManagedVenue(ctx, "BlockFullDay", caller, req.VenueID)
	if err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}

	reason, err := normalizeReason(req.Reason)
	if err != nil {
		return nil, err
	}

	slots, err := s.venueSlots(venue)
	if err != nil {
		s.logger.Error("BlockFullDay: cannot generate slots for venue=%d: %v", venue.ID, err)
		return nil, err
	}

	result := &models.FullDayResult{
		VenueID: venue.ID,
		Date:    domain.FormatDate(date),
		Total:   len(slots),
		Blocks:  make([]models.BlockResponse, 0, len(slots)),
		Failed:  make([]models.FailedSlot, 0),
	}
	createdTimes := make([]types.TimeString, 0, len(slots))

	for _, slotTime := range slots {
		block, created, err := s.blockOne(ctx, caller, venue, date, slotTime, reason)
		if err != nil {
			result.Failed = append(result.Failed, models.FailedSlot{Time: slotTime.String(), Err: err})
			continue
		}

		if created {
			result.Created++
			createdTimes = append(createdTimes, slotTime)
		} else {
			result.AlreadyBlocked++
		}
		result.Blocks = append(result.Blocks, *models.FromDomainBlock(block, created))
	}

	if len(createdTimes) > 0 {
		s.afterWrite(ctx, domain.SlotEventBlocked, venue.ID, date, createdTimes)
	}

	if len(result.Failed) > 0 {
		s.logger.Warn("BlockFullDay: venue=%d date=%s created=%d already=%d failed=%d",
			venue.ID, result.Date, result.Created, result.AlreadyBlocked, len(result.Failed))
	} else {
		s.logger.Info("BlockFullDay: venue=%d date=%s created=%d already=%d",
			venue.ID, result.Date, result.Created, result.AlreadyBlocked)
	}
	return result, nil
}

// UnblockSlot снимает блокировку слота. Отсутствие блокировки не ошибка:
// после вызова слот в любом случае не заблокирован, поэтому результат всегда true.
func (s *Service) UnblockSlot(ctx context.Context, caller domain.Caller, req models.UnblockSlotRequest) (bool, error) {
	s.logger.Info("UnblockSlot: venue=%d date=%s time=%s by user=%d", req.VenueID, req.Date, req.Time, caller.UserID)

	venue, err := s.loadManagedVenue(ctx, "UnblockSlot", caller, req.VenueID)
	if err != nil {
		return false, err
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}

	// Время не сверяется с текущей сеткой: так снимаются блокировки, осиротевшие после смены часов работы
	slotTime, err := types.NewTimeStringFromString(req.Time)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidTime, req.Time)
	}

	deleted, err := s.blockRepo.Delete(ctx, venue.ID, date, slotTime)
	if err != nil {
		s.metrics.IncSlotBlockOp("unblock", resultError)
		s.logger.Error("UnblockSlot: delete failed venue=%d date=%s time=%s: %v", venue.ID, req.Date, slotTime, err)
		return false, fmt.Errorf("%w: UnblockSlot - venue=%d date=%s time=%s: %v", ErrStorage, venue.ID, req.Date, slotTime, err)
	}

	if deleted {
		s.metrics.IncSlotBlockOp("unblock", resultDeleted)
		s.afterWrite(ctx, domain.SlotEventUnblocked, venue.ID, date, []types.TimeString{slotTime})
	} else {
		s.metrics.IncSlotBlockOp("unblock", resultAbsent)
	}

	s.logger.Info("UnblockSlot: venue=%d date=%s time=%s deleted=%t", venue.ID, req.Date, slotTime, deleted)
	return true, nil
}

// blockItem обрабатывает один элемент пакета. Площадки и ошибки доступа кэшируются на время пакета.
func (s *Service) blockItem(
	ctx context.Context,
	caller domain.Caller,
	item models.BlockItem,
	venues map[int64]*domain.Venue,
	venueErrs map[int64]error,
) (*domain.SlotBlock, bool, time.Time, types.TimeString, error) {
	if err, failed := venueErrs[item.VenueID]; failed {
		return nil, false, time.Time{}, types.TimeString{}, err
	}

	venue, ok := venues[item.VenueID]
	if !ok {
		v, err := s.loadManagedVenue(ctx, "BlockMultipleSlots", caller, item.VenueID)
		if err != nil {
			venueErrs[item.VenueID] = err
			return nil, false, time.Time{}, types.TimeString{}, err
		}
		venues[item.VenueID] = v
		venue = v
	}

	date, slotTime, err := s.parseSlot(venue, item.Date, item.Time)
	if err != nil {
		return nil, false, time.Time{}, types.TimeString{}, err
	}

	reason, err := normalizeReason(item.Reason)
	if err != nil {
		return nil, false, time.Time{}, types.TimeString{}, err
	}

	block, created, err := s.blockOne(ctx, caller, venue, date, slotTime, reason)
	return block, created, date, slotTime, err
}

// blockOne создает блокировку слота или возвращает существующую.
// Возвращает true, если блокировка создана этим вызовом.
func (s *Service) blockOne(
	ctx context.Context,
	caller domain.Caller,
	venue *domain.Venue,
	date time.Time,
	slotTime types.TimeString,
	reason *string,
) (*domain.SlotBlock, bool, error) {
	var (
		block   *domain.SlotBlock
		created bool
	)

	write := func(ctx context.Context) error {
		var err error
		if s.cfg.RejectWhenFullyBooked {
			existing, err := s.blockRepo.GetByTuple(ctx, venue.ID, date, slotTime)
			switch {
			case err == nil:
				block, err = s.reuseBlock(ctx, existing, reason)
				return err
			case !errors.Is(err, slotblockRepo.ErrBlockNotFound):
				return err
			}

			if err := s.checkCapacity(ctx, venue, date, slotTime); err != nil {
				return err
			}
		}

		block, created, err = s.createOrReuse(ctx, caller, venue, date, slotTime, reason)
		return err
	}

	var err error
	if s.cfg.RejectWhenFullyBooked {
		err = s.txManager.DoSerializable(ctx, write)
	} else {
		err = write(ctx)
	}

	if err != nil {
		if errors.Is(err, ErrSlotFullyBooked) {
			s.metrics.IncSlotBlockOp("block", resultRejected)
			s.logger.Warn("blockOne: slot venue=%d date=%s time=%s is fully booked", venue.ID, domain.FormatDate(date), slotTime)
			return nil, false, err
		}
		s.metrics.IncSlotBlockOp("block", resultError)
		s.logger.Error("blockOne: storage error venue=%d date=%s time=%s: %v", venue.ID, domain.FormatDate(date), slotTime, err)
		return nil, false, fmt.Errorf("%w: BlockSlot - venue=%d date=%s time=%s: %v", ErrStorage, venue.ID, domain.FormatDate(date), slotTime, err)
	}

	if created {
		s.metrics.IncSlotBlockOp("block", resultCreated)
	} else {
		s.metrics.IncSlotBlockOp("block", resultExisting)
	}
	return block, created, nil
}

// createOrReuse вставляет блокировку; конфликт уникальности означает, что слот уже заблокирован.
// Если блокировку сняли между вставкой и чтением, вставка повторяется один раз.
func (s *Service) createOrReuse(
	ctx context.Context,
	caller domain.Caller,
	venue *domain.Venue,
	date time.Time,
	slotTime types.TimeString,
	reason *string,
) (*domain.SlotBlock, bool, error) {
	const attempts = 2

	var lastErr error
	for i := 0; i < attempts; i++ {
		candidate := &domain.SlotBlock{
			VenueID:   venue.ID,
			Date:      date,
			Time:      slotTime,
			Reason:    reason,
			CreatedBy: caller.UserID,
		}

		err := s.blockRepo.Create(ctx, candidate)
		if err == nil {
			return candidate, true, nil
		}
		if !errors.Is(err, slotblockRepo.ErrBlockExists) {
			return nil, false, err
		}

		existing, err := s.blockRepo.GetByTuple(ctx, venue.ID, date, slotTime)
		if errors.Is(err, slotblockRepo.ErrBlockNotFound) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, false, err
		}

		block, err := s.reuseBlock(ctx, existing, reason)
		if errors.Is(err, slotblockRepo.ErrBlockNotFound) {
			lastErr = err
			continue
		}
		return block, false, err
	}

	return nil, false, lastErr
}

// reuseBlock обновляет причину существующей блокировки, если передана новая
func (s *Service) reuseBlock(ctx context.Context, existing *domain.SlotBlock, reason *string) (*domain.SlotBlock, error) {
	if reason == nil || (existing.Reason != nil && *existing.Reason == *reason) {
		return existing, nil
	}
	return s.blockRepo.UpdateReason(ctx, existing.VenueID, existing.Date, existing.Time, reason)
}

// checkCapacity возвращает ErrSlotFullyBooked, если активные бронирования занимают все корты слота
func (s *Service) checkCapacity(ctx context.Context, venue *domain.Venue, date time.Time, slotTime types.TimeString) error {
	granularity := venue.Granularity(s.cfg.DefaultGranularityMinutes)
	endMinutes := slotTime.Minutes() + granularity
	if endMinutes > types.MinutesPerDay {
		endMinutes = types.MinutesPerDay
	}
	slotEnd, err := types.NewTimeStringFromMinutes(endMinutes)
	if err != nil {
		return err
	}

	booked, err := s.bookingRepo.CountActiveAtSlot(ctx, venue.ID, date, slotTime, slotEnd)
	if err != nil {
		return err
	}
	if booked >= venue.Capacity {
		return fmt.Errorf("%w: %d of %d courts booked", ErrSlotFullyBooked, booked, venue.Capacity)
	}
	return nil
}

// loadManagedVenue получает площадку и проверяет, что вызывающий может ей управлять
func (s *Service) loadManagedVenue(ctx context.Context, op string, caller domain.Caller, venueID int64) (*domain.Venue, error) {
	if caller.Role == domain.RoleNone || caller.Role == "" {
		s.logger.Warn("%s: user=%d has no management role", op, caller.UserID)
		return nil, ErrForbidden
	}

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("%s: venue id=%d not found", op, venueID)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("%s: failed to get venue id=%d: %v", op, venueID, err)
		return nil, fmt.Errorf("%w: %s - failed to get venue: %v", ErrStorage, op, err)
	}

	if !venue.IsActive {
		s.logger.Warn("%s: venue id=%d is inactive", op, venueID)
		return nil, ErrVenueNotFound
	}

	if !caller.CanManageVenue(venue) {
		s.logger.Warn("%s: user=%d role=%s cannot manage venue=%d", op, caller.UserID, caller.Role, venueID)
		return nil, ErrForbidden
	}

	return venue, nil
}

// parseSlot разбирает дату и время и проверяет, что время - начало слота площадки
func (s *Service) parseSlot(venue *domain.Venue, rawDate, rawTime string) (time.Time, types.TimeString, error) {
	date, err := domain.ParseDate(rawDate)
	if err != nil {
		return time.Time{}, types.TimeString{}, fmt.Errorf("%w: %q", ErrInvalidDate, rawDate)
	}

	slotTime, err := types.NewTimeStringFromString(rawTime)
	if err != nil {
		return time.Time{}, types.TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTime, rawTime)
	}

	slots, err := s.venueSlots(venue)
	if err != nil {
		return time.Time{}, types.TimeString{}, err
	}
	if !domain.IsOnGrid(slotTime, slots) {
		return time.Time{}, types.TimeString{}, fmt.Errorf("%w: %s for venue %d (%s-%s)",
			ErrTimeOutsideHours, slotTime, venue.ID, venue.OpeningTime, venue.ClosingTime)
	}

	return date, slotTime, nil
}

func (s *Service) venueSlots(venue *domain.Venue) ([]types.TimeString, error) {
	slots, err := domain.GenerateSlots(venue.OpeningTime, venue.ClosingTime, venue.Granularity(s.cfg.DefaultGranularityMinutes))
	if err != nil {
		return nil, fmt.Errorf("%w: venue %d: %v", ErrInvalidInput, venue.ID, err)
	}
	return slots, nil
}

// afterWrite сбрасывает кэш месячной сводки и оповещает подписчиков.
// Ошибки кэша не влияют на результат операции.
func (s *Service) afterWrite(ctx context.Context, kind domain.SlotEventKind, venueID int64, date time.Time, times []types.TimeString) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, venueID, date.Year(), date.Month()); err != nil {
			s.logger.Warn("afterWrite: failed to invalidate month summary venue=%d month=%s: %v", venueID, date.Format("2006-01"), err)
		}
	}

	if s.notifier == nil {
		return
	}

	formatted := make([]string, len(times))
	for i, t := range times {
		formatted[i] = t.String()
	}
	s.notifier.Publish(domain.SlotEvent{
		Kind:       kind,
		VenueID:    venueID,
		Date:       domain.FormatDate(date),
		Times:      formatted,
		OccurredAt: time.Now().UTC(),
	})
}

// normalizeReason обрезает пробелы; пустая причина равна отсутствию причины
func normalizeReason(reason *string) (*string, error) {
	if reason == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > domain.MaxBlockReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxBlockReasonLength)
	}
	return &trimmed, nil
}

type nopMetrics struct{}

func (nopMetrics) IncSlotBlockOp(string, string) {}
