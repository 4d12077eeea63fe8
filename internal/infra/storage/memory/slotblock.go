package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	slotblockRepo "github.com/m04kA/FitKits-SlotService/internal/infra/storage/slotblock"
	"github.com/m04kA/FitKits-SlotService/pkg/types"
)

// SlotBlockRepository блокировки в памяти. Уникальность (площадка, дата, время) держит ключ map.
type SlotBlockRepository struct {
	store *Store
}

func slotKey(venueID int64, date time.Time, slotTime types.TimeString) domain.SlotKey {
	return domain.SlotKey{VenueID: venueID, Date: domain.FormatDate(date), Time: slotTime}
}

// Create создает блокировку или возвращает slotblock.ErrBlockExists
func (r *SlotBlockRepository) Create(_ context.Context, block *domain.SlotBlock) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := slotKey(block.VenueID, block.Date, block.Time)
	if _, exists := r.store.blocks[key]; exists {
		return slotblockRepo.ErrBlockExists
	}

	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	block.Date = domain.NormalizeDate(block.Date)
	block.CreatedAt = r.store.now()

	stored := *block
	stored.Reason = copyReason(block.Reason)
	r.store.blocks[key] = stored
	return nil
}

// GetByTuple получает блокировку слота
func (r *SlotBlockRepository) GetByTuple(_ context.Context, venueID int64, date time.Time, slotTime types.TimeString) (*domain.SlotBlock, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.blocks[slotKey(venueID, date, slotTime)]
	if !ok {
		return nil, slotblockRepo.ErrBlockNotFound
	}
	b.Reason = copyReason(b.Reason)
	return &b, nil
}

// UpdateReason обновляет причину блокировки
func (r *SlotBlockRepository) UpdateReason(_ context.Context, venueID int64, date time.Time, slotTime types.TimeString, reason *string) (*domain.SlotBlock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := slotKey(venueID, date, slotTime)
	b, ok := r.store.blocks[key]
	if !ok {
		return nil, slotblockRepo.ErrBlockNotFound
	}
	b.Reason = copyReason(reason)
	r.store.blocks[key] = b

	out := b
	out.Reason = copyReason(b.Reason)
	return &out, nil
}

// Delete удаляет блокировку, false если её не было
func (r *SlotBlockRepository) Delete(_ context.Context, venueID int64, date time.Time, slotTime types.TimeString) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := slotKey(venueID, date, slotTime)
	if _, ok := r.store.blocks[key]; !ok {
		return false, nil
	}
	delete(r.store.blocks, key)
	return true, nil
}

// ListByVenueAndDate блокировки площадки на дату по времени
func (r *SlotBlockRepository) ListByVenueAndDate(_ context.Context, venueID int64, date time.Time) ([]*domain.SlotBlock, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	day := domain.FormatDate(date)
	out := make([]*domain.SlotBlock, 0)
	for key, b := range r.store.blocks {
		if key.VenueID != venueID || key.Date != day {
			continue
		}
		b := b
		b.Reason = copyReason(b.Reason)
		out = append(out, &b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Time.IsBefore(out[j].Time) })
	return out, nil
}

// ListBlockedDates даты периода, в которых есть блокировки
func (r *SlotBlockRepository) ListBlockedDates(_ context.Context, venueID int64, from, to time.Time) ([]time.Time, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	dates := make(map[time.Time]struct{})
	for _, b := range r.store.blocks {
		if b.VenueID == venueID && inRange(b.Date, from, to) {
			dates[b.Date] = struct{}{}
		}
	}
	return sortDates(dates), nil
}
