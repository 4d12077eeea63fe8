package models

import (
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

// BlockSlotRequest запрос на блокировку одного слота
type BlockSlotRequest struct {
	VenueID int64
	Date    string  // YYYY-MM-DD
	Time    string  // HH:MM
	Reason  *string // Опционально
}

// BlockItem элемент пакетной блокировки
type BlockItem struct {
	VenueID int64   `json:"venueId"`
	Date    string  `json:"date"`
	Time    string  `json:"time"`
	Reason  *string `json:"reason,omitempty"`
}

// UnblockSlotRequest запрос на снятие блокировки
type UnblockSlotRequest struct {
	VenueID int64
	Date    string
	Time    string
}

// BlockFullDayRequest запрос на блокировку всего дня
type BlockFullDayRequest struct {
	VenueID int64
	Date    string
	Reason  *string
}

// BlockResponse блокировка слота
type BlockResponse struct {
	ID        string    `json:"id"`
	VenueID   int64     `json:"venueId"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	Created   bool      `json:"created"` // false - слот уже был заблокирован
}

// BatchItemResult результат одного элемента пакета
type BatchItemResult struct {
	Item  BlockItem
	Block *BlockResponse
	Err   error
}

// BatchResult результат пакетной блокировки
type BatchResult struct {
	Items     []BatchItemResult
	Succeeded int
	Failed    int
}

// AllSucceeded true, если все элементы пакета выполнены
func (r *BatchResult) AllSucceeded() bool {
	return r.Failed == 0
}

// FailedSlot слот, который не удалось заблокировать
type FailedSlot struct {
	Time string
	Err  error
}

// FullDayResult результат блокировки всего дня
type FullDayResult struct {
	VenueID        int64
	Date           string
	Total          int // Всего слотов в сетке дня
	Created        int // Созданные блокировки
	AlreadyBlocked int // Слоты, заблокированные ранее
	Blocks         []BlockResponse
	Failed         []FailedSlot
}

// FromDomainBlock конвертирует блокировку в ответ
func FromDomainBlock(block *domain.SlotBlock, created bool) *BlockResponse {
	return &BlockResponse{
		ID:        block.ID,
		VenueID:   block.VenueID,
		Date:      domain.FormatDate(block.Date),
		Time:      block.Time.String(),
		Reason:    block.Reason,
		CreatedBy: block.CreatedBy,
		CreatedAt: block.CreatedAt,
		Created:   created,
	}
}
