package block_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
)

var errAmbiguousMode = errors.New("exactly one of time, times or fullDay must be set")

type mode int

const (
	modeSingle mode = iota
	modeMultiple
	modeFullDay
)

// BlockSlotsRequest HTTP request model
type BlockSlotsRequest struct {
	Date    string   `json:"date"`
	Time    *string  `json:"time,omitempty"`
	Times   []string `json:"times,omitempty"`
	FullDay bool     `json:"fullDay,omitempty"`
	Reason  *string  `json:"reason,omitempty"`
}

// mode определяет режим блокировки; должен быть задан ровно один
func (r *BlockSlotsRequest) mode() (mode, error) {
	set := 0
	m := modeSingle
	if r.Time != nil {
		set++
	}
	if len(r.Times) > 0 {
		set++
		m = modeMultiple
	}
	if r.FullDay {
		set++
		m = modeFullDay
	}
	if set != 1 {
		return 0, errAmbiguousMode
	}
	return m, nil
}

// ToBatchItems раскладывает times в элементы пакета одной площадки
func (r *BlockSlotsRequest) ToBatchItems(venueID int64) []models.BlockItem {
	items := make([]models.BlockItem, 0, len(r.Times))
	for _, t := range r.Times {
		items = append(items, models.BlockItem{VenueID: venueID, Date: r.Date, Time: t, Reason: r.Reason})
	}
	return items
}

// FailedSlotResponse слот, который не удалось заблокировать
type FailedSlotResponse struct {
	Time   string `json:"time"`
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// FullDayResponse HTTP response model для блокировки всего дня
type FullDayResponse struct {
	VenueID        int64                  `json:"venueId"`
	Date           string                 `json:"date"`
	Total          int                    `json:"total"`
	Created        int                    `json:"created"`
	AlreadyBlocked int                    `json:"alreadyBlocked"`
	Blocks         []models.BlockResponse `json:"blocks"`
	Failed         []FailedSlotResponse   `json:"failed,omitempty"`
}

// FromFullDayResult конвертирует результат и возвращает HTTP статус
func FromFullDayResult(result *models.FullDayResult) (int, *FullDayResponse) {
	resp := &FullDayResponse{
		VenueID:        result.VenueID,
		Date:           result.Date,
		Total:          result.Total,
		Created:        result.Created,
		AlreadyBlocked: result.AlreadyBlocked,
		Blocks:         result.Blocks,
	}
	for _, f := range result.Failed {
		status, msg := handlers.SlotBlockError(f.Err)
		resp.Failed = append(resp.Failed, FailedSlotResponse{Time: f.Time, Status: status, Error: msg})
	}

	if len(resp.Failed) > 0 {
		return http.StatusMultiStatus, resp
	}
	return http.StatusOK, resp
}
