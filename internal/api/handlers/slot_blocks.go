package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks"
	"github.com/m04kA/FitKits-SlotService/internal/service/slotblocks/models"
)

const (
	msgVenueNotFound    = "площадка не найдена"
	msgForbidden        = "нет прав на управление площадкой"
	msgInvalidInput     = "некорректные данные запроса"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime      = "некорректный формат времени, ожидается HH:MM"
	msgTimeOutsideHours = "время не совпадает ни с одним слотом площадки"
	msgSlotFullyBooked  = "все корты слота заняты"
)

// SlotBlockError сопоставляет ошибку сервиса блокировок HTTP статусу и сообщению
func SlotBlockError(err error) (int, string) {
	switch {
	case errors.Is(err, slotblocks.ErrVenueNotFound):
		return http.StatusNotFound, msgVenueNotFound
	case errors.Is(err, slotblocks.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, slotblocks.ErrInvalidDate):
		return http.StatusBadRequest, msgInvalidDate
	case errors.Is(err, slotblocks.ErrInvalidTime):
		return http.StatusBadRequest, msgInvalidTime
	case errors.Is(err, slotblocks.ErrTimeOutsideHours):
		return http.StatusBadRequest, msgTimeOutsideHours
	case errors.Is(err, slotblocks.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidInput
	case errors.Is(err, slotblocks.ErrSlotFullyBooked):
		return http.StatusConflict, msgSlotFullyBooked
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}

// BatchItemResponse результат элемента пакетной блокировки
type BatchItemResponse struct {
	VenueID int64                 `json:"venueId"`
	Date    string                `json:"date"`
	Time    string                `json:"time"`
	Status  int                   `json:"status"`
	Block   *models.BlockResponse `json:"block,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// BatchResponse ответ пакетной блокировки
type BatchResponse struct {
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Items     []BatchItemResponse `json:"items"`
}

// FromBatchResult конвертирует результат пакета и возвращает HTTP статус:
// 200, если все элементы выполнены, иначе 207
func FromBatchResult(result *models.BatchResult) (int, *BatchResponse) {
	resp := &BatchResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Items:     make([]BatchItemResponse, 0, len(result.Items)),
	}

	for _, item := range result.Items {
		itemResp := BatchItemResponse{
			VenueID: item.Item.VenueID,
			Date:    item.Item.Date,
			Time:    item.Item.Time,
			Block:   item.Block,
		}
		if item.Err != nil {
			itemResp.Status, itemResp.Error = SlotBlockError(item.Err)
		} else if item.Block != nil && item.Block.Created {
			itemResp.Status = http.StatusCreated
		} else {
			itemResp.Status = http.StatusOK
		}
		resp.Items = append(resp.Items, itemResp)
	}

	if result.AllSucceeded() {
		return http.StatusOK, resp
	}
	return http.StatusMultiStatus, resp
}
