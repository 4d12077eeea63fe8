package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/FitKits-SlotService/internal/service/bookings"
)

const (
	msgBookingNotFound   = "бронирование не найдено"
	msgInvalidStatus     = "недопустимый статус бронирования"
	msgInvalidTransition = "бронирование нельзя перевести в этот статус"
)

// BookingError сопоставляет ошибку сервиса бронирований HTTP статусу и сообщению
func BookingError(err error) (int, string) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		return http.StatusNotFound, msgBookingNotFound
	case errors.Is(err, bookings.ErrVenueNotFound):
		return http.StatusNotFound, msgVenueNotFound
	case errors.Is(err, bookings.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, bookings.ErrInvalidStatus):
		return http.StatusBadRequest, msgInvalidStatus
	case errors.Is(err, bookings.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidInput
	case errors.Is(err, bookings.ErrInvalidTransition):
		return http.StatusConflict, msgInvalidTransition
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}
