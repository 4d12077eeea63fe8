package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено на площадке
	ErrBookingNotFound = errors.New("booking not found")

	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("venue not found")

	// ErrForbidden возвращается, когда вызывающий не администратор и не владелец площадки
	ErrForbidden = errors.New("caller is not allowed to manage this venue")

	// ErrInvalidStatus возвращается при попытке установить недопустимый статус
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidTransition возвращается, когда бронирование нельзя перевести в указанный статус
	ErrInvalidTransition = errors.New("booking cannot be moved to this status")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
