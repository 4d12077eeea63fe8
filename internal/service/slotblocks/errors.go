package slotblocks

import "errors"

var (
	// ErrVenueNotFound возвращается, когда площадка не найдена или неактивна
	ErrVenueNotFound = errors.New("venue not found")

	// ErrForbidden возвращается, когда вызывающий не администратор и не владелец площадки
	ErrForbidden = errors.New("caller is not allowed to manage this venue")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrInvalidTime возвращается при некорректном времени
	ErrInvalidTime = errors.New("invalid time format, expected HH:MM")

	// ErrTimeOutsideHours возвращается, когда время не совпадает ни с одним слотом площадки
	ErrTimeOutsideHours = errors.New("time is not a slot of the venue")

	// ErrSlotFullyBooked возвращается в строгом режиме, когда все корты слота заняты
	ErrSlotFullyBooked = errors.New("slot is fully booked")

	// ErrStorage возвращается при ошибках хранилища
	ErrStorage = errors.New("service: storage error")
)
