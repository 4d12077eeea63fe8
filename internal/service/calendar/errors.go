package calendar

import "errors"

var (
	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("venue not found")

	// ErrInvalidMonth возвращается при некорректном годе или месяце
	ErrInvalidMonth = errors.New("invalid year or month")

	// ErrStorage возвращается при ошибках хранилища
	ErrStorage = errors.New("service: storage error")
)
