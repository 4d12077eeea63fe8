package get_availability

import "errors"

var (
	// ErrVenueNotFound возвращается, когда площадка не найдена или неактивна
	ErrVenueNotFound = errors.New("venue not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrStorage возвращается при ошибках хранилища
	ErrStorage = errors.New("usecase: storage error")
)
