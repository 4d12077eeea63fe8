package authservice

import "errors"

var (
	// ErrUnauthorized возвращается, когда токен не принят
	ErrUnauthorized = errors.New("authservice: token is not valid")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("authservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("authservice client: invalid response")
)
