package monthsummary

import "errors"

var (
	// ErrCacheRead возвращается при ошибке чтения из Redis
	ErrCacheRead = errors.New("monthsummary.cache: failed to read")

	// ErrCacheWrite возвращается при ошибке записи в Redis
	ErrCacheWrite = errors.New("monthsummary.cache: failed to write")

	// ErrCorruptEntry возвращается, когда значение в кэше не разбирается
	ErrCorruptEntry = errors.New("monthsummary.cache: corrupt entry")

	// ErrGenerationChanged возвращается Set, если сводку инвалидировали после чтения поколения
	ErrGenerationChanged = errors.New("monthsummary.cache: generation changed")
)
