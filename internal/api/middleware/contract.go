package middleware

import (
	"context"
	"time"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

// CallerResolver определяет пользователя по bearer токену
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (domain.Caller, error)
}

// HTTPMetrics HTTP метрики
type HTTPMetrics interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
