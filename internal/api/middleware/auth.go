package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/FitKits-SlotService/internal/api/handlers"
	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

type callerKey struct{}

// WithCaller кладет вызывающего в контекст
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext достает вызывающего из контекста
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(domain.Caller)
	return caller, ok
}

// Auth требует заголовок Authorization: Bearer <token> и кладет вызывающего в контекст.
// Роль не проверяется: права на площадку проверяют сервисы.
func Auth(resolver CallerResolver, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				logger.Warn("%s %s - missing bearer token", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w)
				return
			}

			caller, err := resolver.ResolveCaller(r.Context(), token)
			if err != nil {
				logger.Warn("%s %s - token rejected: %v", r.Method, r.URL.Path, err)
				handlers.RespondUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// bearerToken извлекает токен из заголовка; браузерный websocket не умеет заголовки, поэтому допускается ?access_token=
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}

	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, true
	}
	return "", false
}
