package authservice

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/jwtauth"
)

// JWTResolver проверяет токены локально, без похода в сервис авторизации
type JWTResolver struct {
	verifier *jwtauth.Verifier
}

// NewJWTResolver создает резолвер поверх общего секрета HS256
func NewJWTResolver(verifier *jwtauth.Verifier) *JWTResolver {
	return &JWTResolver{verifier: verifier}
}

// ResolveCaller разбирает токен: sub - ID пользователя, role - роль
func (r *JWTResolver) ResolveCaller(_ context.Context, token string) (domain.Caller, error) {
	claims, err := r.verifier.Parse(token)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	userID, err := strconv.ParseInt(claims.Sub, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Caller{}, fmt.Errorf("%w: subject %q is not a user id", ErrUnauthorized, claims.Sub)
	}

	return domain.Caller{UserID: userID, Role: domain.ParseRole(claims.Role)}, nil
}
