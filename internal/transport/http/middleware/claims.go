package middleware

import (
	"context"

	"github.com/Blackdukee/UMS/internal/service"
)

type ctxKey int

const (
	ctxClaims ctxKey = iota
	ctxServiceAuthorized
)

// withClaims кладёт проверенные клеймы access-токена в контекст.
func withClaims(ctx context.Context, claims *service.TokenClaims) context.Context {
	return context.WithValue(ctx, ctxClaims, claims)
}

// ClaimsFrom возвращает клеймы текущего пользователя, если запрос прошёл
// через RequireAuth с валидным bearer-токеном.
func ClaimsFrom(ctx context.Context) (*service.TokenClaims, bool) {
	claims, ok := ctx.Value(ctxClaims).(*service.TokenClaims)
	return claims, ok
}

// markServiceAuthorized помечает запрос как авторизованный по X-Service-Key.
func markServiceAuthorized(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxServiceAuthorized, true)
}

// IsServiceAuthorized сообщает, прошёл ли запрос межсервисную авторизацию.
func IsServiceAuthorized(ctx context.Context) bool {
	ok, _ := ctx.Value(ctxServiceAuthorized).(bool)
	return ok
}
