package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/service"
	"github.com/Blackdukee/UMS/internal/transport/http/httperr"
)

// TokenValidator проверяет access-токен и возвращает его клеймы.
// Реализация — service.Service.
type TokenValidator interface {
	ValidateToken(ctx context.Context, accessToken string) (*service.TokenClaims, error)
}

// RequireAuth — вторая ступень Request Gate: bearer-аутентификация.
// Пути из allowPrefixes и запросы, уже авторизованные по X-Service-Key,
// пропускаются как есть. Для остальных запрос обязан нести валидный
// Bearer-токен; клеймы кладутся в контекст (см. ClaimsFrom).
// Ответ при любом отказе одинаков: 401/unauthenticated.
func RequireAuth(v TokenValidator, allowPrefixes []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matchesAny(r.URL.Path, allowPrefixes) || IsServiceAuthorized(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				httperr.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			claims, err := v.ValidateToken(r.Context(), token)
			if err != nil {
				httperr.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// RequireRole пропускает только пользователей с данной ролью.
// Роль берётся исключительно из клеймов токена в контексте;
// запросы без клеймов получают 401, с чужой ролью — 403.
func RequireRole(role models.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				httperr.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			if claims.Role != role {
				httperr.WriteError(w, r, service.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken извлекает токен из Authorization: Bearer <token>.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}
