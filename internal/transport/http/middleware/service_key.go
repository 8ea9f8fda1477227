package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/Blackdukee/UMS/internal/service"
	"github.com/Blackdukee/UMS/internal/transport/http/httperr"
)

// ServiceKey — первая ступень Request Gate: межсервисная авторизация.
// Для путей из prefixes запрос обязан нести заголовок X-Service-Key,
// равный общему секрету; успешная проверка помечает запрос
// pre-authorized, и вторая ступень (RequireAuth) его пропускает.
// Остальные пути мидлвар не трогает.
func ServiceKey(key string, prefixes []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matchesAny(r.URL.Path, prefixes) {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get("X-Service-Key")
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				httperr.WriteError(w, r, service.ErrInvalidCredentials)
				return
			}

			next.ServeHTTP(w, r.WithContext(markServiceAuthorized(r.Context())))
		})
	}
}
