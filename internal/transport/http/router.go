package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/service"
	"github.com/Blackdukee/UMS/internal/transport/http/handlers"
	"github.com/Blackdukee/UMS/internal/transport/http/middleware"
)

// basePath — префикс всех доменных маршрутов сервиса.
const basePath = "/api/v1/ums"

// serviceKeyPrefixes — межсервисные пути, требующие X-Service-Key.
var serviceKeyPrefixes = []string{
	basePath + "/auth/validate",
	basePath + "/notifications/relay",
}

// allowPrefixes — пути, не требующие bearer-токена:
// публичные auth-эндпоинты, relay (его уже проверил ServiceKey),
// swagger и служебные эндпоинты.
var allowPrefixes = []string{
	basePath + "/auth",
	basePath + "/notifications/relay",
	"/swagger",
	"/livez",
	"/healthz",
	"/metrics",
}

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger     *slog.Logger
	Timeout    time.Duration
	ServiceKey string
	// Ready — readiness-проба для /healthz; nil означает "всегда готов".
	Ready func() bool
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
// Request Gate — две ступени: ServiceKey (межсервисные пути), затем
// RequireAuth (все остальные, кроме allow-list).
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // per-route метрики
		middleware.ServiceKey(opts.ServiceKey, serviceKeyPrefixes),
		middleware.RequireAuth(svc, allowPrefixes),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Служебные эндпоинты.
	root.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready == nil || opts.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	root.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Зависимости хендлеров.
	h := handlers.New(svc)

	sub := chi.NewRouter()
	registerRoutes(sub, h)
	root.Mount(basePath, sub)

	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// auth (публичные + межсервисный validate)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/google-login", h.GoogleLogin)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/auth/logout", h.Logout)
	r.Post("/auth/forgot-password", h.ForgotPassword)
	r.Post("/auth/reset-password", h.ResetPassword)
	r.Post("/auth/validate", h.Validate)

	// собственный профиль
	r.Get("/users/me", h.Me)
	r.Patch("/users/me", h.UpdateMe)
	r.Post("/users/me/change-password", h.ChangePassword)
	r.Delete("/users/me", h.DeleteMe)

	// уведомления: relay — межсервисный, остальное — только для преподавателей
	r.Route("/notifications", func(r chi.Router) {
		r.Post("/relay", h.Relay)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleEducator))
			r.Get("/", h.MyNotifications)
			r.Get("/unread-count", h.UnreadCount)
			r.Post("/{id}/read", h.MarkNotificationRead)
			r.Post("/read-all", h.MarkAllNotificationsRead)
		})
	})

	// административные операции
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleAdmin))
		r.Get("/", h.SearchUsers)
		r.Get("/{id}", h.AdminUserByID)
		r.Patch("/{id}", h.AdminUpdateUser)
		r.Put("/{id}/role", h.SetUserRole)
		r.Post("/{id}/suspend", h.SuspendUser)
		r.Post("/{id}/activate", h.ActivateUser)
		r.Delete("/{id}", h.AdminDeleteUser)
		r.Post("/{id}/reset-password", h.AdminResetPassword)
	})
}
