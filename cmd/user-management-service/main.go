package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Blackdukee/UMS/internal/cache"
	"github.com/Blackdukee/UMS/internal/config"
	"github.com/Blackdukee/UMS/internal/googleauth"
	"github.com/Blackdukee/UMS/internal/mailer"
	"github.com/Blackdukee/UMS/internal/service"
	"github.com/Blackdukee/UMS/internal/storage"
	"github.com/Blackdukee/UMS/internal/storage/postgres"
	transport "github.com/Blackdukee/UMS/internal/transport/http"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("postgres_connected")

	// Redis — хранилище одноразовых кодов.
	otpCache, err := cache.NewRedisCache(cfg.Redis.RedisURL, "")
	if err != nil {
		log.Error("redis_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		str.Close()
		os.Exit(1)
	}
	log.Info("redis_connected")

	// Проверка Google ID-токенов (OIDC-дискавери при старте).
	googleCtx, googleCancel := context.WithTimeout(rootCtx, 10*time.Second)
	googleVerifier, err := googleauth.New(googleCtx, cfg.Google.ClientID)
	googleCancel()
	if err != nil {
		log.Error("google_oidc_init_failed", slog.String("err", err.Error()))
		rootCancel()
		_ = otpCache.Close()
		str.Close()
		os.Exit(1)
	}
	log.Info("google_oidc_initialized")

	// Сервис.
	srvc := service.New(str, cfg.Auth)
	srvc.SetOTPCache(otpCache)
	srvc.SetGoogleVerifier(googleVerifier)
	srvc.SetMailer(buildMailer(cfg.SMTP, log))
	log.Info("service_initialized")

	var ready int32 // 0 — not ready; 1 — ready

	router := transport.NewRouter(srvc, transport.Options{
		Logger:     log,
		Timeout:    cfg.Timeouts.Service,
		ServiceKey: cfg.Auth.ServiceKey,
		Ready: func() bool {
			return atomic.LoadInt32(&ready) == 1
		},
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Фоновая очистка просроченных refresh-токенов.
	startRefreshJanitor(rootCtx, str, log, 30*time.Minute)

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	}

	// Явная очистка перед выходом.
	shutdownCancel()
	rootCancel()
	_ = otpCache.Close()
	str.Close()

	log.Info("service_stopped")
	os.Exit(0)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}

// buildMailer собирает SMTP-мейлер из конфигурации.
// Пустой SMTP host допустим в локальной разработке: письма не отправляются.
func buildMailer(cfg config.SMTPConfig, log *slog.Logger) mailer.Mailer {
	if cfg.Host == "" {
		log.Warn("smtp_not_configured_using_noop_mailer")
		return mailer.Noop{}
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Warn("smtp_invalid_port_using_noop_mailer", slog.String("port", cfg.Port))
		return mailer.Noop{}
	}

	return mailer.NewSMTP(cfg.Host, port, cfg.From, cfg.Username, cfg.Password)
}

// startRefreshJanitor запускает фоновую задачу, которая периодически удаляет
// просроченные refresh-токены из хранилища с помощью storage.DeleteExpiredTokens.
func startRefreshJanitor(ctx context.Context, storage storage.Storage, log *slog.Logger, period time.Duration) {
	if period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := storage.DeleteExpiredTokens(ctx, time.Now().UTC()); err != nil {
					log.Error("refresh_janitor_failed", slog.String("err", err.Error()))
				}
			}
		}
	}()
}
