// service содержит бизнес-логику сервиса управления пользователями:
// регистрацию/аутентификацию (пароль и Google), выпуск/проверку токенов,
// восстановление пароля по OTP, профили, уведомления и административные
// операции. Работа с хранилищами идёт через интерфейсы из пакетов
// storage и cache.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданные зависимости потокобезопасны.
//   - Ошибки возвращаются и далее маппятся
//     транспортом на HTTP-коды (см. комментарии к переменным ошибок ниже).
package service

import (
	"context"
	"errors"

	"github.com/Blackdukee/UMS/internal/cache"
	"github.com/Blackdukee/UMS/internal/config"
	"github.com/Blackdukee/UMS/internal/googleauth"
	"github.com/Blackdukee/UMS/internal/mailer"
	"github.com/Blackdukee/UMS/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна, пользователь не найден
	// или аккаунт деактивирован. Причины неразличимы для вызывающей стороны.
	// Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен (access/refresh/Google ID) некорректен по
	// формату/подписи или отсутствует в хранилище. Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — токен отозван (logout/rotation/compromise) и недействителен
	// независимо от срока. Транспорт: HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	// Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrRefreshTokenCollision — исчерпаны попытки сгенерировать уникальный refresh-токен
	// (редкий случай коллизий при сохранении хэша в БД после нескольких ретраев).
	// Транспорт: HTTP 500.
	ErrRefreshTokenCollision = errors.New("refresh token collision")

	// ErrInvalidEmail — e-mail имеет некорректный формат или не проходит политику валидации.
	// Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности.
	// Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой.
	// Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidRole — роль не входит в допустимый набор.
	// Транспорт: HTTP 400.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidOTP — одноразовый код неверен, истёк или не запрашивался.
	// Транспорт: HTTP 400.
	ErrInvalidOTP = errors.New("invalid otp")

	// ErrInvalidArgument — некорректные параметры запроса.
	// Транспорт: HTTP 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound — запрошенный объект не существует.
	// Транспорт: HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrForbidden — операция запрещена для текущего пользователя
	// (например, чужое уведомление). Транспорт: HTTP 403.
	ErrForbidden = errors.New("forbidden")
)

// GoogleVerifier проверяет Google ID-токен и возвращает его клеймы.
// Реализация — internal/googleauth.
type GoogleVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*googleauth.Claims, error)
}

// Service описывает бизнес-логику сервиса управления пользователями.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig
	otp     cache.OTPCache // может быть nil, если Redis не сконфигурирован
	mailer  mailer.Mailer
	google  GoogleVerifier // может быть nil, если Google-вход не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
		mailer:  mailer.Noop{},
	}
}

// SetOTPCache устанавливает хранилище одноразовых кодов.
func (s *Service) SetOTPCache(c cache.OTPCache) {
	s.otp = c
}

// SetMailer устанавливает отправщик писем (по умолчанию — Noop).
func (s *Service) SetMailer(m mailer.Mailer) {
	if m != nil {
		s.mailer = m
	}
}

// SetGoogleVerifier устанавливает проверку Google ID-токенов.
func (s *Service) SetGoogleVerifier(v GoogleVerifier) {
	s.google = v
}
