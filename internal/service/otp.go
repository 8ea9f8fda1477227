package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/Blackdukee/UMS/internal/cache"
	"github.com/Blackdukee/UMS/internal/pkg/log"
	"github.com/Blackdukee/UMS/internal/pkg/redact"
	"github.com/Blackdukee/UMS/internal/storage"
)

// otpDigits — длина одноразового кода.
const otpDigits = 6

// ForgotPassword запускает восстановление пароля: генерирует одноразовый
// код, сохраняет его с TTL и отправляет на почту.
// Несуществующий email не является ошибкой: ответ одинаков в обоих случаях,
// чтобы не раскрывать базу адресов.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "service.otp.ForgotPassword"

	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if s.otp == nil {
		return fmt.Errorf("%s: otp cache is not configured", op)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Info("otp_request_unknown_email",
				slog.String("op", op),
				slog.String("email", redact.Email(normEmail)),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.otp.Set(ctx, user.ID, code, s.cfg.OTPTTL); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	body := fmt.Sprintf(
		"Your password reset code is %s. It expires in %d minutes.",
		code, int(s.cfg.OTPTTL.Minutes()),
	)
	if err := s.mailer.Send(user.Email, "Password Reset Code", body); err != nil {
		lg.Error("otp_mail_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(normEmail)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("otp_sent",
		slog.String("op", op),
		slog.Int64("user_id", user.ID),
		slog.String("otp", redact.OTP()),
	)

	return nil
}

// ResetPassword завершает восстановление: сверяет одноразовый код и ставит
// новый пароль. Код одноразовый — после успешной смены он удаляется,
// а все активные refresh-токены пользователя отзываются.
// Неверный/истёкший код и неизвестный email неразличимы: всегда ErrInvalidOTP.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	const op = "service.otp.ResetPassword"

	normEmail, err := validateEmail(email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidOTP)
	}

	if s.otp == nil {
		return fmt.Errorf("%s: otp cache is not configured", op)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidOTP)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	stored, err := s.otp.Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidOTP)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return fmt.Errorf("%s: %w", op, ErrInvalidOTP)
	}

	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.storage.UpdateUser(ctx, user.ID, storage.UserUpdate{PasswordHash: &hashed}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.otp.Del(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RevokeAllForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// generateOTP генерирует криптослучайный код из otpDigits десятичных цифр.
func generateOTP() (string, error) {
	const op = "service.otp.generateOTP"

	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Sprintf("%0*d", otpDigits, n), nil
}
