package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/pkg/log"
	"github.com/Blackdukee/UMS/internal/storage"
)

// UserSearchFilter — параметры административного поиска пользователей.
type UserSearchFilter struct {
	Role     *models.Role
	IsActive *bool
	Page     int
	Limit    int
}

// SearchUsers возвращает страницу пользователей по фильтру.
// Значения по умолчанию: page=1, limit=10.
func (s *Service) SearchUsers(ctx context.Context, filter UserSearchFilter) ([]*models.User, error) {
	const op = "service.admin.SearchUsers"

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	users, err := s.storage.ListUsers(ctx, storage.UserFilter{
		Role:     filter.Role,
		IsActive: filter.IsActive,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// UserByID возвращает пользователя для административного просмотра.
func (s *Service) UserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "service.admin.UserByID"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateUser обновляет имя пользователя от имени администратора.
func (s *Service) UpdateUser(ctx context.Context, id int64, update ProfileUpdate) (*models.User, error) {
	const op = "service.admin.UpdateUser"

	if update.FirstName == nil && update.LastName == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UpdateUser(ctx, id, storage.UserUpdate{
		FirstName: update.FirstName,
		LastName:  update.LastName,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// SetUserRole меняет роль пользователя.
func (s *Service) SetUserRole(ctx context.Context, id int64, role string) (*models.User, error) {
	const op = "service.admin.SetUserRole"

	parsed, ok := models.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRole)
	}

	user, err := s.storage.UpdateUser(ctx, id, storage.UserUpdate{Role: &parsed})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_role_changed",
		slog.String("op", op),
		slog.Int64("user_id", id),
		slog.String("role", parsed.String()),
	)

	return user, nil
}

// SuspendUser деактивирует учётную запись и отзывает все активные
// refresh-токены: выданные access-токены доживают свой TTL, но обновить
// сессию пользователь уже не сможет.
func (s *Service) SuspendUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "service.admin.SuspendUser"

	inactive := false
	user, err := s.storage.UpdateUser(ctx, id, storage.UserUpdate{IsActive: &inactive})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RevokeAllForUser(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_suspended",
		slog.String("op", op),
		slog.Int64("user_id", id),
	)

	return user, nil
}

// ActivateUser возвращает учётную запись в активное состояние.
func (s *Service) ActivateUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "service.admin.ActivateUser"

	active := true
	user, err := s.storage.UpdateUser(ctx, id, storage.UserUpdate{IsActive: &active})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// DeleteUser удаляет пользователя от имени администратора.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	const op = "service.admin.DeleteUser"

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_deleted",
		slog.String("op", op),
		slog.Int64("user_id", id),
	)

	return nil
}

// ResetUserPassword ставит пользователю новый пароль от имени администратора
// (без проверки старого) и отзывает все активные refresh-токены.
func (s *Service) ResetUserPassword(ctx context.Context, id int64, newPassword string) error {
	const op = "service.admin.ResetUserPassword"

	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.storage.UpdateUser(ctx, id, storage.UserUpdate{PasswordHash: &hashed}); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RevokeAllForUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
