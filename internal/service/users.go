package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/storage"
)

// ProfileUpdate — частичное обновление собственного профиля:
// обновляются только поля с непустыми указателями.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
}

// Profile возвращает профиль пользователя по ID.
func (s *Service) Profile(ctx context.Context, userID int64) (*models.User, error) {
	const op = "service.users.Profile"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile выполняет частичное обновление собственного профиля.
// Роль и is_active через этот метод не меняются.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*models.User, error) {
	const op = "service.users.UpdateProfile"

	if update.FirstName == nil && update.LastName == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if update.FirstName != nil && *update.FirstName == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UpdateUser(ctx, userID, storage.UserUpdate{
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

// ChangePassword меняет пароль пользователя после проверки текущего.
// Аккаунты без локального пароля (вход только через Google) получают
// ErrInvalidCredentials. После смены все активные refresh-токены отзываются.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	const op = "service.users.ChangePassword"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if user.PasswordHash == nil || !checkPassword(*user.PasswordHash, oldPassword) {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.storage.UpdateUser(ctx, userID, storage.UserUpdate{PasswordHash: &hashed}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteAccount удаляет собственную учётную запись.
// Токены и уведомления удаляются каскадно на уровне схемы БД.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	const op = "service.users.DeleteAccount"

	if err := s.storage.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
