package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/pkg/log"
	"github.com/Blackdukee/UMS/internal/storage"
)

// Действия, которые принимает relay-эндпоинт от других сервисов.
const (
	RelayEnrollUser       = "ENROLL_USER"
	RelayNewEarnings      = "NEW_EARNINGS"
	RelayEarningsRefunded = "EARNINGS_REFUNDED"
	RelayRemoveEnrollment = "REMOVE_ENROLLMENT"
)

// RelayInput — запрос межсервисного relay-эндпоинта.
// Amount/TotalPendingEarnings/Reason обязательны только для части действий.
type RelayInput struct {
	Action               string
	UserID               int64
	CourseID             string
	TransactionID        string
	Amount               *float64
	TotalPendingEarnings *float64
	Reason               string
}

// ProcessRelay обрабатывает уведомление от другого сервиса.
// Возвращает (false, nil), если пользователь не найден или доставка не
// удалась: для вызывающего сервиса это не ошибка.
// Ошибки: ErrInvalidArgument при неизвестном действии или недостающих полях.
func (s *Service) ProcessRelay(ctx context.Context, in RelayInput) (bool, error) {
	const op = "service.notifications.ProcessRelay"

	lg := log.From(ctx)

	if in.UserID <= 0 || in.CourseID == "" || in.TransactionID == "" {
		return false, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var (
		title      string
		message    string
		nType      models.NotificationType
		additional *string
	)

	switch in.Action {
	case RelayEnrollUser:
		title = "Course Enrollment Successful"
		message = fmt.Sprintf("You have been successfully enrolled in course %s. Transaction ID: %s",
			in.CourseID, in.TransactionID)
		nType = models.NotificationEnrollment

	case RelayNewEarnings:
		if in.Amount == nil || in.TotalPendingEarnings == nil {
			return false, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
		title = "New Earnings"
		message = fmt.Sprintf("You have received $%.2f from course %s. Your pending earnings balance is now $%.2f",
			*in.Amount, in.CourseID, *in.TotalPendingEarnings)
		nType = models.NotificationEarnings

	case RelayEarningsRefunded:
		if in.Amount == nil || in.Reason == "" {
			return false, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
		title = "Earnings Refunded"
		message = fmt.Sprintf("$%.2f has been refunded from your earnings for course %s. Reason: %s",
			*in.Amount, in.CourseID, in.Reason)
		nType = models.NotificationRefund

		data, err := json.Marshal(map[string]any{
			"courseId":      in.CourseID,
			"transactionId": in.TransactionID,
			"amount":        *in.Amount,
			"reason":        in.Reason,
			"refundDate":    time.Now().UTC(),
		})
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		str := string(data)
		additional = &str

	case RelayRemoveEnrollment:
		title = "Course Enrollment Removed"
		message = fmt.Sprintf("Your enrollment in course %s has been removed. Transaction ID: %s",
			in.CourseID, in.TransactionID)
		nType = models.NotificationEnrollmentRemoval

	default:
		return false, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UserByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("relay_user_not_found",
				slog.String("op", op),
				slog.Int64("user_id", in.UserID),
				slog.String("action", in.Action),
			)
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return s.sendNotification(ctx, user, title, message, nType, &in.CourseID, additional)
}

// sendNotification доставляет уведомление с учётом роли получателя:
// преподавателям — запись в БД (in-app), остальным — письмо.
// Сбой почты логируется и возвращается как (false, nil): внешний сервис
// не должен получать 5xx из-за недоставленного письма.
func (s *Service) sendNotification(ctx context.Context, user *models.User, title, message string, nType models.NotificationType, related, additional *string) (bool, error) {
	const op = "service.notifications.sendNotification"

	lg := log.From(ctx)

	if user.Role == models.RoleEducator {
		_, err := s.storage.SaveNotification(ctx, &models.Notification{
			UserID:          user.ID,
			Title:           title,
			Message:         message,
			Type:            nType,
			RelatedEntityID: related,
			AdditionalData:  additional,
		})
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}

		lg.Info("notification_saved",
			slog.String("op", op),
			slog.Int64("user_id", user.ID),
			slog.String("type", string(nType)),
		)

		return true, nil
	}

	if err := s.mailer.Send(user.Email, title, message); err != nil {
		lg.Error("notification_mail_failed",
			slog.String("op", op),
			slog.Int64("user_id", user.ID),
			slog.String("err", err.Error()),
		)
		return false, nil
	}

	lg.Info("notification_mailed",
		slog.String("op", op),
		slog.Int64("user_id", user.ID),
		slog.String("type", string(nType)),
	)

	return true, nil
}

// NotificationsFor возвращает уведомления пользователя (новые первыми).
func (s *Service) NotificationsFor(ctx context.Context, userID int64, includeRead bool) ([]*models.Notification, error) {
	const op = "service.notifications.NotificationsFor"

	list, err := s.storage.NotificationsByUser(ctx, userID, includeRead)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// UnreadCount возвращает число непрочитанных уведомлений пользователя.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	const op = "service.notifications.UnreadCount"

	count, err := s.storage.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// MarkNotificationRead помечает уведомление прочитанным.
// Ошибки: ErrNotFound, если уведомления нет; ErrForbidden, если оно чужое.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, notificationID int64) error {
	const op = "service.notifications.MarkNotificationRead"

	n, err := s.storage.NotificationByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if n.UserID != userID {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.storage.MarkNotificationRead(ctx, notificationID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MarkAllNotificationsRead помечает все уведомления пользователя прочитанными.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	const op = "service.notifications.MarkAllNotificationsRead"

	if err := s.storage.MarkAllNotificationsRead(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
