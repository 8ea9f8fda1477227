package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/storage"
)

// notificationColumns — единый список колонок таблицы notifications
// для SELECT/RETURNING.
const notificationColumns = `
id, user_id, title, message, type, is_read, related_entity_id, additional_data, created_at
`

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	var nType string

	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&nType,
		&n.IsRead,
		&n.RelatedEntityID,
		&n.AdditionalData,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}

	n.Type = models.NotificationType(nType)

	return &n, nil
}

// SaveNotification сохраняет уведомление в БД.
func (s *Storage) SaveNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	const op = "storage.postgres.SaveNotification"

	q := `
		INSERT INTO notifications (user_id, title, message, type, is_read, related_entity_id, additional_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING
	` + notificationColumns

	row := s.db.QueryRow(ctx, q,
		n.UserID,
		n.Title,
		n.Message,
		string(n.Type),
		n.IsRead,
		n.RelatedEntityID,
		n.AdditionalData,
	)

	result, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// NotificationByID возвращает уведомление по ID.
func (s *Storage) NotificationByID(ctx context.Context, id int64) (*models.Notification, error) {
	const op = "storage.postgres.NotificationByID"

	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	result, err := scanNotification(s.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// NotificationsByUser возвращает уведомления пользователя, новые первыми.
// При includeRead=false возвращаются только непрочитанные.
func (s *Storage) NotificationsByUser(ctx context.Context, userID int64, includeRead bool) ([]*models.Notification, error) {
	const op = "storage.postgres.NotificationsByUser"

	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if !includeRead {
		q += ` AND is_read = FALSE`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UnreadCount возвращает число непрочитанных уведомлений пользователя.
func (s *Storage) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	const op = "storage.postgres.UnreadCount"

	q := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`

	var count int64
	if err := s.db.QueryRow(ctx, q, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// MarkNotificationRead помечает уведомление прочитанным.
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *Storage) MarkNotificationRead(ctx context.Context, id int64) error {
	const op = "storage.postgres.MarkNotificationRead"

	q := `UPDATE notifications SET is_read = TRUE WHERE id = $1`

	cmdTag, err := s.db.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// MarkAllNotificationsRead помечает все уведомления пользователя прочитанными.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	const op = "storage.postgres.MarkAllNotificationsRead"

	q := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`

	_, err := s.db.Exec(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
