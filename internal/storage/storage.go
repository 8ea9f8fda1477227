package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Blackdukee/UMS/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/токен/уведомление).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/refresh-token).
	ErrAlreadyExists = errors.New("already exists")
)

// UserUpdate — частичное обновление пользователя: обновляются только поля
// с непустыми указателями; updated_at сдвигается всегда.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Role         *models.Role
	IsActive     *bool
	PasswordHash *string
}

// UserFilter — фильтр и пагинация для административного поиска пользователей.
type UserFilter struct {
	Role     *models.Role
	IsActive *bool
	// Page — номер страницы, начиная с 1.
	Page int
	// Limit — размер страницы.
	Limit int
}

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя и возвращает запись
	// с серверными полями (id, timestamps).
	SaveUser(ctx context.Context, user *models.User) (*models.User, error)
	// UserByEmail находит пользователя по email (email хранится в нижнем регистре).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id int64) (*models.User, error)
	// UpdateUser выполняет частичный апдейт пользователя.
	UpdateUser(ctx context.Context, id int64, update UserUpdate) (*models.User, error)
	// ListUsers возвращает страницу пользователей по фильтру.
	ListUsers(ctx context.Context, filter UserFilter) ([]*models.User, error)
	// DeleteUser удаляет пользователя; связанные токены и уведомления
	// удаляются каскадно на уровне схемы БД.
	DeleteUser(ctx context.Context, id int64) error
}

// RefreshTokenStorage выполняет операции над refresh-токенами.
type RefreshTokenStorage interface {
	// SaveRefreshToken сохраняет новый refresh-токен.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByHash находит refresh-токен по его хэшу.
	RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RevokeRefreshTokenIfActive пытается отозвать refresh-токен, если он ещё
	// не был отозван. Возвращает:
	//   (true, nil)  — токен был активен и отозван сейчас;
	//   (false, nil) — токен существует, но уже был отозван;
	//   (false, ErrNotFound) — токен не найден.
	RevokeRefreshTokenIfActive(ctx context.Context, hash string) (bool, error)
	// RevokeAllForUser отзывает все активные refresh-токены пользователя.
	// Инвариант "не более одного активного токена на пользователя"
	// обеспечивается вызовом этого метода перед сохранением нового.
	RevokeAllForUser(ctx context.Context, userID int64) error
	// DeleteExpiredTokens удаляет все просроченные токены.
	DeleteExpiredTokens(ctx context.Context, now time.Time) error
}

// NotificationStorage выполняет операции над in-app уведомлениями.
type NotificationStorage interface {
	// SaveNotification сохраняет уведомление и возвращает запись с id/created_at.
	SaveNotification(ctx context.Context, n *models.Notification) (*models.Notification, error)
	// NotificationByID возвращает уведомление по id.
	NotificationByID(ctx context.Context, id int64) (*models.Notification, error)
	// NotificationsByUser возвращает уведомления пользователя,
	// новые первыми; при includeRead=false — только непрочитанные.
	NotificationsByUser(ctx context.Context, userID int64, includeRead bool) ([]*models.Notification, error)
	// UnreadCount возвращает число непрочитанных уведомлений пользователя.
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	// MarkNotificationRead помечает уведомление прочитанным.
	MarkNotificationRead(ctx context.Context, id int64) error
	// MarkAllNotificationsRead помечает все уведомления пользователя прочитанными.
	MarkAllNotificationsRead(ctx context.Context, userID int64) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	RefreshTokenStorage
	NotificationStorage
	Close()
}
