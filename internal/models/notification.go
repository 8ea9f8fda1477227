package models

import "time"

// NotificationType — тип события, породившего уведомление.
type NotificationType string

const (
	NotificationEnrollment        NotificationType = "ENROLLMENT"
	NotificationEarnings          NotificationType = "EARNINGS"
	NotificationRefund            NotificationType = "REFUND"
	NotificationEnrollmentRemoval NotificationType = "ENROLLMENT_REMOVAL"
)

// Notification — in-app уведомление, сохраняемое в БД для преподавателей.
// Студентам и прочим ролям уведомления уходят по email и в БД не попадают.
type Notification struct {
	ID      int64
	UserID  int64
	Title   string
	Message string
	Type    NotificationType
	IsRead  bool
	// RelatedEntityID — идентификатор связанной сущности (курс), если есть.
	RelatedEntityID *string
	// AdditionalData — произвольный JSON с деталями события, если есть.
	AdditionalData *string
	CreatedAt      time.Time
}
