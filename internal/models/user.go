// models содержит доменные сущности сервиса управления пользователями.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"strings"
	"time"
)

// Role — роль пользователя в системе; внутренний enum.
type Role int8

const (
	RoleUnspecified Role = iota
	RoleStudent
	RoleEducator
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleEducator:
		return "Educator"
	case RoleAdmin:
		return "Admin"
	default:
		return "Unspecified"
	}
}

// ParseRole разбирает строковое представление роли без учёта регистра.
// Неизвестные значения дают (RoleUnspecified, false).
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, true
	case "educator":
		return RoleEducator, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleUnspecified, false
	}
}

// User — модель пользователя в системе.
//
// PasswordHash — указатель: для аккаунтов, созданных через Google OAuth,
// пароль отсутствует (nil), и вход по паролю для них невозможен.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash *string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
