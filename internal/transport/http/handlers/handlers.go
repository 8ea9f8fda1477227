// handlers содержит HTTP-обработчики REST API сервиса.
// Вся доменная логика живёт в пакете service; здесь — только декодирование
// запросов, вызов сервиса и сериализация ответов.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/service"
)

// Handlers агрегирует зависимости (бизнес-логика).
type Handlers struct {
	Service *service.Service
}

func New(s *service.Service) *Handlers {
	return &Handlers{Service: s}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через httperr.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument — вспомогалка: локальная ошибка парсинга -> доменная ошибка.
func errInvalidArgument() error {
	return fmt.Errorf("handlers: %w", service.ErrInvalidArgument)
}

// userView — представление пользователя в ответах API.
// PasswordHash наружу не отдаётся никогда.
type userView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserViews(users []*models.User) []userView {
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}

	return views
}

// tokenPairView — представление пары токенов в ответах API.
type tokenPairView struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

func toTokenPairView(p *models.TokenPair) tokenPairView {
	return tokenPairView{
		AccessToken:     p.AccessToken,
		RefreshToken:    p.RefreshToken,
		AccessExpiresAt: p.AccessExpiresAt,
	}
}

// notificationView — представление in-app уведомления.
type notificationView struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Message         string    `json:"message"`
	Type            string    `json:"type"`
	IsRead          bool      `json:"is_read"`
	RelatedEntityID *string   `json:"related_entity_id,omitempty"`
	AdditionalData  *string   `json:"additional_data,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toNotificationView(n *models.Notification) notificationView {
	return notificationView{
		ID:              n.ID,
		Title:           n.Title,
		Message:         n.Message,
		Type:            string(n.Type),
		IsRead:          n.IsRead,
		RelatedEntityID: n.RelatedEntityID,
		AdditionalData:  n.AdditionalData,
		CreatedAt:       n.CreatedAt,
	}
}
