package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Blackdukee/UMS/internal/service"
	"github.com/Blackdukee/UMS/internal/transport/http/httperr"
	"github.com/Blackdukee/UMS/internal/transport/http/middleware"
)

type relayRequest struct {
	Action               string   `json:"action"`
	UserID               int64    `json:"user_id"`
	CourseID             string   `json:"course_id"`
	TransactionID        string   `json:"transaction_id"`
	Amount               *float64 `json:"amount,omitempty"`
	TotalPendingEarnings *float64 `json:"total_pending_earnings,omitempty"`
	Reason               string   `json:"reason,omitempty"`
}

// Relay — межсервисный эндпоинт (X-Service-Key): приём уведомлений
// от других сервисов платформы.
// Несуществующий получатель или недоставленное письмо — не ошибка
// для вызывающего: он получает delivered=false и HTTP 200.
func (h *Handlers) Relay(w http.ResponseWriter, r *http.Request) {
	var in relayRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errInvalidArgument())
		return
	}

	delivered, err := h.Service.ProcessRelay(r.Context(), service.RelayInput{
		Action:               in.Action,
		UserID:               in.UserID,
		CourseID:             in.CourseID,
		TransactionID:        in.TransactionID,
		Amount:               in.Amount,
		TotalPendingEarnings: in.TotalPendingEarnings,
		Reason:               in.Reason,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"delivered": delivered})
}

type notificationsResponse struct {
	Notifications []notificationView `json:"notifications"`
	UnreadCount   int64              `json:"unread_count"`
}

// MyNotifications возвращает in-app уведомления текущего преподавателя.
// Параметр ?include_read=true добавляет к выдаче прочитанные.
func (h *Handlers) MyNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	includeRead := r.URL.Query().Get("include_read") == "true"

	list, err := h.Service.NotificationsFor(r.Context(), claims.UserID, includeRead)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	unread, err := h.Service.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	views := make([]notificationView, 0, len(list))
	for _, n := range list {
		views = append(views, toNotificationView(n))
	}

	writeJSON(w, http.StatusOK, notificationsResponse{
		Notifications: views,
		UnreadCount:   unread,
	})
}

// UnreadCount возвращает число непрочитанных уведомлений.
func (h *Handlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"unread_count": count})
}

// MarkNotificationRead помечает одно уведомление прочитанным.
// 404 — нет такого уведомления, 403 — уведомление чужое.
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httperr.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.Service.MarkNotificationRead(r.Context(), claims.UserID, id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}

// MarkAllNotificationsRead помечает все уведомления прочитанными.
func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	if err := h.Service.MarkAllNotificationsRead(r.Context(), claims.UserID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}
