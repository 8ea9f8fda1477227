package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/service"
	"github.com/Blackdukee/UMS/internal/transport/http/httperr"
)

// urlParamID извлекает числовой {id} из пути.
func urlParamID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidArgument()
	}

	return id, nil
}

// SearchUsers — административный поиск: ?role=&is_active=&page=&limit=.
func (h *Handlers) SearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter service.UserSearchFilter

	if raw := q.Get("role"); raw != "" {
		role, ok := models.ParseRole(raw)
		if !ok {
			httperr.WriteError(w, r, errInvalidArgument())
			return
		}
		filter.Role = &role
	}

	if raw := q.Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httperr.WriteError(w, r, errInvalidArgument())
			return
		}
		filter.IsActive = &active
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			httperr.WriteError(w, r, errInvalidArgument())
			return
		}
		filter.Page = page
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			httperr.WriteError(w, r, errInvalidArgument())
			return
		}
		filter.Limit = limit
	}

	users, err := h.Service.SearchUsers(r.Context(), filter)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": toUserViews(users)})
}

func (h *Handlers) AdminUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	user, err := h.Service.UserByID(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(user))
}

func (h *Handlers) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in updateProfileRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errInvalidArgument())
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), id, service.ProfileUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(user))
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handlers) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in setRoleRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errInvalidArgument())
		return
	}

	user, err := h.Service.SetUserRole(r.Context(), id, in.Role)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(user))
}

func (h *Handlers) SuspendUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	user, err := h.Service.SuspendUser(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(user))
}

func (h *Handlers) ActivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	user, err := h.Service.ActivateUser(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(user))
}

func (h *Handlers) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type adminResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (h *Handlers) AdminResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in adminResetPasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.Service.ResetUserPassword(r.Context(), id, in.NewPassword); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
}
