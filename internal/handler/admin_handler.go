package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/auth"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/service"
)

// AdminHandler обслуживает администраторские операции:
// подтверждение заявок менеджеров и просмотр журнала активности
type AdminHandler struct {
	userService *service.UserService
	activity    *service.ActivityService
	resolver    *auth.Resolver
}

func NewAdminHandler(
	userService *service.UserService,
	activity *service.ActivityService,
	resolver *auth.Resolver,
) *AdminHandler {
	return &AdminHandler{
		userService: userService,
		activity:    activity,
		resolver:    resolver,
	}
}

// PendingManagers возвращает заявки менеджеров, ожидающие решения
func (h *AdminHandler) PendingManagers(w http.ResponseWriter, r *http.Request) {
	actor, err := h.resolver.Resolve(r)
	if err != nil {
		writeServiceError(w, "Admin", err)
		return
	}

	managers, err := h.userService.PendingManagers(r.Context(), actor)
	if err != nil {
		writeServiceError(w, "Admin", err)
		return
	}

	writeJSON(w, http.StatusOK, managers)
}

// ApproveManager подтверждает заявку менеджера
func (h *AdminHandler) ApproveManager(w http.ResponseWriter, r *http.Request) {
	h.resolveManager(w, r, true)
}

// RejectManager отклоняет заявку менеджера
func (h *AdminHandler) RejectManager(w http.ResponseWriter, r *http.Request) {
	h.resolveManager(w, r, false)
}

func (h *AdminHandler) resolveManager(w http.ResponseWriter, r *http.Request, approve bool) {
	actor, err := h.resolver.Resolve(r)
	if err != nil {
		writeServiceError(w, "Admin", err)
		return
	}

	managerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid manager id")
		return
	}

	if approve {
		err = h.userService.ApproveManager(r.Context(), actor, managerID)
	} else {
		err = h.userService.RejectManager(r.Context(), actor, managerID)
	}
	if err != nil {
		writeServiceError(w, "Admin", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// GetActivity возвращает последние записи журнала активности
func (h *AdminHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	actor, err := h.resolver.Resolve(r)
	if err != nil {
		writeServiceError(w, "Admin", err)
		return
	}

	// Журнал доступен только администраторам
	if err := h.userService.RequireAdmin(actor); err != nil {
		writeServiceError(w, "Admin", err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.activity.Recent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, "Admin", err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}
