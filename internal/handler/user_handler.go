package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type registerRequest struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Register регистрирует клиента или заявку менеджера
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Role == "" {
		req.Role = domain.RoleCustomer
	}

	user, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Role)
	if err != nil {
		writeServiceError(w, "Register", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
