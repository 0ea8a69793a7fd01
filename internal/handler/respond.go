package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/auth"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/service"
)

// errorResponse — единый формат тела ошибки
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError сопоставляет ошибки сервисов с HTTP-статусами.
// Внутренние детали (пути, SQL, трассировки) в тело ответа не попадают:
// неизвестные ошибки логируются на сервере и схлопываются в 500.
func writeServiceError(w http.ResponseWriter, tag string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrFileTooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuthRequired) || errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Printf("[%s] internal error: %v", tag, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
