package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/auth"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/service"
)

// Лимит памяти на разбор multipart-формы
const maxUploadMemory = 50 << 20

type FileHandler struct {
	fileService *service.FileService
	resolver    *auth.Resolver
}

func NewFileHandler(fileService *service.FileService, resolver *auth.Resolver) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		resolver:    resolver,
	}
}

// UploadRequest описывает мутирующие запросы к загрузке.
// performed_by указывает действующего пользователя явно: сессия сайта
// может отличаться от доменного исполнителя (менеджер действует через
// собственную cookie-сессию, а не сессию клиента).
type mutateRequest struct {
	PerformedBy int64  `json:"performed_by"`
	Title       string `json:"title,omitempty"`
}

type uploadResponse struct {
	Message string `json:"message"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type linkResponse struct {
	URL string `json:"url"`
}

// ServeFile отдает байты файла после проверки прав доступа.
// Байты всегда проксируются через приложение; прямого доступа
// к хранилищу у клиента нет.
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	actor, err := h.resolver.Resolve(r)
	if err != nil {
		writeServiceError(w, "Serve", err)
		return
	}

	key := chi.URLParam(r, "key")
	download, err := h.fileService.Serve(r.Context(), key, actor)
	if err != nil {
		writeServiceError(w, "Serve", err)
		return
	}

	name := strings.ReplaceAll(download.Upload.OriginalName, `"`, `\"`)

	// Файлы могут содержать чувствительные документы: запрещаем
	// кэширование промежуточным узлам и браузеру
	w.Header().Set("Content-Type", download.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(download.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if _, err := w.Write(download.Data); err != nil {
		log.Printf("[Serve] failed to write response: %v", err)
	}
}

// GetViewLink выдает короткоживущую подписанную ссылку на файл
func (h *FileHandler) GetViewLink(w http.ResponseWriter, r *http.Request) {
	actor, err := h.resolver.Resolve(r)
	if err != nil {
		writeServiceError(w, "ViewLink", err)
		return
	}

	key := chi.URLParam(r, "key")
	url, err := h.fileService.ViewLink(r.Context(), actor, key)
	if err != nil {
		writeServiceError(w, "ViewLink", err)
		return
	}

	writeJSON(w, http.StatusOK, linkResponse{URL: url})
}

// UploadFile обрабатывает загрузку файла.
// Клиент загружает для себя (идентичность в заголовке); менеджер
// указывает клиента в поле target_email и действует через cookie-сессию.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	actor, err := h.resolver.Resolve(r)
	if err != nil {
		writeServiceError(w, "Upload", err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	targetEmail := r.FormValue("target_email")

	upload, err := h.fileService.Upload(r.Context(), actor, targetEmail, header.Filename, data)
	if err != nil {
		writeServiceError(w, "Upload", err)
		return
	}

	log.Printf("[Upload] stored %s for owner %d", upload.StorageKey, upload.OwnerID)
	writeJSON(w, http.StatusOK, uploadResponse{
		Message: fmt.Sprintf("file %s uploaded", header.Filename),
	})
}

// ListUploads возвращает загрузки владельца (owner_email в query)
func (h *FileHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	actor, err := h.resolver.Resolve(r)
	if err != nil {
		writeServiceError(w, "List", err)
		return
	}

	uploads, err := h.fileService.ListUploads(r.Context(), actor, r.URL.Query().Get("owner_email"))
	if err != nil {
		writeServiceError(w, "List", err)
		return
	}

	writeJSON(w, http.StatusOK, uploads)
}

// DeleteUpload удаляет файл по ключу хранилища
func (h *FileHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	var req mutateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PerformedBy == 0 {
		writeError(w, http.StatusBadRequest, "performed_by is required")
		return
	}

	key := chi.URLParam(r, "key")
	if err := h.fileService.DeleteUpload(r.Context(), req.PerformedBy, key); err != nil {
		writeServiceError(w, "Delete", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// UpdateTitle обновляет отображаемое название файла
func (h *FileHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req mutateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PerformedBy == 0 {
		writeError(w, http.StatusBadRequest, "performed_by is required")
		return
	}

	key := chi.URLParam(r, "key")
	if err := h.fileService.UpdateTitle(r.Context(), req.PerformedBy, key, req.Title); err != nil {
		writeServiceError(w, "TitleUpdate", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
