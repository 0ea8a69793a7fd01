package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/auth"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/service"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/memstore"
)

type handlerFixture struct {
	router   *chi.Mux
	users    *memstore.UserDirectory
	uploads  *memstore.UploadStore
	store    *memstore.Storage
	activity *memstore.ActivityStore

	customer *domain.User
	other    *domain.User
	manager  *domain.User
	pending  *domain.User
	admin    *domain.User
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		customer: &domain.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: domain.RoleCustomer, Status: domain.StatusApproved},
		other:    &domain.User{ID: 2, Name: "Bob", Email: "bob@example.com", Role: domain.RoleCustomer, Status: domain.StatusApproved},
		manager:  &domain.User{ID: 3, Name: "Mary", Email: "mary@example.com", Role: domain.RoleManager, Status: domain.StatusApproved},
		pending:  &domain.User{ID: 4, Name: "Pete", Email: "pete@example.com", Role: domain.RoleManager, Status: domain.StatusPending},
		admin:    &domain.User{ID: 5, Name: "Root", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.StatusApproved},
	}

	f.users = memstore.NewUserDirectory(f.customer, f.other, f.manager, f.pending, f.admin)
	f.uploads = memstore.NewUploadStore()
	f.store = memstore.NewStorage()
	f.activity = &memstore.ActivityStore{}

	policy := service.NewPolicyService()
	activity := service.NewActivityService(f.activity)
	fileService := service.NewFileService(f.uploads, f.users, f.store, policy, activity)
	userService := service.NewUserService(f.users, activity)
	resolver := auth.NewResolver(f.users)

	fileHandler := NewFileHandler(fileService, resolver)
	userHandler := NewUserHandler(userService)
	adminHandler := NewAdminHandler(userService, activity, resolver)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Post("/users/register", userHandler.Register)
		r.Post("/uploads", fileHandler.UploadFile)
		r.Get("/uploads", fileHandler.ListUploads)
		r.Route("/uploads/{key}", func(r chi.Router) {
			r.Delete("/", fileHandler.DeleteUpload)
			r.Put("/title", fileHandler.UpdateTitle)
		})
		r.Route("/files/{key}", func(r chi.Router) {
			r.Get("/", fileHandler.ServeFile)
			r.Get("/link", fileHandler.GetViewLink)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Get("/managers/pending", adminHandler.PendingManagers)
			r.Put("/managers/{id}/approve", adminHandler.ApproveManager)
			r.Put("/managers/{id}/reject", adminHandler.RejectManager)
			r.Get("/activity", adminHandler.GetActivity)
		})
	})
	f.router = r
	return f
}

// seedFile кладет файл напрямую, минуя HTTP слой
func (f *handlerFixture) seedFile(t *testing.T, owner *domain.User, name string, data []byte) string {
	t.Helper()

	key := "test-" + name
	require.NoError(t, f.store.Store(context.Background(), key, data))
	require.NoError(t, f.uploads.Create(context.Background(), &domain.Upload{
		StorageKey:   key,
		OwnerID:      owner.ID,
		Kind:         service.KindFor(name),
		OriginalName: name,
		FileURL:      "http://localhost:2525/v1/files/" + key,
	}))
	return key
}

func (f *handlerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestServeFileOK(t *testing.T) {
	f := newHandlerFixture()
	key := f.seedFile(t, f.customer, "report.pdf", []byte("pdf bytes"))

	req := httptest.NewRequest(http.MethodGet, "/v1/files/"+key, nil)
	req.Header.Set(auth.EmailHeader, f.customer.Email)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf bytes", rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="report.pdf"`, rec.Header().Get("Content-Disposition"))
}

func TestServeFileNoCacheHeaders(t *testing.T) {
	f := newHandlerFixture()
	key := f.seedFile(t, f.customer, "secret.png", []byte("png"))

	req := httptest.NewRequest(http.MethodGet, "/v1/files/"+key, nil)
	req.Header.Set(auth.EmailHeader, f.customer.Email)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))
}

func TestServeFileUnauthenticated(t *testing.T) {
	f := newHandlerFixture()
	key := f.seedFile(t, f.customer, "report.pdf", []byte("pdf"))

	// Без идентичности
	rec := f.do(httptest.NewRequest(http.MethodGet, "/v1/files/"+key, nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication required", errorBody(t, rec))

	// Со значением-сентинелом
	req := httptest.NewRequest(http.MethodGet, "/v1/files/"+key, nil)
	req.Header.Set(auth.EmailHeader, "anonymous")
	rec = f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServeFileForbidden(t *testing.T) {
	f := newHandlerFixture()
	key := f.seedFile(t, f.customer, "report.pdf", []byte("pdf"))

	req := httptest.NewRequest(http.MethodGet, "/v1/files/"+key, nil)
	req.Header.Set(auth.EmailHeader, f.pending.Email)
	rec := f.do(req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access denied", errorBody(t, rec))
	// Тело файла не утекает при отказе
	assert.NotContains(t, rec.Body.String(), "pdf bytes")
}

func TestServeFileNotFound(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/v1/files/no-such-key.pdf", nil)
	req.Header.Set(auth.EmailHeader, f.customer.Email)
	rec := f.do(req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorBody(t, rec))
}

func multipartBody(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadFileAsCustomer(t *testing.T) {
	f := newHandlerFixture()

	body, contentType := multipartBody(t, "scan.png", []byte("png bytes"), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(auth.EmailHeader, f.customer.Email)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "scan.png")
	assert.Len(t, f.store.Objects, 1)
}

func TestUploadFileManagerViaCookie(t *testing.T) {
	f := newHandlerFixture()

	body, contentType := multipartBody(t, "scan.png", []byte("png"), map[string]string{
		"target_email": f.customer.Email,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: f.manager.Email})
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Владельцем записи стал клиент
	for _, u := range f.uploads.Uploads {
		assert.Equal(t, f.customer.ID, u.OwnerID)
	}
}

func TestUploadFileDenied(t *testing.T) {
	f := newHandlerFixture()

	body, contentType := multipartBody(t, "scan.png", []byte("png"), map[string]string{
		"target_email": f.other.Email,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(auth.EmailHeader, f.customer.Email)
	rec := f.do(req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.store.Objects)
}

func TestUploadFileMissingFile(t *testing.T) {
	f := newHandlerFixture()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("target_email", f.customer.Email))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(auth.EmailHeader, f.customer.Email)
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "file is required", errorBody(t, rec))
}

func TestDeleteUpload(t *testing.T) {
	f := newHandlerFixture()
	key := f.seedFile(t, f.customer, "doomed.png", []byte("png"))

	body := strings.NewReader(`{"performed_by": 1}`)
	req := httptest.NewRequest(http.MethodDelete, "/v1/uploads/"+key, body)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Empty(t, f.uploads.Uploads)
}

func TestDeleteUploadRequiresPerformer(t *testing.T) {
	f := newHandlerFixture()
	key := f.seedFile(t, f.customer, "keep.png", []byte("png"))

	rec := f.do(httptest.NewRequest(http.MethodDelete, "/v1/uploads/"+key, strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "performed_by is required", errorBody(t, rec))
}

func TestUpdateTitle(t *testing.T) {
	f := newHandlerFixture()
	key := f.seedFile(t, f.customer, "scan.png", []byte("png"))

	body := strings.NewReader(`{"performed_by": 3, "title": "Contract v2"}`)
	req := httptest.NewRequest(http.MethodPut, "/v1/uploads/"+key+"/title", body)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := f.uploads.Uploads[key]
	require.NotNil(t, stored.Title)
	assert.Equal(t, "Contract v2", *stored.Title)
}

func TestGetViewLink(t *testing.T) {
	f := newHandlerFixture()
	key := f.seedFile(t, f.customer, "clip.mp4", []byte("mp4"))

	req := httptest.NewRequest(http.MethodGet, "/v1/files/"+key+"/link", nil)
	req.Header.Set(auth.EmailHeader, f.manager.Email)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["url"], key)
}

func TestListUploads(t *testing.T) {
	f := newHandlerFixture()
	f.seedFile(t, f.customer, "a.png", []byte("a"))
	f.seedFile(t, f.other, "b.png", []byte("b"))

	req := httptest.NewRequest(http.MethodGet, "/v1/uploads?owner_email="+f.other.Email, nil)
	req.Header.Set(auth.EmailHeader, f.manager.Email)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	var uploads []domain.Upload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploads))
	require.Len(t, uploads, 1)
	assert.Equal(t, f.other.ID, uploads[0].OwnerID)
}

func TestRegisterEndpoint(t *testing.T) {
	f := newHandlerFixture()

	body := strings.NewReader(`{"name":"Carol","email":"carol@example.com","role":"manager"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/users/register", body)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, domain.StatusPending, user.Status)
}

func TestAdminEndpoints(t *testing.T) {
	f := newHandlerFixture()

	// Список заявок доступен только администратору
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/managers/pending", nil)
	req.Header.Set(auth.EmailHeader, f.customer.Email)
	rec := f.do(req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/managers/pending", nil)
	req.Header.Set(auth.EmailHeader, f.admin.Email)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var pending []domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, f.pending.ID, pending[0].ID)

	// Подтверждение заявки
	req = httptest.NewRequest(http.MethodPut, "/v1/admin/managers/4/approve", nil)
	req.Header.Set(auth.EmailHeader, f.admin.Email)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusApproved, f.users.ByID[4].Status)

	// Несуществующий менеджер
	req = httptest.NewRequest(http.MethodPut, "/v1/admin/managers/999/approve", nil)
	req.Header.Set(auth.EmailHeader, f.admin.Email)
	rec = f.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminActivity(t *testing.T) {
	f := newHandlerFixture()
	key := f.seedFile(t, f.customer, "scan.png", []byte("png"))

	body := strings.NewReader(`{"performed_by": 1}`)
	rec := f.do(httptest.NewRequest(http.MethodDelete, "/v1/uploads/"+key, body))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/activity", nil)
	req.Header.Set(auth.EmailHeader, f.admin.Email)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []domain.ActivityLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.NotEmpty(t, records)
	assert.Equal(t, domain.ActionDelete, records[len(records)-1].Action)

	// Журнал закрыт для не-администраторов
	req = httptest.NewRequest(http.MethodGet, "/v1/admin/activity", nil)
	req.Header.Set(auth.EmailHeader, f.manager.Email)
	rec = f.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
