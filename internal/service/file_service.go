package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/service/storage"
)

const (
	// Максимальный размер файла: хранилище рассчитано на документы
	// в десятки мегабайт, файл буферизуется в памяти целиком
	maxFileSize = 50 * 1024 * 1024
)

// Ошибки уровня сервиса. Хендлеры сопоставляют их с HTTP-статусами
// через errors.Is; детали внутренних сбоев наружу не уходят.
var (
	ErrAuthRequired = errors.New("authentication required")
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrFileTooLarge = errors.New("file size exceeds maximum allowed size")
	ErrStorage      = errors.New("storage operation failed")
)

// Статическая таблица расширение → MIME. Для неизвестных расширений
// используется application/octet-stream.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".pdf":  "application/pdf",
}

// ContentTypeFor определяет тип контента по расширению имени файла
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

// KindFor классифицирует файл по выведенному типу контента
func KindFor(name string) domain.Kind {
	if strings.HasPrefix(ContentTypeFor(name), "video/") {
		return domain.KindVideo
	}
	return domain.KindImage
}

// UserStore определяет доступ к записям пользователей
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// UploadStore определяет доступ к записям о загрузках
type UploadStore interface {
	Create(ctx context.Context, upload *domain.Upload) error
	GetByStorageKey(ctx context.Context, key string) (*domain.Upload, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Upload, error)
	UpdateTitle(ctx context.Context, key string, title string) error
	Delete(ctx context.Context, key string) error
}

// FileService оркестрирует проверку прав, хранилище и журнал активности.
// Все операции fail-closed: любая неожиданная ошибка на любом шаге
// завершает запрос отказом, частичных ответов не бывает.
type FileService struct {
	uploadRepo UploadStore
	userRepo   UserStore
	store      storage.Storage
	policy     *PolicyService
	activity   *ActivityService
}

func NewFileService(
	uploadRepo UploadStore,
	userRepo UserStore,
	store storage.Storage,
	policy *PolicyService,
	activity *ActivityService,
) *FileService {
	return &FileService{
		uploadRepo: uploadRepo,
		userRepo:   userRepo,
		store:      store,
		policy:     policy,
		activity:   activity,
	}
}

// decisionError переводит отказ политики в ошибку сервиса
func decisionError(d domain.Decision) error {
	switch d.Reason {
	case domain.ReasonAuthRequired:
		return ErrAuthRequired
	case domain.ReasonNotFound:
		return ErrNotFound
	default:
		return ErrAccessDenied
	}
}

// Serve отдает файл по ключу хранилища после проверки прав доступа.
// Последовательность фиксированная, без повторов: идентичность →
// решение о чтении → запись о загрузке → байты из хранилища.
func (s *FileService) Serve(ctx context.Context, key string, actor *domain.User) (*domain.FileDownload, error) {
	if d := s.policy.ReadDecision(actor); !d.Allowed {
		return nil, decisionError(d)
	}

	upload, err := s.uploadRepo.GetByStorageKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload record: %w", err)
	}
	if upload == nil {
		return nil, ErrNotFound
	}

	data, err := s.store.Read(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return &domain.FileDownload{
		Upload:      upload,
		Data:        data,
		ContentType: ContentTypeFor(upload.OriginalName),
	}, nil
}

// Upload сохраняет файл и создает запись о загрузке.
// Владельцем становится target: сам клиент при самостоятельной загрузке
// или клиент, за которого загружает менеджер. Запись в БД создается
// только после успешной записи в хранилище и подписания ссылки, поэтому
// частичный сбой не оставляет полузаписанных записей.
func (s *FileService) Upload(ctx context.Context, actor *domain.User, targetEmail, originalName string, data []byte) (*domain.Upload, error) {
	if actor == nil {
		return nil, ErrAuthRequired
	}
	if originalName == "" || len(data) == 0 {
		return nil, fmt.Errorf("%w: file is required", ErrValidation)
	}
	if int64(len(data)) > maxFileSize {
		return nil, fmt.Errorf("%w: max size is %d bytes", ErrFileTooLarge, maxFileSize)
	}

	// Определяем, для кого загружается файл
	target := actor
	if targetEmail != "" && targetEmail != actor.Email {
		var err error
		target, err = s.userRepo.GetByEmail(ctx, targetEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to get target user: %w", err)
		}
		if target == nil {
			return nil, fmt.Errorf("%w: target user", ErrNotFound)
		}
	}

	if d := s.policy.UploadDecision(actor, target); !d.Allowed {
		return nil, decisionError(d)
	}

	// Каждая попытка загрузки получает свежий уникальный ключ
	key := storage.MakeKey(originalName)

	if err := s.store.Store(ctx, key, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	fileURL, err := s.store.SignedURL(ctx, key, storage.URLPolicyCanonical)
	if err != nil {
		if deleteErr := s.store.Delete(ctx, key); deleteErr != nil {
			log.Printf("[Upload] failed to delete object after sign error: %v", deleteErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	upload := &domain.Upload{
		StorageKey:   key,
		OwnerID:      target.ID,
		Kind:         KindFor(originalName),
		OriginalName: originalName,
		FileURL:      fileURL,
	}

	if err := s.uploadRepo.Create(ctx, upload); err != nil {
		// При ошибке убираем уже записанный объект из хранилища
		if deleteErr := s.store.Delete(ctx, key); deleteErr != nil {
			log.Printf("[Upload] failed to delete object after db error: %v", deleteErr)
		}
		return nil, fmt.Errorf("failed to create upload record: %w", err)
	}

	details := fmt.Sprintf("key=%s owner=%s name=%s", key, target.Email, originalName)
	if err := s.activity.Record(ctx, actor.ID, domain.ActionUpload, details); err != nil {
		log.Printf("[Upload] failed to record activity: %v", err)
	}

	return upload, nil
}

// DeleteUpload удаляет файл и запись о нем.
// Исполнитель всегда разрешается в конкретного пользователя по id —
// анонимных мутаций не бывает, действие попадает в журнал.
func (s *FileService) DeleteUpload(ctx context.Context, performerID int64, key string) error {
	performer, err := s.userRepo.GetByID(ctx, performerID)
	if err != nil {
		return fmt.Errorf("failed to get performer: %w", err)
	}
	if performer == nil {
		return ErrAuthRequired
	}

	upload, err := s.uploadRepo.GetByStorageKey(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get upload record: %w", err)
	}

	if d := s.policy.DeleteDecision(performer, upload); !d.Allowed {
		return decisionError(d)
	}

	if err := s.store.Delete(ctx, key); err != nil {
		log.Printf("[Delete] warning: failed to delete object from storage: %v", err)
	}

	if err := s.uploadRepo.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete upload record: %w", err)
	}

	details := fmt.Sprintf("key=%s name=%s", key, upload.OriginalName)
	if err := s.activity.Record(ctx, performer.ID, domain.ActionDelete, details); err != nil {
		log.Printf("[Delete] failed to record activity: %v", err)
	}

	return nil
}

// UpdateTitle меняет отображаемое название файла.
// Название — единственное изменяемое поле записи о загрузке.
func (s *FileService) UpdateTitle(ctx context.Context, performerID int64, key, title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}

	performer, err := s.userRepo.GetByID(ctx, performerID)
	if err != nil {
		return fmt.Errorf("failed to get performer: %w", err)
	}
	if performer == nil {
		return ErrAuthRequired
	}

	upload, err := s.uploadRepo.GetByStorageKey(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get upload record: %w", err)
	}

	if d := s.policy.TitleUpdateDecision(performer, upload); !d.Allowed {
		return decisionError(d)
	}

	if err := s.uploadRepo.UpdateTitle(ctx, key, title); err != nil {
		return fmt.Errorf("failed to update title: %w", err)
	}

	details := fmt.Sprintf("key=%s title=%s", key, title)
	if err := s.activity.Record(ctx, performer.ID, domain.ActionTitleUpdate, details); err != nil {
		log.Printf("[TitleUpdate] failed to record activity: %v", err)
	}

	return nil
}

// ViewLink выдает короткоживущую ссылку на просмотр файла
func (s *FileService) ViewLink(ctx context.Context, actor *domain.User, key string) (string, error) {
	if d := s.policy.ReadDecision(actor); !d.Allowed {
		return "", decisionError(d)
	}

	upload, err := s.uploadRepo.GetByStorageKey(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to get upload record: %w", err)
	}
	if upload == nil {
		return "", ErrNotFound
	}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !exists {
		return "", ErrNotFound
	}

	url, err := s.store.SignedURL(ctx, key, storage.URLPolicyView)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return url, nil
}

// ListUploads возвращает загрузки указанного владельца
func (s *FileService) ListUploads(ctx context.Context, actor *domain.User, ownerEmail string) ([]domain.Upload, error) {
	if d := s.policy.ReadDecision(actor); !d.Allowed {
		return nil, decisionError(d)
	}

	owner := actor
	if ownerEmail != "" && ownerEmail != actor.Email {
		var err error
		owner, err = s.userRepo.GetByEmail(ctx, ownerEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to get owner: %w", err)
		}
		if owner == nil {
			return nil, fmt.Errorf("%w: owner", ErrNotFound)
		}
	}

	return s.uploadRepo.ListByOwner(ctx, owner.ID)
}
