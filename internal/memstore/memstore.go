// Package memstore содержит реализации хранилищ в памяти процесса.
// Используется в тестах вместо Postgres и файлового хранилища.
package memstore

import (
	"context"
	"errors"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
	"github.com/RyanAsante/doc-upload-app-sub000/internal/service/storage"
)

// UserDirectory хранит пользователей в памяти
type UserDirectory struct {
	ByEmail map[string]*domain.User
	ByID    map[int64]*domain.User

	// Err подставляется тестами для имитации сбоя хранилища
	Err    error
	nextID int64
}

func NewUserDirectory(users ...*domain.User) *UserDirectory {
	d := &UserDirectory{
		ByEmail: make(map[string]*domain.User),
		ByID:    make(map[int64]*domain.User),
	}
	for _, u := range users {
		d.ByEmail[u.Email] = u
		d.ByID[u.ID] = u
		if u.ID > d.nextID {
			d.nextID = u.ID
		}
	}
	return d
}

func (d *UserDirectory) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.ByEmail[email], nil
}

func (d *UserDirectory) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.ByID[id], nil
}

func (d *UserDirectory) Create(_ context.Context, user *domain.User) error {
	if d.Err != nil {
		return d.Err
	}
	d.nextID++
	user.ID = d.nextID
	d.ByEmail[user.Email] = user
	d.ByID[user.ID] = user
	return nil
}

func (d *UserDirectory) UpdateStatus(_ context.Context, id int64, status domain.Status) error {
	u, ok := d.ByID[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Status = status
	return nil
}

func (d *UserDirectory) ListByRoleAndStatus(_ context.Context, role domain.Role, status domain.Status) ([]domain.User, error) {
	var out []domain.User
	for _, u := range d.ByID {
		if u.Role == role && u.Status == status {
			out = append(out, *u)
		}
	}
	return out, nil
}

// UploadStore хранит записи о загрузках в памяти
type UploadStore struct {
	Uploads map[string]*domain.Upload

	// CreateErr подставляется тестами для имитации сбоя записи
	CreateErr error
	nextID    int64
}

func NewUploadStore() *UploadStore {
	return &UploadStore{Uploads: make(map[string]*domain.Upload)}
}

func (s *UploadStore) Create(_ context.Context, upload *domain.Upload) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.nextID++
	upload.ID = s.nextID
	s.Uploads[upload.StorageKey] = upload
	return nil
}

func (s *UploadStore) GetByStorageKey(_ context.Context, key string) (*domain.Upload, error) {
	return s.Uploads[key], nil
}

func (s *UploadStore) ListByOwner(_ context.Context, ownerID int64) ([]domain.Upload, error) {
	var out []domain.Upload
	for _, u := range s.Uploads {
		if u.OwnerID == ownerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *UploadStore) UpdateTitle(_ context.Context, key, title string) error {
	u, ok := s.Uploads[key]
	if !ok {
		return errors.New("upload not found")
	}
	u.Title = &title
	return nil
}

func (s *UploadStore) Delete(_ context.Context, key string) error {
	if _, ok := s.Uploads[key]; !ok {
		return errors.New("upload not found")
	}
	delete(s.Uploads, key)
	return nil
}

// Storage хранит объекты в памяти
type Storage struct {
	Objects map[string][]byte

	// ReadErr и SignErr подставляются тестами для имитации сбоев
	ReadErr error
	SignErr error
}

func NewStorage() *Storage {
	return &Storage{Objects: make(map[string][]byte)}
}

func (s *Storage) Store(_ context.Context, key string, data []byte) error {
	s.Objects[key] = data
	return nil
}

func (s *Storage) Read(_ context.Context, key string) ([]byte, error) {
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	data, ok := s.Objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	delete(s.Objects, key)
	return nil
}

func (s *Storage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.Objects[key]
	return ok, nil
}

func (s *Storage) SignedURL(_ context.Context, key string, _ storage.URLPolicy) (string, error) {
	if s.SignErr != nil {
		return "", s.SignErr
	}
	return "http://localhost:2525/v1/files/" + key, nil
}

// ActivityStore хранит журнал активности в памяти
type ActivityStore struct {
	Records []domain.ActivityLog
}

func (s *ActivityStore) Create(_ context.Context, record *domain.ActivityLog) error {
	s.Records = append(s.Records, *record)
	return nil
}

func (s *ActivityStore) ListRecent(_ context.Context, limit int) ([]domain.ActivityLog, error) {
	if len(s.Records) > limit {
		return s.Records[len(s.Records)-limit:], nil
	}
	return s.Records, nil
}
