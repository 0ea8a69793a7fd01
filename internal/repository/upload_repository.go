package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
)

type UploadRepository struct {
	db *sqlx.DB
}

func NewUploadRepository(db *sqlx.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, upload *domain.Upload) error {
	query := `
        INSERT INTO uploads (storage_key, owner_id, kind, title, original_name, file_url)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		upload.StorageKey,
		upload.OwnerID,
		upload.Kind,
		upload.Title,
		upload.OriginalName,
		upload.FileURL,
	).Scan(&upload.ID, &upload.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}

	return nil
}

// GetByStorageKey находит запись о загрузке по ключу хранилища.
// Возвращает (nil, nil), если запись не найдена.
func (r *UploadRepository) GetByStorageKey(ctx context.Context, key string) (*domain.Upload, error) {
	var upload domain.Upload
	query := `SELECT * FROM uploads WHERE storage_key = $1`

	err := r.db.GetContext(ctx, &upload, query, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload by storage key: %w", err)
	}

	return &upload, nil
}

// ListByOwner возвращает все загрузки пользователя
func (r *UploadRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Upload, error) {
	var uploads []domain.Upload
	query := `SELECT * FROM uploads WHERE owner_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &uploads, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	return uploads, nil
}

// UpdateTitle обновляет отображаемое название файла.
// Атомарный UPDATE по первичному ключу: при конкурентных правках
// побеждает последняя запись.
func (r *UploadRepository) UpdateTitle(ctx context.Context, key string, title string) error {
	query := `UPDATE uploads SET title = $1 WHERE storage_key = $2`

	result, err := r.db.ExecContext(ctx, query, title, key)
	if err != nil {
		return fmt.Errorf("failed to update upload title: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("upload not found")
	}

	return nil
}

// Delete удаляет запись о загрузке. Жесткое удаление, без tombstone
func (r *UploadRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM uploads WHERE storage_key = $1`

	result, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("upload not found")
	}

	return nil
}
