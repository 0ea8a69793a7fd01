package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
)

type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create добавляет запись в журнал. Журнал append-only:
// операций обновления и удаления у репозитория нет.
func (r *ActivityRepository) Create(ctx context.Context, record *domain.ActivityLog) error {
	query := `
        INSERT INTO activity_logs (actor_user_id, action, details)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		record.ActorUserID,
		record.Action,
		record.Details,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity record: %w", err)
	}

	return nil
}

// ListRecent возвращает последние записи журнала для аудита
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	var records []domain.ActivityLog
	query := `SELECT * FROM activity_logs ORDER BY created_at DESC, id DESC LIMIT $1`

	err := r.db.SelectContext(ctx, &records, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity records: %w", err)
	}

	return records, nil
}
