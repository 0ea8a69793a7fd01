package service

import (
	"context"
	"fmt"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
)

// ActivityStore определяет хранилище журнала активности
type ActivityStore interface {
	Create(ctx context.Context, record *domain.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.ActivityLog, error)
}

// ActivityService ведет append-only журнал действий над файлами.
// Журнал используется только для аудита; политика доступа его не читает.
type ActivityService struct {
	activityRepo ActivityStore
}

func NewActivityService(activityRepo ActivityStore) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Record фиксирует действие пользователя
func (s *ActivityService) Record(ctx context.Context, actorID int64, action, details string) error {
	record := &domain.ActivityLog{
		ActorUserID: actorID,
		Action:      action,
		Details:     details,
	}

	if err := s.activityRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	return nil
}

// Recent возвращает последние записи журнала
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.activityRepo.ListRecent(ctx, limit)
}
