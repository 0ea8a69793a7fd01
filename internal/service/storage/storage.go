// storage.go
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound возвращается, когда объект с указанным ключом
// отсутствует в хранилище
var ErrObjectNotFound = errors.New("object not found")

// URLPolicy определяет политику срока действия подписанной ссылки
type URLPolicy int

const (
	// URLPolicyCanonical — долгоживущая ссылка, сохраняемая как
	// каноническое расположение файла в записи о загрузке
	URLPolicyCanonical URLPolicy = iota
	// URLPolicyView — короткоживущая ссылка для разового просмотра
	URLPolicyView
)

const (
	canonicalURLTTL = 365 * 24 * time.Hour
	viewURLTTL      = time.Hour
)

// TTL возвращает срок действия ссылки для данной политики
func (p URLPolicy) TTL() time.Duration {
	if p == URLPolicyView {
		return viewURLTTL
	}
	return canonicalURLTTL
}

// Storage определяет интерфейс для работы с хранилищем файлов.
// Политика доступа и сервис отдачи файлов не знают, какой бэкенд
// стоит за интерфейсом: локальная директория или S3-совместимый бакет.
type Storage interface {
	Store(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SignedURL(ctx context.Context, key string, policy URLPolicy) (string, error)
}
