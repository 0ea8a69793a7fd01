package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage хранит файлы в защищённой директории на диске.
// Директория лежит вне публично раздаваемых путей: байты всегда
// проксируются через приложение после проверки прав доступа.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage создает локальное хранилище в указанной директории
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// path строит путь к объекту, предварительно проверив ключ.
// Ключи формируются через MakeKey, но перед обращением к файловой
// системе набор символов проверяется ещё раз.
func (l *LocalStorage) path(key string) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(l.dir, key), nil
}

// Store записывает файл целиком
func (l *LocalStorage) Store(_ context.Context, key string, data []byte) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Read читает файл целиком
func (l *LocalStorage) Read(_ context.Context, key string) ([]byte, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete удаляет файл. Отсутствующий файл не считается ошибкой
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists проверяет наличие файла
func (l *LocalStorage) Exists(_ context.Context, key string) (bool, error) {
	p, err := l.path(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

// SignedURL для локального бэкенда возвращает ссылку, которую
// обслуживает само приложение. Локальная ссылка не истекает,
// поэтому обе политики дают одинаковый результат.
func (l *LocalStorage) SignedURL(_ context.Context, key string, _ URLPolicy) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return l.baseURL + "/v1/files/" + key, nil
}
