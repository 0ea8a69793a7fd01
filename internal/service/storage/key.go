package storage

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Разрешённый набор символов для компонентов ключа хранилища:
// буквы, цифры, точка и дефис. Всё остальное заменяется на дефис.
var keyForbidden = regexp.MustCompile(`[^a-zA-Z0-9.\-]`)

// MakeKey формирует уникальный ключ хранилища из оригинального имени файла.
// Случайный префикс гарантирует, что два файла с одинаковыми именами
// никогда не столкнутся по ключу.
func MakeKey(originalName string) string {
	return uuid.New().String() + "-" + SanitizeName(originalName)
}

// SanitizeName приводит пользовательское имя файла к безопасному виду.
// Имя с path-traversal или спецсимволами после очистки содержит только
// разрешённый набор символов; сырое имя никогда не попадает в бэкенд.
func SanitizeName(name string) string {
	// Обратный слэш считается разделителем: имена приходят и из Windows
	base := filepath.Base(filepath.ToSlash(strings.ReplaceAll(name, `\`, `/`)))
	base = keyForbidden.ReplaceAllString(base, "-")
	// Ведущие точки убираем, чтобы не получить скрытый файл или ".."
	base = strings.TrimLeft(base, ".")
	if base == "" {
		base = "file"
	}
	return base
}

// ValidKey проверяет, что ключ состоит только из разрешённых символов.
// Ключи с ведущей точкой отклоняются: MakeKey таких не выдаёт, а ".."
// в качестве ключа означал бы выход из директории хранилища.
func ValidKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, ".") && !keyForbidden.MatchString(key)
}
