package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
)

const (
	// EmailHeader несёт утверждение о email вызывающей стороны.
	// Это осознанная граница доверия: заголовок не подписан,
	// его консистентность обеспечивает слой UI.
	EmailHeader = "X-User-Email"

	// SessionCookie используется менеджерскими сессиями вместо заголовка
	SessionCookie = "session_email"

	// anonymousSentinel — документированное значение "нет пользователя"
	anonymousSentinel = "anonymous"
)

// ErrUnauthenticated возвращается, когда запрос не несёт идентичности
// или указанный email не найден среди пользователей
var ErrUnauthenticated = errors.New("unauthenticated")

// UserSource отдает запись пользователя по email.
// Возвращает (nil, nil), если пользователь не найден.
type UserSource interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Resolver извлекает идентичность вызывающего из метаданных запроса
// и разрешает её в запись пользователя. Resolver не отклоняет
// неподтверждённых пользователей — это работа политики доступа.
type Resolver struct {
	users UserSource
}

func NewResolver(users UserSource) *Resolver {
	return &Resolver{users: users}
}

// Resolve возвращает пользователя для запроса либо ErrUnauthenticated.
// Поиск по email строгий, с учётом регистра.
func (r *Resolver) Resolve(req *http.Request) (*domain.User, error) {
	email := req.Header.Get(EmailHeader)
	if email == "" {
		if c, err := req.Cookie(SessionCookie); err == nil {
			email = c.Value
		}
	}

	if email == "" || email == anonymousSentinel {
		return nil, ErrUnauthenticated
	}

	user, err := r.users.GetByEmail(req.Context(), email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return user, nil
}
