package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanAsante/doc-upload-app-sub000/internal/domain"
)

type fakeUserSource struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeUserSource) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[email], nil
}

func newTestResolver() *Resolver {
	return NewResolver(&fakeUserSource{users: map[string]*domain.User{
		"alice@example.com": {ID: 1, Email: "alice@example.com", Role: domain.RoleCustomer, Status: domain.StatusApproved},
	}})
}

func TestResolveFromHeader(t *testing.T) {
	r := newTestResolver()

	req := httptest.NewRequest(http.MethodGet, "/v1/files/x", nil)
	req.Header.Set(EmailHeader, "alice@example.com")

	user, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestResolveFromCookie(t *testing.T) {
	r := newTestResolver()

	req := httptest.NewRequest(http.MethodGet, "/v1/files/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "alice@example.com"})

	user, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestResolveHeaderTakesPrecedence(t *testing.T) {
	src := &fakeUserSource{users: map[string]*domain.User{
		"header@example.com": {ID: 1, Email: "header@example.com"},
		"cookie@example.com": {ID: 2, Email: "cookie@example.com"},
	}}
	r := NewResolver(src)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EmailHeader, "header@example.com")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie@example.com"})

	user, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestResolveMissingIdentity(t *testing.T) {
	r := newTestResolver()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveAnonymousSentinel(t *testing.T) {
	r := newTestResolver()

	// "anonymous" — документированное значение "нет пользователя",
	// а не email настоящего аккаунта
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EmailHeader, "anonymous")

	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveUnknownEmail(t *testing.T) {
	r := newTestResolver()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EmailHeader, "nobody@example.com")

	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveCaseSensitive(t *testing.T) {
	r := newTestResolver()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EmailHeader, "ALICE@example.com")

	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveLookupError(t *testing.T) {
	storeErr := errors.New("connection refused")
	r := NewResolver(&fakeUserSource{err: storeErr})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EmailHeader, "alice@example.com")

	_, err := r.Resolve(req)
	require.Error(t, err)
	// Сбой хранилища не маскируется под отсутствие аутентификации
	assert.NotErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, err, storeErr)
}
