package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowUnderLimit(t *testing.T) {
	fw := NewFixedWindow(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.False(t, fw.IsLimited("10.0.0.1"), "request %d must pass", i+1)
	}
	assert.True(t, fw.IsLimited("10.0.0.1"))
}

func TestFixedWindowPerKey(t *testing.T) {
	fw := NewFixedWindow(1, time.Minute)

	assert.False(t, fw.IsLimited("10.0.0.1"))
	assert.True(t, fw.IsLimited("10.0.0.1"))

	// Другой ключ считается отдельно
	assert.False(t, fw.IsLimited("10.0.0.2"))
}

func TestFixedWindowReset(t *testing.T) {
	current := time.Now()
	fw := NewFixedWindow(1, time.Minute)
	fw.now = func() time.Time { return current }

	assert.False(t, fw.IsLimited("10.0.0.1"))
	assert.True(t, fw.IsLimited("10.0.0.1"))

	// По истечении окна счетчик начинается заново
	current = current.Add(time.Minute)
	assert.False(t, fw.IsLimited("10.0.0.1"))
}

type alwaysLimited struct{}

func (alwaysLimited) IsLimited(string) bool { return true }

type neverLimited struct{}

func (neverLimited) IsLimited(string) bool { return false }

func TestMiddlewarePasses(t *testing.T) {
	handler := Middleware(neverLimited{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareRejects(t *testing.T) {
	handler := Middleware(alwaysLimited{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"too many requests"}`, rec.Body.String())
}
