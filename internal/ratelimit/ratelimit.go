package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"
)

// Limiter определяет абстракцию ограничителя частоты запросов.
// Решения о доступе от него не зависят: это грубая защита от злоупотреблений.
type Limiter interface {
	IsLimited(key string) bool
}

type window struct {
	start time.Time
	count int
}

// FixedWindow реализует ограничитель с фиксированным окном в памяти
// процесса. Счетчики сбрасываются при рестарте — для защиты от
// злоупотреблений этого достаточно.
type FixedWindow struct {
	mu     sync.Mutex
	limit  int
	period time.Duration
	keys   map[string]*window
	now    func() time.Time
}

func NewFixedWindow(limit int, period time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:  limit,
		period: period,
		keys:   make(map[string]*window),
		now:    time.Now,
	}
}

// IsLimited учитывает запрос и сообщает, превышен ли лимит окна
func (f *FixedWindow) IsLimited(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	w, ok := f.keys[key]
	if !ok || now.Sub(w.start) >= f.period {
		f.keys[key] = &window{start: now, count: 1}
		return false
	}

	w.count++
	return w.count > f.limit
}

// Middleware ограничивает запросы по адресу вызывающего
func Middleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if limiter.IsLimited(host) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
