package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(t *testing.T, requests int) (*Limiter, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	l := New(Config{Requests: requests, Window: time.Minute, CleanupInterval: time.Hour}).WithClock(clock.now)
	t.Cleanup(l.Stop)

	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	l, clock := newTestLimiter(t, 3)

	for range 3 {
		ok, _ := l.Allow("10.0.0.1")
		assert.True(t, ok)
	}

	clock.t = clock.t.Add(20 * time.Second)

	ok, retry := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, retry)

	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok, "other clients have their own window")

	clock.t = clock.t.Add(40 * time.Second)

	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok, "window resets after a minute")
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t, 1)

	l.Allow("10.0.0.1")
	clock.t = clock.t.Add(30 * time.Second)
	l.Allow("10.0.0.2")
	assert.Equal(t, 2, l.Clients())

	clock.t = clock.t.Add(45 * time.Second)
	l.cleanup()

	assert.Equal(t, 1, l.Clients())
}

func TestLimiter_Middleware(t *testing.T) {
	l, _ := newTestLimiter(t, 1)

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:5000").Code)

	rec := call("192.0.2.1:6000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"message":"Too many requests, please try again later."}`, rec.Body.String())
}
