package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-api/internal/middleware"
	"booking-api/internal/session"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitBurstExceeded(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 2)
	h := middleware.RateLimit(rl)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitPerIP(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 1)
	h := middleware.RateLimit(rl)(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// a different client gets its own bucket
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSessionMissingIdentity(t *testing.T) {
	h := middleware.RequireSession(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSessionPopulatesContext(t *testing.T) {
	var got session.Session
	var ok bool
	h := middleware.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = session.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderUserID, "u1")
	req.Header.Set(middleware.HeaderUserName, "Ada")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, ok)
	assert.Equal(t, session.Session{ID: "u1", UserID: "u1", UserName: "Ada"}, got)
}

func TestRequireSessionExplicitSessionID(t *testing.T) {
	var got session.Session
	h := middleware.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderUserID, "u1")
	req.Header.Set(middleware.HeaderSessionID, "s-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "s-42", got.ID)
	assert.Equal(t, "u1", got.UserID)
}
