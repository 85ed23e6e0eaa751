package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}

	t.Run("requests beyond the burst are rejected", func(t *testing.T) {
		handler := RateLimitByIP(cfg)(okHandler())

		for range 2 {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
			req.RemoteAddr = "203.0.113.7:40000"
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("distinct keys have independent buckets", func(t *testing.T) {
		handler := RateLimitByIP(cfg)(okHandler())

		for _, addr := range []string{"198.51.100.1:1", "198.51.100.2:1", "198.51.100.3:1"} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
			req.RemoteAddr = addr
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("client id header takes precedence over IP", func(t *testing.T) {
		handler := RateLimitByClientID(cfg)(okHandler())

		// Exhaust the bucket for one client id.
		for range 3 {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
			req.RemoteAddr = "192.0.2.1:1"
			req.Header.Set(ClientIDHeader, "user-a")
			handler.ServeHTTP(rec, req)
		}

		// A different client id from the same address is unaffected.
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
		req.RemoteAddr = "192.0.2.1:1"
		req.Header.Set(ClientIDHeader, "user-b")
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	t.Parallel()

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		req.RemoteAddr = "10.0.0.2:99"
		require.Equal(t, "203.0.113.9", IPKeyExtractor(req))
	})

	t.Run("falls back to RemoteAddr host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:1234"
		require.Equal(t, "198.51.100.7", IPKeyExtractor(req))
	})
}
