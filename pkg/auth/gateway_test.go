package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSPreflight(t *testing.T) {
	h := PerimeterMiddleware(SecConfig{AllowedOrigins: []string{"http://localhost:3000"}})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/paper", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSUnknownOrigin(t *testing.T) {
	h := PerimeterMiddleware(SecConfig{AllowedOrigins: []string{"http://localhost:3000"}})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/papers", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestIPWhitelistBlocks(t *testing.T) {
	h := PerimeterMiddleware(SecConfig{IPWhitelist: []string{"10.0.0.1"}})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/papers", nil)
	req.RemoteAddr = "192.168.1.5:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/papers", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimitTrips(t *testing.T) {
	h := PerimeterMiddleware(SecConfig{RPS: 1, Burst: 2})(okHandler())

	var got []int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/papers", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		got = append(got, rr.Code)
	}
	require.Equal(t, http.StatusOK, got[0])
	require.Equal(t, http.StatusOK, got[1])
	require.Equal(t, http.StatusTooManyRequests, got[2])
	require.Equal(t, http.StatusTooManyRequests, got[3])
}

func TestHealthProbesBypassRateLimit(t *testing.T) {
	h := PerimeterMiddleware(SecConfig{RPS: 1, Burst: 1})(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}
}
