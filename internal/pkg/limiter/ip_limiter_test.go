package limiter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"roomchat/internal/pkg/limiter"
)

func TestGetLimiterReturnsSameInstancePerIP(t *testing.T) {
	l := limiter.NewIPRateLimiter(rate.Limit(1), 1)

	first := l.GetLimiter("10.0.0.1")
	second := l.GetLimiter("10.0.0.1")
	other := l.GetLimiter("10.0.0.2")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestMiddlewareLimitsBursts(t *testing.T) {
	l := limiter.NewIPRateLimiter(rate.Limit(0.01), 2)

	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for j := 0; j < 3; j++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:4242"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:12345"
	assert.Equal(t, "192.168.1.5", limiter.ClientIP(req))

	req.RemoteAddr = "192.168.1.5"
	assert.Equal(t, "192.168.1.5", limiter.ClientIP(req))
}
