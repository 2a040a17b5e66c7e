package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"voyage/config"
	otelMocks "voyage/infras/otel/mocks"
	"voyage/shared/cache"
	"voyage/shared/constant"
	"voyage/shared/metrics"
	"voyage/transport/http/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedHandler(t *testing.T, backend string, enable bool) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.Backend = backend
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	t.Cleanup(func() { _ = client.Close() })

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, cache.NewRedisCache(client, otelMocks.NewOtel()), metrics.NewNop())

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return app.Tracing(app.RateLimit()(ok))
}

func hit(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/mine", nil)
	req.Header.Set(constant.RequestHeaderForwardedFor, ip+", 10.0.0.1")
	req.Header.Set(constant.RequestHeaderUserAgent, "test-agent")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRateLimit(t *testing.T) {
	for _, backend := range []string{config.RateLimiterBackendRedis, config.RateLimiterBackendMemory} {
		t.Run(backend, func(t *testing.T) {
			handler := newLimitedHandler(t, backend, true)

			first := hit(handler, "203.0.113.7")
			require.Equal(t, http.StatusOK, first.Code)
			assert.Equal(t, "2", first.Header().Get(constant.RequestHeaderRateLimit))
			assert.Equal(t, "1", first.Header().Get(constant.RequestHeaderRateLimitRemaining))

			assert.Equal(t, http.StatusOK, hit(handler, "203.0.113.7").Code)
			assert.Equal(t, http.StatusTooManyRequests, hit(handler, "203.0.113.7").Code)

			// Other clients keep their own allowance.
			assert.Equal(t, http.StatusOK, hit(handler, "198.51.100.2").Code)
		})
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := newLimitedHandler(t, config.RateLimiterBackendRedis, false)

	for range 5 {
		assert.Equal(t, http.StatusOK, hit(handler, "203.0.113.7").Code)
	}
}
