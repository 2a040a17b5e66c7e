package middleware

import (
	"fmt"
	"net/http"
	"time"
	"voyage/config"
	"voyage/infras/otel"
	"voyage/shared/cache"
	"voyage/shared/constant"
	"voyage/shared/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	otelHTTPScopeName = "http"
)

type AppMiddleware interface {
	Tracing(next http.Handler) http.Handler
	RateLimit() func(http.Handler) http.Handler
}

type appMiddleware struct {
	otel     otel.Otel
	config   *config.Config
	cache    cache.RedisCache
	metrics  *metrics.Metrics
	limiters *limiterStore
}

func NewAppMiddleware(otel otel.Otel, config *config.Config, cache cache.RedisCache, m *metrics.Metrics) AppMiddleware {
	return &appMiddleware{
		otel:     otel,
		config:   config,
		cache:    cache,
		metrics:  m,
		limiters: newLimiterStore(config.App.RateLimiter.MaxRequests, config.App.RateLimiter.WindowSeconds),
	}
}

// Tracing opens the request span and records latency by route pattern.
func (a *appMiddleware) Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx, scope := a.otel.NewScope(r.Context(), otelHTTPScopeName, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
		defer scope.End()

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		scope.SetAttributes(map[string]any{
			"app.name":        a.config.App.Name,
			"http.path":       r.URL.Path,
			"http.method":     r.Method,
			"http.user_agent": r.Header.Get(constant.RequestHeaderUserAgent),
			"http.host":       r.Host,
			"http.source":     a.getClientIP(r),
		})

		next.ServeHTTP(ww, r.WithContext(ctx))

		route := r.URL.Path
		if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		scope.SetAttributes(map[string]any{
			"http.route":       route,
			"http.status_code": status,
		})

		a.metrics.ObserveHTTP(r.Method, route, status, time.Since(start).Seconds())
	})
}
