package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"voyage/config"
	"voyage/shared"
	"voyage/shared/constant"
	"voyage/transport/http/response"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	cacheKeyRateLimit = "limiter"
)

// limiterStore keeps one token bucket per client for the in-process backend.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLimiterStore(maxRequests, windowSeconds int) *limiterStore {
	store := &limiterStore{limiters: make(map[string]*rate.Limiter), burst: max(maxRequests, 1)}

	store.limit = rate.Inf
	if maxRequests > 0 && windowSeconds > 0 {
		store.limit = rate.Every(time.Duration(windowSeconds) * time.Second / time.Duration(maxRequests))
	}

	return store
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = limiter
	}

	return limiter
}

func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.config.App.RateLimiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			maxReqs := a.config.App.RateLimiter.MaxRequests
			windowSecs := a.config.App.RateLimiter.WindowSeconds

			userAgent := a.getUA(r)
			clientIP := a.getClientIP(r)
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, clientIP, userAgent)

			if a.config.App.RateLimiter.Backend == config.RateLimiterBackendMemory {
				limiter := a.limiters.get(cacheKey)
				if !limiter.Allow() {
					response.WithRequestLimitExceeded(w)

					return
				}

				w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
				w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, int(limiter.Tokens()))))
				w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(windowSecs))

				next.ServeHTTP(w, r)

				return
			}

			count, err := a.cache.Increment(r.Context(), cacheKey, windowSecs)
			if err != nil {
				// Fail open.
				log.Warn().Err(err).Str("key", cacheKey).Msg("Rate limiter unavailable, letting request through")
				next.ServeHTTP(w, r)

				return
			}

			if count > int64(maxReqs) {
				response.WithRequestLimitExceeded(w)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.FormatInt(max(0, int64(maxReqs)-count), 10))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(windowSecs))

			next.ServeHTTP(w, r)
		})
	}
}

func (a *appMiddleware) getUA(r *http.Request) string {
	ua := r.Header.Get(constant.RequestHeaderUserAgent)
	if ua == "" {
		ua = "unknown"
	}

	return ua
}

func (a *appMiddleware) getClientIP(r *http.Request) string {
	// Check for X-Forwarded-For header first (most common proxy header)
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		if commaIdx := strings.Index(xff, ","); commaIdx > 0 {
			return strings.TrimSpace(xff[:commaIdx])
		}

		return strings.TrimSpace(xff)
	}

	// Check for X-Real-IP header
	if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr
	return r.RemoteAddr
}
