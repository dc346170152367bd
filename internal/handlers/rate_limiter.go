package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/woodcraft-atelier/api/internal/platform/httpx"
)

const limiterIdleTTL = 10 * time.Minute

// keyedRateLimiter keeps one token bucket per client key. Buckets idle for
// limiterIdleTTL are dropped.
type keyedRateLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *cache.Cache
}

// newKeyedRateLimiter allows perMinute requests per key with the given
// burst. A non-positive rate disables limiting.
func newKeyedRateLimiter(perMinute, burst int) *keyedRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &keyedRateLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		buckets: cache.New(limiterIdleTTL, limiterIdleTTL),
	}
}

// reserve reports whether key may proceed now and, if not, how long to wait.
func (l *keyedRateLimiter) reserve(key string, now time.Time) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}
	var limiter *rate.Limiter
	if value, ok := l.buckets.Get(key); ok {
		limiter = value.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.limit, l.burst)
		if err := l.buckets.Add(key, limiter, cache.DefaultExpiration); err != nil {
			// Lost a race with a concurrent first request from the same key.
			if value, ok := l.buckets.Get(key); ok {
				limiter = value.(*rate.Limiter)
			}
		}
	}
	l.buckets.Set(key, limiter, cache.DefaultExpiration)

	if limiter.AllowN(now, 1) {
		return true, 0
	}
	wait := time.Duration(float64(time.Second) / float64(l.limit))
	return false, wait
}

// rateLimit rejects requests above the limit with 429 and Retry-After.
func rateLimit(l *keyedRateLimiter, key func(*http.Request) string, clock func() time.Time) func(http.Handler) http.Handler {
	if clock == nil {
		clock = time.Now
	}
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.reserve(key(r), clock())
			if !ok {
				retry := int(math.Ceil(wait.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				httpx.WriteError(r.Context(), w, httpx.NewError(httpx.CodeRateLimited, "too many submissions, please try again later", http.StatusTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
