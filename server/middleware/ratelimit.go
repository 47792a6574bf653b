package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/kbukum/tashkeel/errors"
	"github.com/kbukum/tashkeel/resilience"
)

// RateLimitConfig configures per-client token buckets.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	// KeyFunc extracts the client key. Defaults to the remote IP.
	KeyFunc func(*http.Request) string `yaml:"-" mapstructure:"-"`
}

// idleBucketTTL is how long an unused client bucket is kept.
const idleBucketTTL = 10 * time.Minute

// RateLimit rejects requests over the per-client rate with 429. Health
// endpoints are never limited.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = RemoteIPKey
	}
	rl := &clientLimiters{cfg: cfg, buckets: make(map[string]*bucket)}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHealthEndpoint(r.URL.Path) || rl.allow(cfg.KeyFunc(r)) {
				next.ServeHTTP(w, r)
				return
			}
			appErr := apperrors.RateLimited()
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(appErr.HTTPStatus)
			_ = json.NewEncoder(w).Encode(appErr.ToResponse())
		})
	}
}

// RemoteIPKey keys buckets by the connection's remote IP.
func RemoteIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type bucket struct {
	limiter  *resilience.RateLimiter
	lastSeen time.Time
}

type clientLimiters struct {
	cfg       RateLimitConfig
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func (c *clientLimiters) allow(key string) bool {
	now := time.Now()
	c.mu.Lock()
	if now.Sub(c.lastSweep) > idleBucketTTL {
		for k, b := range c.buckets {
			if now.Sub(b.lastSeen) > idleBucketTTL {
				delete(c.buckets, k)
			}
		}
		c.lastSweep = now
	}
	b, ok := c.buckets[key]
	if !ok {
		b = &bucket{limiter: resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  key,
			Rate:  c.cfg.RequestsPerSecond,
			Burst: c.cfg.Burst,
		})}
		c.buckets[key] = b
	}
	b.lastSeen = now
	c.mu.Unlock()
	return b.limiter.Allow()
}

// retryAfter is the whole seconds until one token is refilled.
func (c *clientLimiters) retryAfter() int {
	if c.cfg.RequestsPerSecond <= 0 || c.cfg.RequestsPerSecond >= 1 {
		return 1
	}
	return int(1/c.cfg.RequestsPerSecond + 0.999)
}
