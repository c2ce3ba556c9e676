package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/voxauth/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket: RequestsPerWindow refill evenly over
// Window, and up to Burst may be spent at once.
type RateLimitConfig struct {
	RequestsPerWindow int           `env:"REQUESTS"`
	Window            time.Duration `env:"WINDOW"`
	Burst             int           `env:"BURST"`
}

func (c RateLimitConfig) limit() rate.Limit {
	if c.RequestsPerWindow <= 0 || c.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// Limits groups the per-route profiles. Fields can be overridden from the
// environment as RATELIMIT_{STRICT,MODERATE,PUBLIC}_{REQUESTS,WINDOW,BURST}.
type Limits struct {
	// Strict guards credential and OTP endpoints against guessing.
	Strict RateLimitConfig `envPrefix:"STRICT_"`
	// Moderate covers signup and enrollment, which fan out to mail and
	// transcription.
	Moderate RateLimitConfig `envPrefix:"MODERATE_"`
	// Public covers profile reads and probes.
	Public RateLimitConfig `envPrefix:"PUBLIC_"`
}

// DefaultLimits: strict 5/min, moderate 20/min, public 1000/min, each with
// the full allowance available as a burst.
func DefaultLimits() Limits {
	return Limits{
		Strict:   RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5},
		Moderate: RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20},
		Public:   RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000},
	}
}

// KeyExtractor picks the bucket a request is charged to. An empty key
// exempts the request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// It handles X-Forwarded-For and X-Real-IP headers for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// AccountIDKeyExtractor keys on the authenticated account id.
// Returns empty string for anonymous requests.
func AccountIDKeyExtractor(r *http.Request) string {
	id, _ := AccountIDFromContext(r.Context())
	return id
}

// FirstKeyExtractor uses the first extractor that yields a key, e.g. the
// account when signed in and the address otherwise.
func FirstKeyExtractor(extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				return key
			}
		}
		return ""
	}
}

// PathValueKeyExtractor keys on a ServeMux wildcard such as {id}, so a
// single account can be throttled no matter where requests come from.
func PathValueKeyExtractor(name string) KeyExtractor {
	return func(r *http.Request) string {
		if v := r.PathValue(name); v != "" {
			return name + "=" + v
		}
		return ""
	}
}

// sweepEvery bounds how often idle buckets are dropped.
const sweepEvery = time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// buckets holds one token bucket per key. A bucket idle for a full window
// has refilled completely, so dropping it loses nothing.
type buckets struct {
	cfg RateLimitConfig
	now func() time.Time

	mu        sync.Mutex
	m         map[string]*bucket
	lastSweep time.Time
}

func newBuckets(cfg RateLimitConfig, now func() time.Time) *buckets {
	if now == nil {
		now = time.Now
	}
	return &buckets{cfg: cfg, now: now, m: make(map[string]*bucket), lastSweep: now()}
}

// take spends one token for key. When refused it reports how long until the
// next token.
func (b *buckets) take(key string) (ok bool, retryAfter time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.Sub(b.lastSweep) >= sweepEvery {
		b.sweep(now)
	}

	bk, found := b.m[key]
	if !found {
		bk = &bucket{lim: rate.NewLimiter(b.cfg.limit(), b.cfg.Burst)}
		b.m[key] = bk
	}
	bk.lastSeen = now

	if bk.lim.AllowN(now, 1) {
		return true, 0
	}

	r := bk.lim.ReserveN(now, 1)
	retryAfter = r.DelayFrom(now)
	r.CancelAt(now)
	return false, retryAfter
}

func (b *buckets) sweep(now time.Time) {
	idle := max(b.cfg.Window, sweepEvery)
	for k, bk := range b.m {
		if now.Sub(bk.lastSeen) >= idle {
			delete(b.m, k)
		}
	}
	b.lastSweep = now
}

func (b *buckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m)
}

// RateLimitMiddleware throttles requests per key. Refused requests get 429
// with Retry-After and the configured limit in headers.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	return rateLimit(newBuckets(config, nil), keyExtractor)
}

func rateLimit(b *buckets, keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyExtractor(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := b.take(key)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(wait.Round(time.Second)/time.Second), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(b.cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", b.cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", key,
				"endpoint", r.URL.Path,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}

// RateLimitByIP creates a rate limiter that limits by IP address only.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}

// RateLimitByAccount limits by authenticated account, falling back to IP.
func RateLimitByAccount(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, FirstKeyExtractor(
		func(r *http.Request) string {
			if id := AccountIDKeyExtractor(r); id != "" {
				return "account=" + id
			}
			return ""
		},
		IPKeyExtractor,
	))
}

// RateLimitByPathValue limits per value of a route wildcard.
func RateLimitByPathValue(config RateLimitConfig, name string) Middleware {
	return RateLimitMiddleware(config, PathValueKeyExtractor(name))
}
