package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenBucket implements per-client token bucket rate limiting.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a bucket holding capacity tokens that refills
// at refillRate tokens per second.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Remaining reports the whole tokens currently available.
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return int(tb.tokens)
}

// RetryAfter reports how long until the next token becomes available.
func (tb *TokenBucket) RetryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	if tb.tokens >= 1 {
		return 0
	}
	deficit := 1 - tb.tokens
	return time.Duration(deficit / tb.refillRate * float64(time.Second))
}

func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}
	tb.lastRefill = now
}

// Info describes the outcome of a rate limit check. The server uses it
// to populate X-RateLimit-* response headers.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter tracks token buckets per client and endpoint.
type Limiter struct {
	config Config

	mu      sync.Mutex
	buckets map[string]*TokenBucket

	stopCleanup chan struct{}
}

// NewLimiter creates a limiter from config and starts the idle bucket
// sweeper.
func NewLimiter(config Config) *Limiter {
	l := &Limiter{
		config:      config,
		buckets:     make(map[string]*TokenBucket),
		stopCleanup: make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow checks whether the request is within limits for its endpoint.
func (l *Limiter) Allow(r *http.Request) Info {
	if !l.config.Enabled {
		return Info{Allowed: true}
	}

	endpoint := MatchEndpoint(l.config.Endpoints, r.URL.Path, r.Method)
	if endpoint == nil || endpoint.Unlimited {
		return Info{Allowed: true}
	}

	clientID := ClientID(r, l.config.TrustProxyHeaders)
	key := fmt.Sprintf("%s:%s:%s", clientID, endpoint.Path, endpoint.Method)

	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = NewTokenBucket(endpoint.Burst, endpoint.RatePerSecond)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	if bucket.Allow() {
		return Info{Allowed: true, Limit: endpoint.Burst, Remaining: bucket.Remaining()}
	}
	return Info{
		Allowed:    false,
		Limit:      endpoint.Burst,
		Remaining:  0,
		RetryAfter: bucket.RetryAfter(),
	}
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	close(l.stopCleanup)
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopCleanup:
			return
		}
	}
}

// sweep drops buckets that have fully refilled; an idle client's next
// request recreates its bucket at full capacity anyway.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		if bucket.Remaining() >= bucket.capacity {
			delete(l.buckets, key)
		}
	}
}

// ClientID extracts a stable client identifier from the request,
// preferring proxy headers when configured.
func ClientID(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			parts := strings.Split(fwd, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// MatchEndpoint finds the config entry for a path and method. Exact
// path matches win over prefix matches; longer prefixes win over
// shorter ones.
func MatchEndpoint(endpoints []EndpointConfig, path, method string) *EndpointConfig {
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}

	var best *EndpointConfig
	for i := range endpoints {
		ep := &endpoints[i]
		if ep.Method != "" && ep.Method != method {
			continue
		}
		if ep.Path == path {
			return ep
		}
		if ep.Prefix && strings.HasPrefix(path, ep.Path) {
			if best == nil || len(ep.Path) > len(best.Path) {
				best = ep
			}
		}
	}
	return best
}
