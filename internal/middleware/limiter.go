package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"clover-print-diag/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// tier is one per-client quota.
type tier struct {
	name  string
	limit rate.Limit
	burst int
}

var (
	// POST routes create orders, payments or print events on the merchant.
	strictTier  = tier{name: "strict", limit: rate.Limit(1), burst: 5}
	generalTier = tier{name: "general", limit: rate.Limit(10), burst: 20}
)

const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitorStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	sweep    sync.Once
}

var clients = &visitorStore{visitors: make(map[string]*visitor)}

// limiter returns the bucket for key, creating it with t's quota on first use.
func (s *visitorStore) limiter(key string, t tier) *rate.Limiter {
	s.sweep.Do(func() { go s.evictLoop() })

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if v, ok := s.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	l := rate.NewLimiter(t.limit, t.burst)
	s.visitors[key] = &visitor{limiter: l, lastSeen: now}
	return l
}

func (s *visitorStore) evict(idle time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, v := range s.visitors {
		if time.Since(v.lastSeen) > idle {
			delete(s.visitors, key)
		}
	}
}

func (s *visitorStore) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.evict(visitorTTL)
	}
}

// RateLimitMiddleware applies the per-client quota of the request's tier.
// Each tier has its own bucket per client.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := tierFor(r)
		key := clientIdentity(r) + ":" + t.name

		if !clients.limiter(key, t).Allow() {
			logger.FromCtx(r.Context()).Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", r.URL.Path),
			)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIdentity(r *http.Request) string {
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

func tierFor(r *http.Request) tier {
	if r.Method == http.MethodPost {
		return strictTier
	}
	return generalTier
}
