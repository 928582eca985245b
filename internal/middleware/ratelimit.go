package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// RateLimit allows limit requests per client IP in each fixed window. Counters
// live in an expiring cache so idle clients are dropped with their window.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	counters := cache.New(per, per)
	retryAfter := strconv.Itoa(int((per + time.Second - 1) / time.Second))

	allow := func(ip string) bool {
		if err := counters.Add(ip, 1, per); err == nil {
			return true
		}
		n, err := counters.IncrementInt(ip, 1)
		if err != nil {
			// Window expired between Add and IncrementInt.
			counters.Set(ip, 1, per)
			return true
		}
		return n <= limit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && !allow(clientIPForRateLimit(r)) {
				w.Header().Set("Retry-After", retryAfter)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"rate_limited","message":"too many requests"}}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			if ip := strings.TrimSpace(part); net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
