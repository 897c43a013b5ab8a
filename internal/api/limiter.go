package api

import (
	"marafon/internal/config"

	"golang.org/x/time/rate"
)

const defaultBurst = 5

// clientLimiter holds one token bucket per configured API client. Clients
// are known at startup, so the map is built once and only read afterwards.
type clientLimiter struct {
	buckets map[string]*rate.Limiter
}

// newClientLimiter returns nil when RPS is not positive, which disables
// limiting.
func newClientLimiter(cfg config.APIConfig) *clientLimiter {
	if cfg.RateLimit.RPS <= 0 {
		return nil
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	l := &clientLimiter{buckets: make(map[string]*rate.Limiter, len(cfg.Auth.APIKeys))}
	for _, k := range cfg.Auth.APIKeys {
		l.buckets[clientName(k)] = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}
	return l
}

func (l *clientLimiter) allow(client string) bool {
	if l == nil {
		return true
	}
	bucket, ok := l.buckets[client]
	if !ok {
		return false
	}
	return bucket.Allow()
}

// clientName is the label a key is logged and limited under.
func clientName(k config.APIClientKey) string {
	if k.Name != "" {
		return k.Name
	}
	return k.Key
}
