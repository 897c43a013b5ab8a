package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"marafon/internal/config"
)

var (
	errMissingKey    = errors.New("missing api key header")
	errInvalidKey    = errors.New("invalid api key")
	errNoKeys        = errors.New("api keys are not configured")
	errRateLimited   = errors.New("rate limit exceeded")
	defaultKeyHeader = "x-api-key"
)

// HTTPAuth provides API-key auth and per-key rate limiting for HTTP endpoints.
type HTTPAuth struct {
	cfg     config.APIConfig
	header  string
	keys    []config.APIClientKey
	limiter *clientLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	header := strings.TrimSpace(strings.ToLower(cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = defaultKeyHeader
	}
	return &HTTPAuth{
		cfg:     cfg,
		header:  header,
		keys:    cfg.Auth.APIKeys,
		limiter: newClientLimiter(cfg),
	}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client, err := a.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		if !a.limiter.allow(client) {
			writeError(w, http.StatusTooManyRequests, errRateLimited.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate returns the rate-limit key of the caller.
func (a *HTTPAuth) authenticate(r *http.Request) (string, error) {
	if len(a.keys) == 0 {
		return "", errNoKeys
	}

	apiKey := strings.TrimSpace(r.Header.Get(a.header))
	if apiKey == "" {
		return "", errMissingKey
	}

	for _, k := range a.keys {
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(apiKey)) == 1 {
			return clientName(k), nil
		}
	}
	return "", errInvalidKey
}
