package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"marafon/internal/config"
	"marafon/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	stats *models.Statistics
	err   error
}

func (f fakeStats) Statistics(context.Context) (*models.Statistics, error) { return f.stats, f.err }

type fakePending []*models.Payment

func (f fakePending) PendingPayments(context.Context) ([]*models.Payment, error) { return f, nil }

type fakeStore struct{ err error }

func (f fakeStore) Ping(context.Context) error { return f.err }

func testConfig() config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		Auth: config.APIAuthConfig{
			HeaderAPIKey: "x-api-key",
			APIKeys:      []config.APIClientKey{{Key: "secret", Name: "grafana"}},
		},
	}
}

func newTestServer(t *testing.T, cfg config.APIConfig, deps Dependencies) *httptest.Server {
	t.Helper()
	logger := zerolog.New(io.Discard)
	srv := NewHTTPServer(cfg, deps, &logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url, key string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, testConfig(), Dependencies{})

	resp := get(t, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyz(t *testing.T) {
	ok := newTestServer(t, testConfig(), Dependencies{Store: fakeStore{}})
	assert.Equal(t, http.StatusOK, get(t, ok.URL+"/readyz", "").StatusCode)

	down := newTestServer(t, testConfig(), Dependencies{Store: fakeStore{err: errors.New("closed")}})
	assert.Equal(t, http.StatusServiceUnavailable, get(t, down.URL+"/readyz", "").StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, testConfig(), Dependencies{})

	resp := get(t, ts.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStats(t *testing.T) {
	stats := &models.Statistics{TotalUsers: 12, TotalRevenue: 597000}
	ts := newTestServer(t, testConfig(), Dependencies{Stats: fakeStats{stats: stats}})

	resp := get(t, ts.URL+"/api/v1/stats", "secret")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.Statistics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 12, body.TotalUsers)
	assert.Equal(t, int64(597000), body.TotalRevenue)
}

func TestStatsError(t *testing.T) {
	ts := newTestServer(t, testConfig(), Dependencies{Stats: fakeStats{err: errors.New("db")}})

	resp := get(t, ts.URL+"/api/v1/stats", "secret")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPendingPayments(t *testing.T) {
	pending := fakePending{{ID: 2, UserID: 10, Status: models.PaymentPending}, {ID: 1, UserID: 11, Status: models.PaymentPending}}
	ts := newTestServer(t, testConfig(), Dependencies{Payments: pending})

	resp := get(t, ts.URL+"/api/v1/payments/pending", "secret")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count    int               `json:"count"`
		Payments []models.Payment `json:"payments"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, int64(2), body.Payments[0].ID)
}

func TestAuth(t *testing.T) {
	deps := Dependencies{Stats: fakeStats{stats: &models.Statistics{}}}

	t.Run("MissingKey", func(t *testing.T) {
		ts := newTestServer(t, testConfig(), deps)
		assert.Equal(t, http.StatusUnauthorized, get(t, ts.URL+"/api/v1/stats", "").StatusCode)
	})

	t.Run("WrongKey", func(t *testing.T) {
		ts := newTestServer(t, testConfig(), deps)
		assert.Equal(t, http.StatusUnauthorized, get(t, ts.URL+"/api/v1/stats", "nope").StatusCode)
	})

	t.Run("NoKeysConfigured", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth.APIKeys = nil
		ts := newTestServer(t, cfg, deps)
		assert.Equal(t, http.StatusUnauthorized, get(t, ts.URL+"/api/v1/stats", "secret").StatusCode)
	})

	t.Run("HealthIsPublic", func(t *testing.T) {
		ts := newTestServer(t, testConfig(), deps)
		assert.Equal(t, http.StatusOK, get(t, ts.URL+"/healthz", "").StatusCode)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 0.001, Burst: 2}
	ts := newTestServer(t, cfg, Dependencies{Stats: fakeStats{stats: &models.Statistics{}}})

	assert.Equal(t, http.StatusOK, get(t, ts.URL+"/api/v1/stats", "secret").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, ts.URL+"/api/v1/stats", "secret").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, get(t, ts.URL+"/api/v1/stats", "secret").StatusCode)
}

func TestHTTPServer_Shutdown(t *testing.T) {
	logger := zerolog.Nop()
	srv := NewHTTPServer(testConfig(), Dependencies{}, &logger)
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestClientLimiter(t *testing.T) {
	assert.Nil(t, newClientLimiter(config.APIConfig{}))
	assert.True(t, (*clientLimiter)(nil).allow("anyone"))

	cfg := config.APIConfig{
		Auth:      config.APIAuthConfig{APIKeys: []config.APIClientKey{{Key: "k1", Name: "ops"}, {Key: "k2"}}},
		RateLimit: config.APIRateLimitConfig{RPS: 0.001},
	}
	l := newClientLimiter(cfg)
	require.NotNil(t, l)
	assert.Len(t, l.buckets, 2)
	assert.Contains(t, l.buckets, "ops")
	assert.Contains(t, l.buckets, "k2")
	assert.False(t, l.allow("stranger"))
}
