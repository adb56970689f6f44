package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
	"github.com/ethereum-optimism/optimism/op-service/testlog"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthzHandle(t *testing.T) {
	h := NewHealthzServer(log.NewLogger(log.DiscardHandler()))

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetReady(true)
	rec = httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestService_Healthz(t *testing.T) {
	s := New(testlog.Logger(t, log.LevelInfo), Config{HealthzAddr: "127.0.0.1:0"}, opmetrics.NewRegistry())
	require.NoError(t, s.Start(context.Background()))
	assert.Nil(t, s.MetricsAddr())

	code, body := get(t, fmt.Sprintf("http://%s/healthz", s.Healthz.Addr()))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)

	require.NoError(t, s.Shutdown(context.Background()))
	_, err := http.Get(fmt.Sprintf("http://%s/healthz", s.Healthz.Addr()))
	require.Error(t, err)
}

func TestService_Metrics(t *testing.T) {
	registry := opmetrics.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "service_test_total"})
	registry.MustRegister(counter)
	counter.Inc()

	cfg := Config{Metrics: opmetrics.CLIConfig{Enabled: true, ListenAddr: "127.0.0.1", ListenPort: 0}}
	s := New(testlog.Logger(t, log.LevelInfo), cfg, registry)
	require.NoError(t, s.Start(context.Background()))
	defer func() { require.NoError(t, s.Shutdown(context.Background())) }()

	require.NotNil(t, s.MetricsAddr())
	assert.Nil(t, s.Healthz.Addr())

	code, body := get(t, fmt.Sprintf("http://%s/metrics", s.MetricsAddr()))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "service_test_total 1")
}

func TestService_HealthzBindFailure(t *testing.T) {
	s := New(log.NewLogger(log.DiscardHandler()), Config{HealthzAddr: "256.0.0.1:0"}, opmetrics.NewRegistry())
	require.Error(t, s.Start(context.Background()))
}
