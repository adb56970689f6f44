package service

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ethereum-optimism/optimism/op-service/httputil"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

// Config selects which servers the Service runs.
type Config struct {
	// HealthzAddr is the listen address of the healthz server. Empty disables it.
	HealthzAddr string
	Metrics     opmetrics.CLIConfig
}

// Service runs the auxiliary HTTP servers of a harness run.
type Service struct {
	log      log.Logger
	cfg      Config
	registry *prometheus.Registry

	Healthz *HealthzServer
	metrics *httputil.HTTPServer
}

func New(logger log.Logger, cfg Config, registry *prometheus.Registry) *Service {
	return &Service{
		log:      logger,
		cfg:      cfg,
		registry: registry,
		Healthz:  NewHealthzServer(logger),
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.log.Info("service starting")

	if s.cfg.HealthzAddr != "" {
		if err := s.Healthz.Start(s.cfg.HealthzAddr); err != nil {
			return fmt.Errorf("failed to start healthz server: %w", err)
		}
		s.log.Info("Started healthz server", "addr", s.Healthz.Addr())
	}

	if s.cfg.Metrics.Enabled {
		s.log.Info("Starting metrics server", "addr", s.cfg.Metrics.ListenAddr, "port", s.cfg.Metrics.ListenPort)
		metricsServer, err := opmetrics.StartServer(s.registry, s.cfg.Metrics.ListenAddr, s.cfg.Metrics.ListenPort)
		if err != nil {
			return errors.Join(fmt.Errorf("failed to start metrics server: %w", err), s.Shutdown(ctx))
		}
		s.log.Info("Started metrics server", "endpoint", metricsServer.Addr())
		s.metrics = metricsServer
	}

	s.Healthz.SetReady(true)
	s.log.Info("service started")
	return nil
}

// MetricsAddr returns the bound metrics address, or nil when metrics are off.
func (s *Service) MetricsAddr() net.Addr {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.Addr()
}

func (s *Service) Shutdown(ctx context.Context) error {
	s.log.Info("service shutting down")
	s.Healthz.SetReady(false)

	var result error
	if err := s.Healthz.Shutdown(ctx); err != nil {
		result = errors.Join(result, fmt.Errorf("failed to stop healthz server: %w", err))
	}
	s.log.Info("healthz stopped")

	if s.metrics != nil {
		if err := s.metrics.Stop(ctx); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop metrics server: %w", err))
		}
		s.metrics = nil
		s.log.Info("metrics stopped")
	}

	s.log.Info("service stopped")
	return result
}
