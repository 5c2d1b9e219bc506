package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cyprienbrisset/video-translate-to-text/internal/config"
	"github.com/cyprienbrisset/video-translate-to-text/internal/health"
	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// setupTelemetry installs the OTel providers for one run of command and, when
// configured, serves /metrics, /healthz and /readyz until the returned
// function shuts everything down. checks feed /readyz.
func setupTelemetry(ctx context.Context, command string, cfg config.TelemetryConfig, checks ...health.Checker) (func(), error) {
	log := observe.Logger(ctx)
	tel, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "dubber",
		ServiceVersion: version,
		RunID:          observe.RunID(ctx),
		Command:        command,
		Prometheus:     cfg.MetricsAddr != "",
	})
	if err != nil {
		return nil, err
	}

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(tel.Gatherer, promhttp.HandlerOpts{}))
		health.New(observe.RunID(ctx), checks...).Register(mux)
		srv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("metrics server stopped", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
		log.Info("serving metrics", "addr", cfg.MetricsAddr, "path", "/metrics")
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if srv != nil {
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn("metrics server shutdown error", "err", err)
			}
		}
		if err := tel.Shutdown(ctx); err != nil {
			log.Warn("telemetry shutdown error", "err", err)
		}
	}, nil
}
