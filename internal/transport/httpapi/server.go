// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/crashwatch/crashwatch/internal/admission"
)

type handlers struct {
	service *Service
}

// RouterConfig configures rate limiting and admission control for the
// ingest endpoints.
type RouterConfig struct {
	RateLimitPerMinute int                // requests per minute per client IP, 0 disables limiting
	AdmissionMonitor   *admission.Monitor // nil disables the CPU-pressure admission gate
}

// NewRouter builds the chi router for crashwatchd's HTTP ingest surface.
func NewRouter(service *Service, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(withRequestID)
	r.Use(accessLog)

	h := &handlers{service: service}

	r.Get("/healthz", h.getHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			v1.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
		}
		v1.Use(admissionGate(cfg.AdmissionMonitor))
		v1.Post("/samples/accel", h.postAccelSample)
		v1.Post("/samples/gps", h.postGPSSample)
		v1.Post("/process", h.postProcess)
		v1.Get("/crash", h.getCrash)
		v1.Post("/mode", h.postMode)
	})

	return r
}

// WithTracing wraps handler in OpenTelemetry HTTP instrumentation. A noop
// tracer provider (the telemetry package's default when disabled) yields
// negligible overhead, so this is always applied.
func WithTracing(serviceName string, handler http.Handler) http.Handler {
	return otelhttp.NewHandler(handler, serviceName)
}
