// Package api exposes the aggregation engine over HTTP: push-style reports
// over caller-supplied rows, and pull-style reports that fetch from a
// configured provider before aggregating.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/growthops/rollup/internal"
	"github.com/growthops/rollup/internal/infra"
	"github.com/growthops/rollup/internal/sources"
	specs "github.com/growthops/rollup/specs"
)

// ReportSource is one pull-style provider the server can fetch and aggregate
// from.
type ReportSource struct {
	// FetchPage retrieves one provider page; usually a *sources.Client method.
	FetchPage specs.FetchPage

	// Normalize maps the provider's rows onto internal fields.
	Normalize specs.NormalizeConfigSpec

	// Limits bound windowing and pagination against the provider.
	Limits sources.Limits

	// Coordinator drives the windowed fetch for this source. Each source gets
	// its own so page caps and rate limits stay per provider. Defaulted by
	// NewServer when nil.
	Coordinator *internal.Coordinator
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Sources available under /v1/sources/{source}/reports, keyed by name.
	Sources map[string]ReportSource

	Logger   *zap.Logger
	Bus      *infra.Bus
	Registry *prometheus.Registry
}

type Server struct {
	router     *mux.Router
	logger     *zap.Logger
	bus        *infra.Bus
	metrics    *httpMetrics
	sources    map[string]ReportSource
	httpServer *http.Server
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Bus == nil {
		cfg.Bus = infra.NewBus()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	for name, source := range cfg.Sources {
		if source.Coordinator == nil {
			source.Coordinator = internal.NewCoordinator(internal.CoordinatorConfig{
				MaxPagesPerWindow: source.Limits.MaxPagesPerWindow,
				Logger:            cfg.Logger.With(zap.String("source", name)),
				Bus:               cfg.Bus,
			})
			cfg.Sources[name] = source
		}
	}

	s := &Server{
		router:  mux.NewRouter(),
		logger:  cfg.Logger,
		bus:     cfg.Bus,
		metrics: newHTTPMetrics(cfg.Registry),
		sources: cfg.Sources,
	}

	s.subscribePipelineEvents()

	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.instrumentMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/normalize", s.handleNormalize).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/reports", s.handleReport).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/sources/{source}/reports", s.handleSourceReport).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("report server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// subscribePipelineEvents turns engine bus events into log lines, keeping the
// pure core free of any logger dependency.
func (s *Server) subscribePipelineEvents() {
	s.bus.Subscribe(infra.RowsExcluded, func(e infra.Event) {
		if evt, ok := e.(internal.RowsExcludedEvent); ok && evt.Excluded > 0 {
			s.logger.Warn("rows excluded during normalization",
				zap.String("source", evt.Source),
				zap.Int("excluded", evt.Excluded))
		}
	})
	s.bus.Subscribe(infra.ReportAggregated, func(e infra.Event) {
		if evt, ok := e.(internal.ReportAggregatedEvent); ok {
			s.logger.Info("report aggregated",
				zap.String("granularity", evt.Granularity),
				zap.Int("buckets", evt.Buckets),
				zap.Int("records", evt.Records))
		}
	})
	s.bus.Subscribe(infra.PageCapReached, func(e infra.Event) {
		if evt, ok := e.(internal.PageCapReachedEvent); ok {
			s.logger.Warn("source page cap reached",
				zap.Time("windowStart", evt.Window.Start),
				zap.Int("maxPages", evt.MaxPages))
		}
	})
}
