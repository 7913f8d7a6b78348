// Command rollupd serves time-windowed marketing reports over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/growthops/rollup/internal"
	"github.com/growthops/rollup/internal/api"
	"github.com/growthops/rollup/internal/config"
	"github.com/growthops/rollup/internal/infra"
	"github.com/growthops/rollup/internal/sources"
	specs "github.com/growthops/rollup/specs"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	bus := infra.NewBus()
	fetchMetrics := internal.NewCoordinatorMetrics(registry)

	reportSources, err := buildSources(cfg, logger, bus, fetchMetrics)
	if err != nil {
		logger.Fatal("configure sources", zap.Error(err))
	}
	for name := range reportSources {
		logger.Info("source configured", zap.String("source", name))
	}

	server := api.NewServer(api.ServerConfig{
		Addr:         cfg.Addr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Sources:      reportSources,
		Logger:       logger,
		Bus:          bus,
		Registry:     registry,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown incomplete", zap.Error(err))
		}
	}
}

// buildSources wires one HTTP client, field map, and fetch coordinator per
// configured provider.
func buildSources(cfg *config.Config, logger *zap.Logger, bus *infra.Bus, metrics *internal.CoordinatorMetrics) (map[string]api.ReportSource, error) {
	result := make(map[string]api.ReportSource, len(cfg.Sources))

	for _, sourceCfg := range cfg.Sources {
		normalize, limits, err := providerPreset(sourceCfg.Name)
		if err != nil {
			return nil, err
		}
		if sourceCfg.MaxSpanDays > 0 {
			limits.MaxSpanDays = sourceCfg.MaxSpanDays
		}
		if sourceCfg.MaxPages > 0 {
			limits.MaxPagesPerWindow = sourceCfg.MaxPages
		}

		client, err := sources.NewClient(sources.ClientConfig{
			BaseURL: sourceCfg.BaseURL,
			Token:   sourceCfg.Token,
			RowsKey: sourceCfg.RowsKey,
			Logger:  logger.With(zap.String("source", sourceCfg.Name)),
		})
		if err != nil {
			return nil, err
		}

		result[sourceCfg.Name] = api.ReportSource{
			FetchPage: client.FetchPage,
			Normalize: normalize,
			Limits:    limits,
			Coordinator: internal.NewCoordinator(internal.CoordinatorConfig{
				MaxPagesPerWindow: limits.MaxPagesPerWindow,
				MaxAttempts:       cfg.Fetch.MaxAttempts,
				PageTimeout:       cfg.Fetch.PageTimeout,
				BackoffBase:       cfg.Fetch.BackoffBase,
				RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
				Logger:            logger.With(zap.String("source", sourceCfg.Name)),
				Bus:               bus,
				Metrics:           metrics,
			}),
		}
	}

	return result, nil
}

func providerPreset(name string) (specs.NormalizeConfigSpec, sources.Limits, error) {
	switch name {
	case "rdstation-email":
		return sources.RDStationEmailFieldMap(), sources.RDStationLimits, nil
	case "ga4":
		return sources.GA4FieldMap(), sources.GA4Limits, nil
	case "meta-ads":
		return sources.MetaAdsFieldMap(), sources.MetaLimits, nil
	case "leads":
		return sources.LeadFunnelFieldMap(), sources.RDStationLimits, nil
	default:
		return specs.NormalizeConfigSpec{}, sources.Limits{}, errors.New("no preset for source " + name)
	}
}
