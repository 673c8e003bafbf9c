// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crashwatch/crashwatch/internal/admission"
	"github.com/crashwatch/crashwatch/internal/config"
	"github.com/crashwatch/crashwatch/internal/detector"
	"github.com/crashwatch/crashwatch/internal/fleet"
	"github.com/crashwatch/crashwatch/internal/journal"
	"github.com/crashwatch/crashwatch/internal/telemetry"
	"github.com/crashwatch/crashwatch/internal/transport/httpapi"
	"github.com/crashwatch/crashwatch/internal/xlog"
)

var (
	version = "v0.1.0"
	commit  = "none"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crashwatchd %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	xlog.Configure(xlog.Config{Level: "info", Service: "crashwatchd", Version: version})
	logger := xlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader()
	appCfg, err := loader.Load()
	if err != nil {
		logger.Fatal().Err(err).Str("event", "config.load_failed").Msg("failed to load configuration")
	}

	xlog.Configure(xlog.Config{Level: appCfg.LogLevel, Service: "crashwatchd", Version: version})
	logger = xlog.WithComponent("daemon")

	thresholdLoader := &config.ThresholdLoader{Path: appCfg.ThresholdPath}
	initialThresholds, err := thresholdLoader.Load()
	if err != nil {
		logger.Fatal().Err(err).Str("event", "thresholds.load_failed").Msg("failed to load detector thresholds")
	}

	holder := config.NewThresholdHolder(initialThresholds, thresholdLoader)
	if err := holder.StartWatcher(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to start thresholds file watcher, continuing without hot reload")
	}
	defer holder.Stop()

	det := detector.New(holder.Get().ToDetectorConfig(), detector.WithLogFunc(xlog.DetectorSink(xlog.WithComponent("detector"))))

	var j *journal.Journal
	if appCfg.JournalPath != "" {
		j, err = journal.Open(appCfg.JournalPath, journal.DefaultConfig())
		if err != nil {
			logger.Fatal().Err(err).Str("event", "journal.open_failed").Msg("failed to open crash journal")
		}
		defer j.Close()
	}

	var sink httpapi.CrashSink
	if appCfg.RedisAddr != "" {
		pub, err := fleet.NewPublisher(fleet.Config{Addr: appCfg.RedisAddr, Stream: appCfg.RedisStream})
		if err != nil {
			logger.Error().Err(err).Str("event", "fleet.connect_failed").Msg("failed to connect to fleet redis, crash forwarding disabled")
		} else {
			defer pub.Close()
			sink = pub
		}
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		ServiceName:    "crashwatchd",
		ServiceVersion: version,
		Endpoint:       appCfg.OTelEndpoint,
		SamplingRate:   1.0,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("event", "telemetry.init_failed").Msg("failed to initialize telemetry provider")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	service := httpapi.NewService(det, j, sink)

	reloads := make(chan config.Thresholds, 1)
	holder.RegisterListener(reloads)
	go func() {
		for t := range reloads {
			logger.Info().Str("event", "thresholds.applied").Msg("applying reloaded thresholds to detector")
			service.ApplyConfig(t.ToDetectorConfig())
		}
	}()

	mon := admission.NewMonitor(1.5)
	mon.SetLogger(xlog.WithComponent("admission"))
	admission.StartSampler(ctx, mon, 2*time.Second, nil)

	router := httpapi.NewRouter(service, httpapi.RouterConfig{RateLimitPerMinute: 600, AdmissionMonitor: mon})
	handler := httpapi.WithTracing("crashwatchd", router)

	srv := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("event", "startup").Str("addr", appCfg.HTTPAddr).Str("version", version).Msg("starting crashwatchd")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Str("event", "server.failed").Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Str("event", "shutdown.start").Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Str("event", "shutdown.complete").Msg("crashwatchd exited")
}
