// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/tireder/betting-tips/pkg/logging"
	"github.com/tireder/betting-tips/pkg/secrets"
	"github.com/tireder/betting-tips/services/panel/analyst"
	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/config"
	"github.com/tireder/betting-tips/services/panel/handlers"
	"github.com/tireder/betting-tips/services/panel/history"
	"github.com/tireder/betting-tips/services/panel/oddsfeed"
	"github.com/tireder/betting-tips/services/panel/predictions"
	"github.com/tireder/betting-tips/services/panel/report"
	"github.com/tireder/betting-tips/services/panel/routes"
	"github.com/tireder/betting-tips/services/panel/telemetry"
)

const shutdownGrace = 10 * time.Second

// runServe is the container entrypoint: resolve settings, write the
// runtime config, wire every integration and serve until signalled.
func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.Config{
		Level:   slog.LevelInfo,
		LogDir:  os.Getenv("PANEL_LOG_DIR"),
		Service: "panel",
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	settings := config.Resolve()
	if err := settings.WriteFile(config.DefaultConfigPath); err != nil {
		// The file is informational for sidecars; a read-only volume is
		// not worth failing the boot over.
		slog.Warn("could not write runtime config", "path", config.DefaultConfigPath, "error", err)
	}

	store := secrets.NewStore()
	if err := store.Resolve("FOOTBALL_API_KEY", secrets.FootballKey); err != nil {
		slog.Error("football API key is required", "error", err)
		os.Exit(1)
	}
	if err := store.Resolve("OPENAI_API_KEY", secrets.OpenAIKey); err != nil {
		slog.Warn("OpenAI key not configured; analyst endpoints disabled", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.DefaultConfig())
	if err != nil {
		slog.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	footballKey, err := store.Open(secrets.FootballKey)
	if err != nil {
		slog.Error("opening football API key failed", "error", err)
		os.Exit(1)
	}
	api := apifootball.NewClient(footballKey)

	historyStore, err := history.Open(settings.CacheDir, slog.Default())
	if err != nil {
		slog.Error("opening team history cache failed", "dir", settings.CacheDir, "error", err)
		os.Exit(1)
	}
	defer historyStore.Close()

	state := handlers.NewState(api, historyStore)

	meter := otel.Meter("betting-panel")
	metrics, err := telemetry.NewMetrics(meter)
	if err != nil {
		slog.Error("metrics init failed", "error", err)
		os.Exit(1)
	}
	state.Metrics = metrics
	api.Metrics = metrics
	state.Fetcher.Metrics = metrics
	if _, err := metrics.RegisterRateLimitGauge(meter, api.RateLimitRemaining); err != nil {
		slog.Warn("rate limit gauge registration failed", "error", err)
	}

	if store.Has(secrets.OpenAIKey) {
		llm, err := analyst.NewOpenAIClient(store)
		if err != nil {
			slog.Error("OpenAI client init failed", "error", err)
			os.Exit(1)
		}
		state.Analyst = analyst.NewAnalyst(llm)
	}

	recorder, err := oddsfeed.NewRecorder()
	if err != nil {
		slog.Error("odds recorder init failed", "error", err)
		os.Exit(1)
	}
	if recorder != nil {
		defer recorder.Close()
		state.Recorder = recorder
	}

	archiver, err := report.NewArchiver(ctx)
	if err != nil {
		slog.Error("report archiver init failed", "error", err)
		os.Exit(1)
	}
	if archiver != nil {
		defer archiver.Close()
		state.Archiver = archiver
	}

	if settings.PredictionsPath != "" {
		if rows, err := predictions.Load(settings.PredictionsPath); err != nil {
			slog.Warn("predictions preload failed", "path", settings.PredictionsPath, "error", err)
		} else {
			state.SetRows(rows)
			slog.Info("predictions preloaded", "path", settings.PredictionsPath, "rows", len(rows))
		}

		watcher, err := predictions.NewWatcher(settings.PredictionsPath, state.SetRows)
		if err != nil {
			slog.Warn("predictions watcher unavailable", "error", err)
		} else {
			watcher.Start(ctx)
			defer watcher.Stop()
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	routes.SetupRoutes(router, state, &settings)

	server := &http.Server{
		Addr:              settings.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("panel listening",
			"addr", settings.ListenAddr(),
			"cors", settings.Server.EnableCORS,
			"analyst", state.Analyst != nil,
			"odds_recorder", state.Recorder != nil)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
		}
	}
	return nil
}
