// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func initTestTelemetry(t *testing.T) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "prometheus"

	shutdown, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })
}

func TestInitNilContext(t *testing.T) {
	//nolint:staticcheck // the nil guard is the behavior under test
	_, err := Init(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInitUnknownExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "statsd"

	_, err := Init(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestMetricsHandlerAvailableAfterInit(t *testing.T) {
	initTestTelemetry(t)
	assert.NotNil(t, MetricsHandler())
}

func TestNewMetrics(t *testing.T) {
	initTestTelemetry(t)

	metrics, err := NewMetrics(otel.Meter("test_panel_metrics"))
	require.NoError(t, err)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPActiveRequests)
	assert.NotNil(t, metrics.APIRequestsTotal)
	assert.NotNil(t, metrics.APIRequestDuration)
	assert.NotNil(t, metrics.MergesTotal)
	assert.NotNil(t, metrics.MergeMatchedRows)
	assert.NotNil(t, metrics.MergeUnmatchedRows)
	assert.NotNil(t, metrics.AnalysesTotal)
	assert.NotNil(t, metrics.ValueBetsFound)
	assert.NotNil(t, metrics.CacheHitsTotal)
	assert.NotNil(t, metrics.CacheMissesTotal)
	assert.NotNil(t, metrics.LiveClientsActive)
	assert.NotNil(t, metrics.ReportsGeneratedTotal)
	assert.NotNil(t, metrics.ErrorsTotal)
}

func TestRegisterRateLimitGauge(t *testing.T) {
	initTestTelemetry(t)

	metrics, err := NewMetrics(otel.Meter("test_rate_gauge"))
	require.NoError(t, err)

	reg, err := metrics.RegisterRateLimitGauge(otel.Meter("test_rate_gauge"), func() int64 { return 42 })
	require.NoError(t, err)
	require.NoError(t, reg.Unregister())
}

func TestMetricsMiddleware(t *testing.T) {
	initTestTelemetry(t)

	metrics, err := NewMetrics(otel.Meter("test_middleware"))
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MetricsMiddleware(metrics))
	router.GET("/v1/tips", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/tips", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Unmatched routes get the fallback path label; must not panic.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
