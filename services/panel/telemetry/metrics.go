// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains pre-defined metrics for the betting panel service.
// All metrics use the "panel_" prefix.
//
// # Thread Safety
//
// Safe for concurrent use after creation.
type Metrics struct {
	// --- HTTP Metrics ---

	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal metric.Int64Counter

	// HTTPRequestDuration records HTTP request duration in seconds.
	HTTPRequestDuration metric.Float64Histogram

	// HTTPActiveRequests tracks currently active HTTP requests.
	HTTPActiveRequests metric.Int64UpDownCounter

	// --- API-Football Metrics ---

	// APIRequestsTotal counts upstream API requests by endpoint and status.
	APIRequestsTotal metric.Int64Counter

	// APIRequestDuration records upstream API call duration in seconds.
	APIRequestDuration metric.Float64Histogram

	// APIRateLimitRemaining reports the last observed daily quota remaining.
	APIRateLimitRemaining metric.Int64ObservableGauge

	// --- Merge Metrics ---

	// MergesTotal counts merge runs.
	MergesTotal metric.Int64Counter

	// MergeMatchedRows counts prediction rows paired with a fixture.
	MergeMatchedRows metric.Int64Counter

	// MergeUnmatchedRows counts prediction rows left without a fixture.
	MergeUnmatchedRows metric.Int64Counter

	// --- Analysis Metrics ---

	// AnalysesTotal counts match analyses produced.
	AnalysesTotal metric.Int64Counter

	// ValueBetsFound counts recommendations flagged as value bets.
	ValueBetsFound metric.Int64Counter

	// --- History Cache Metrics ---

	// CacheHitsTotal counts fresh team-history cache reads.
	CacheHitsTotal metric.Int64Counter

	// CacheMissesTotal counts stale or missing cache reads.
	CacheMissesTotal metric.Int64Counter

	// --- Live Metrics ---

	// LiveClientsActive tracks connected live-score websocket clients.
	LiveClientsActive metric.Int64UpDownCounter

	// --- Report Metrics ---

	// ReportsGeneratedTotal counts generated reports by format.
	ReportsGeneratedTotal metric.Int64Counter

	// --- Error Metrics ---

	// ErrorsTotal counts errors by component.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics registers all panel metrics with the provided meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	// --- HTTP Metrics ---
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"panel_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"panel_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration: %w", err)
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"panel_http_active_requests",
		metric.WithDescription("Currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_active_requests: %w", err)
	}

	// --- API-Football Metrics ---
	m.APIRequestsTotal, err = meter.Int64Counter(
		"panel_api_requests_total",
		metric.WithDescription("Total API-Football requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create api_requests_total: %w", err)
	}

	m.APIRequestDuration, err = meter.Float64Histogram(
		"panel_api_request_duration_seconds",
		metric.WithDescription("API-Football call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, fmt.Errorf("create api_request_duration: %w", err)
	}

	// --- Merge Metrics ---
	m.MergesTotal, err = meter.Int64Counter(
		"panel_merges_total",
		metric.WithDescription("Total merge runs"),
		metric.WithUnit("{merge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create merges_total: %w", err)
	}

	m.MergeMatchedRows, err = meter.Int64Counter(
		"panel_merge_matched_rows_total",
		metric.WithDescription("Prediction rows paired with a fixture"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create merge_matched_rows: %w", err)
	}

	m.MergeUnmatchedRows, err = meter.Int64Counter(
		"panel_merge_unmatched_rows_total",
		metric.WithDescription("Prediction rows without a fixture"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create merge_unmatched_rows: %w", err)
	}

	// --- Analysis Metrics ---
	m.AnalysesTotal, err = meter.Int64Counter(
		"panel_analyses_total",
		metric.WithDescription("Total match analyses produced"),
		metric.WithUnit("{analysis}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create analyses_total: %w", err)
	}

	m.ValueBetsFound, err = meter.Int64Counter(
		"panel_value_bets_total",
		metric.WithDescription("Recommendations flagged as value bets"),
		metric.WithUnit("{bet}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create value_bets_total: %w", err)
	}

	// --- History Cache Metrics ---
	m.CacheHitsTotal, err = meter.Int64Counter(
		"panel_cache_hits_total",
		metric.WithDescription("Fresh team-history cache reads"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache_hits_total: %w", err)
	}

	m.CacheMissesTotal, err = meter.Int64Counter(
		"panel_cache_misses_total",
		metric.WithDescription("Stale or missing cache reads"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache_misses_total: %w", err)
	}

	// --- Live Metrics ---
	m.LiveClientsActive, err = meter.Int64UpDownCounter(
		"panel_live_clients_active",
		metric.WithDescription("Connected live-score websocket clients"),
		metric.WithUnit("{client}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create live_clients_active: %w", err)
	}

	// --- Report Metrics ---
	m.ReportsGeneratedTotal, err = meter.Int64Counter(
		"panel_reports_generated_total",
		metric.WithDescription("Generated reports by format"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create reports_generated_total: %w", err)
	}

	// --- Error Metrics ---
	m.ErrorsTotal, err = meter.Int64Counter(
		"panel_errors_total",
		metric.WithDescription("Total errors by component"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}

// RegisterRateLimitGauge registers a callback reporting the API's
// remaining daily quota on each scrape.
func (m *Metrics) RegisterRateLimitGauge(meter metric.Meter, remainingFunc func() int64) (metric.Registration, error) {
	var err error
	m.APIRateLimitRemaining, err = meter.Int64ObservableGauge(
		"panel_api_rate_limit_remaining",
		metric.WithDescription("Last observed API-Football daily quota remaining"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create api_rate_limit_remaining: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(m.APIRateLimitRemaining, remainingFunc())
		return nil
	}, m.APIRateLimitRemaining)
}
