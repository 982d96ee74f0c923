// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the panel's HTTP endpoints. Each handler
// is a constructor taking its dependencies and returning a
// gin.HandlerFunc, mirroring how the rest of the service wires things.
package handlers

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tireder/betting-tips/services/panel/analyst"
	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/history"
	"github.com/tireder/betting-tips/services/panel/merge"
	"github.com/tireder/betting-tips/services/panel/oddsfeed"
	"github.com/tireder/betting-tips/services/panel/report"
	"github.com/tireder/betting-tips/services/panel/telemetry"
	"github.com/tireder/betting-tips/services/panel/value"
)

// State carries the server's dependencies and the current merged
// dataset. Prediction rows arrive by upload or hot reload; analyses
// are recomputed by the analyze endpoint.
//
// # Thread Safety
//
// Safe for concurrent use.
type State struct {
	API      *apifootball.Client
	Store    *history.Store
	Fetcher  *history.Fetcher
	Analyzer *value.Analyzer

	// Optional integrations; nil disables the endpoint or side effect.
	Analyst  *analyst.Analyst
	Recorder *oddsfeed.Recorder
	Archiver *report.Archiver
	Metrics  *telemetry.Metrics

	mu         sync.RWMutex
	rows       []merge.PredictionRow
	records    []merge.Record
	analyses   []value.Analysis
	unmatched  []merge.Unmatched
	analyzedAt time.Time
}

// NewState builds server state over the required dependencies.
func NewState(api *apifootball.Client, store *history.Store) *State {
	analyzer := &value.Analyzer{}
	if store != nil {
		analyzer.History = store
	}
	return &State{
		API:      api,
		Store:    store,
		Fetcher:  history.NewFetcher(api, store),
		Analyzer: analyzer,
	}
}

// countError bumps the error counter for a failing component. A nil
// Metrics disables the count.
func (s *State) countError(ctx context.Context, component string) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.ErrorsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("component", component)))
}

// SetRows replaces the loaded prediction rows. Called on upload and on
// hot reload.
func (s *State) SetRows(rows []merge.PredictionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}

// Rows returns the current prediction rows.
func (s *State) Rows() []merge.PredictionRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// SetResults replaces the merged records and analyses.
func (s *State) SetResults(records []merge.Record, analyses []value.Analysis, unmatched []merge.Unmatched) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.analyses = analyses
	s.unmatched = unmatched
	s.analyzedAt = time.Now()
}

// Results returns the current merged records and analyses, with the
// time of the last analyze run (zero when never run).
func (s *State) Results() ([]merge.Record, []value.Analysis, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.analyses, s.analyzedAt
}

// Unmatched returns the prediction rows the last merge could not pair.
func (s *State) Unmatched() []merge.Unmatched {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unmatched
}
