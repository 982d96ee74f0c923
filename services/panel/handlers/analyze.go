// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/merge"
	"github.com/tireder/betting-tips/services/panel/value"
)

// maxFixtureFetchers bounds concurrent full-match downloads so one
// analysis run cannot burn through the API-Football daily quota.
const maxFixtureFetchers = 4

// AnalyzeRequest selects the fixture date to analyze. An empty date
// means today.
type AnalyzeRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// Analyze runs the full pipeline for one date: fetch fixtures, merge
// them with the loaded prediction rows, score every pairing and store
// the results for the report and tips endpoints.
// POST /v1/analyze
func Analyze(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		rows := state.Rows()
		if len(rows) == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "No predictions loaded; upload a CSV first"})
			return
		}

		date := time.Now()
		if req.Date != "" {
			date, _ = time.Parse("2006-01-02", req.Date)
		}

		ctx := c.Request.Context()
		fixtures, err := state.API.FetchWinnerFixtures(ctx, date)
		if err != nil {
			slog.Error("analysis aborted: fixture fetch failed",
				"date", date.Format("2006-01-02"), "error", err)
			state.countError(ctx, "apifootball")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Fixture fetch failed", "details": err.Error()})
			return
		}

		matches := fetchFullMatches(ctx, state, fixtures)

		merger := merge.NewMerger()
		records := merger.Merge(rows, matches)
		unmatched := append([]merge.Unmatched(nil), merger.Unmatched...)

		warmHistory(ctx, state, records)

		analyses := make([]value.Analysis, 0, len(records))
		valueBets := 0
		for _, rec := range records {
			a := state.Analyzer.AnalyzeMatch(rec)
			for _, r := range a.Recommendations {
				if r.IsValueBet {
					valueBets++
				}
			}
			analyses = append(analyses, a)
		}

		state.SetResults(records, analyses, unmatched)

		if state.Metrics != nil {
			state.Metrics.MergesTotal.Add(ctx, 1)
			state.Metrics.MergeMatchedRows.Add(ctx, int64(len(records)-len(unmatched)))
			state.Metrics.MergeUnmatchedRows.Add(ctx, int64(len(unmatched)))
			state.Metrics.AnalysesTotal.Add(ctx, int64(len(analyses)),
				metric.WithAttributes(attribute.String("date", date.Format("2006-01-02"))))
			state.Metrics.ValueBetsFound.Add(ctx, int64(valueBets))
		}

		if state.Recorder != nil {
			if err := state.Recorder.RecordOdds(ctx, records, time.Now()); err != nil {
				slog.Warn("odds recording failed", "error", err)
			}
		}

		slog.Info("analysis complete",
			"date", date.Format("2006-01-02"),
			"fixtures", len(fixtures),
			"records", len(records),
			"unmatched", len(unmatched),
			"value_bets", valueBets)

		c.JSON(http.StatusOK, gin.H{
			"date":       date.Format("2006-01-02"),
			"fixtures":   len(fixtures),
			"matched":    len(records) - len(unmatched),
			"unmatched":  unmatched,
			"value_bets": valueBets,
			"analyses":   analyses,
		})
	}
}

// fetchFullMatches downloads the aggregated view for every fixture
// with bounded concurrency. Individual failures are logged and
// skipped; a partial merge beats none.
func fetchFullMatches(ctx context.Context, state *State, fixtures []apifootball.Fixture) []*apifootball.MatchData {
	var mu sync.Mutex
	matches := make([]*apifootball.MatchData, 0, len(fixtures))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFixtureFetchers)
	for _, fixture := range fixtures {
		g.Go(func() error {
			md := state.API.FullMatchData(ctx, fixture)
			if md == nil {
				return nil
			}
			mu.Lock()
			matches = append(matches, md)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return matches
}

// warmHistory primes the team history cache for every matched record
// so the analyzer's historical adjustments see fresh data.
func warmHistory(ctx context.Context, state *State, records []merge.Record) {
	if state.Fetcher == nil {
		return
	}
	for _, rec := range records {
		if !rec.HasAPIData || rec.Match == nil {
			continue
		}
		teams := rec.Match.Fixture.Teams
		leagueID := rec.Match.Fixture.League.ID
		state.Fetcher.TeamRatings(ctx, teams.Home.ID, teams.Home.Name, leagueID)
		state.Fetcher.TeamRatings(ctx, teams.Away.ID, teams.Away.Name, leagueID)
		if _, err := state.Fetcher.EnsureH2H(ctx, teams.Home.ID, teams.Away.ID, teams.Home.Name, teams.Away.Name); err != nil {
			slog.Debug("h2h warm failed", "home", teams.Home.Name, "away", teams.Away.Name, "error", err)
		}
	}
}
