// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/telemetry"
)

// --- Mock Fixture API ---

type MockFixtureAPI struct {
	TeamFormFunc   func(ctx context.Context, teamID, n int) ([]apifootball.Fixture, error)
	HeadToHeadFunc func(ctx context.Context, team1, team2, n int) ([]apifootball.Fixture, error)

	teamFormCalls int
	h2hCalls      int
}

func (m *MockFixtureAPI) TeamForm(ctx context.Context, teamID, n int) ([]apifootball.Fixture, error) {
	m.teamFormCalls++
	return m.TeamFormFunc(ctx, teamID, n)
}

func (m *MockFixtureAPI) HeadToHead(ctx context.Context, team1, team2, n int) ([]apifootball.Fixture, error) {
	m.h2hCalls++
	return m.HeadToHeadFunc(ctx, team1, team2, n)
}

func finishedFixture(id, homeID, awayID, homeGoals, awayGoals int, date string) apifootball.Fixture {
	var fx apifootball.Fixture
	fx.Info.ID = id
	fx.Info.Date = date
	fx.Info.Status.Short = "FT"
	fx.Teams.Home = apifootball.Team{ID: homeID, Name: "Home Side"}
	fx.Teams.Away = apifootball.Team{ID: awayID, Name: "Away Side"}
	fx.Goals.Home = &homeGoals
	fx.Goals.Away = &awayGoals
	return fx
}

func TestFetcher_TeamRatingsCachesResult(t *testing.T) {
	s := testStore(t)
	mock := &MockFixtureAPI{
		TeamFormFunc: func(ctx context.Context, teamID, n int) ([]apifootball.Fixture, error) {
			return []apifootball.Fixture{
				finishedFixture(1, 33, 40, 2, 0, "2025-08-25T15:00:00+00:00"),
				finishedFixture(2, 33, 50, 1, 1, "2025-08-18T15:00:00+00:00"),
			}, nil
		},
	}
	f := NewFetcher(mock, s)

	ratings := f.TeamRatings(context.Background(), 33, "Home Side", 39)
	assert.Greater(t, ratings.Attack, 50.0)
	assert.Equal(t, 1, mock.teamFormCalls)

	// Second call inside the freshness window must not hit the API.
	again := f.TeamRatings(context.Background(), 33, "Home Side", 39)
	assert.Equal(t, ratings, again)
	assert.Equal(t, 1, mock.teamFormCalls)

	// Form and matches were persisted as a side effect.
	form, err := s.Form(33)
	require.NoError(t, err)
	assert.NotEmpty(t, form.FormString)

	matches, err := s.Matches(33)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFetcher_CountsCacheHitsAndMisses(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := telemetry.NewMetrics(provider.Meter("test_cache_metrics"))
	require.NoError(t, err)

	s := testStore(t)
	mock := &MockFixtureAPI{
		TeamFormFunc: func(ctx context.Context, teamID, n int) ([]apifootball.Fixture, error) {
			return []apifootball.Fixture{
				finishedFixture(1, 33, 40, 2, 0, "2025-08-25T15:00:00+00:00"),
			}, nil
		},
	}
	f := NewFetcher(mock, s)
	f.Metrics = metrics

	// Cold cache misses, then the refreshed record hits.
	f.TeamRatings(context.Background(), 33, "Home Side", 39)
	f.TeamRatings(context.Background(), 33, "Home Side", 39)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), totals["panel_cache_misses_total"])
	assert.Equal(t, int64(1), totals["panel_cache_hits_total"])
}

func TestFetcher_TeamRatingsAPIFailureFallsBack(t *testing.T) {
	s := testStore(t)
	mock := &MockFixtureAPI{
		TeamFormFunc: func(ctx context.Context, teamID, n int) ([]apifootball.Fixture, error) {
			return nil, errors.New("quota exhausted")
		},
	}
	f := NewFetcher(mock, s)

	ratings := f.TeamRatings(context.Background(), 33, "Home Side", 39)
	assert.Equal(t, defaultRatings(), ratings)
}

func TestFetcher_EnsureH2HFetchesOnce(t *testing.T) {
	s := testStore(t)
	mock := &MockFixtureAPI{
		HeadToHeadFunc: func(ctx context.Context, team1, team2, n int) ([]apifootball.Fixture, error) {
			return []apifootball.Fixture{
				finishedFixture(1, 33, 40, 3, 1, "2025-01-10T15:00:00+00:00"),
				finishedFixture(2, 40, 33, 2, 2, "2024-09-01T15:00:00+00:00"),
			}, nil
		},
	}
	f := NewFetcher(mock, s)

	rec, err := f.EnsureH2H(context.Background(), 33, 40, "Manchester United", "Liverpool")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.TotalMatches)
	assert.Equal(t, 1, rec.Team1Wins)
	assert.Equal(t, 1, rec.Draws)
	assert.Equal(t, 1, mock.h2hCalls)

	_, err = f.EnsureH2H(context.Background(), 33, 40, "Manchester United", "Liverpool")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.h2hCalls)
}

func TestFetcher_EnsureH2HErrorWithoutCache(t *testing.T) {
	s := testStore(t)
	mock := &MockFixtureAPI{
		HeadToHeadFunc: func(ctx context.Context, team1, team2, n int) ([]apifootball.Fixture, error) {
			return nil, errors.New("network down")
		},
	}
	f := NewFetcher(mock, s)

	_, err := f.EnsureH2H(context.Background(), 33, 40, "A", "B")
	require.Error(t, err)
}

func TestPredictionAdjustments_EmptyCache(t *testing.T) {
	s := testStore(t)
	adj := s.PredictionAdjustments("Manchester United", "Liverpool")
	assert.Zero(t, adj.HomeAdj)
	assert.Zero(t, adj.AwayAdj)
	assert.Zero(t, adj.ConfidenceBoost)
	assert.Empty(t, adj.Insights)
}

func TestPredictionAdjustments_FormAndVenue(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.SaveForm(FormRecord{
		TeamID: 33, TeamName: "Manchester United",
		FormString: "WWWDL", Trend: TrendUp, TrendStrength: 100,
	}))
	require.NoError(t, s.SaveTeam(TeamRecord{
		TeamID: 33, TeamName: "Manchester United",
		Ratings: Ratings{Home: 80, Away: 40},
	}))

	adj := s.PredictionAdjustments("Manchester United", "Liverpool")

	// +5% form trend plus +1.8% venue strength.
	assert.InDelta(t, 0.05+0.018, adj.HomeAdj, 1e-9)
	assert.Zero(t, adj.AwayAdj)
	// Two data points: home form and home team record.
	assert.InDelta(t, 0.04, adj.ConfidenceBoost, 1e-9)
	assert.Len(t, adj.Insights, 2)
}

func TestPredictionAdjustments_H2HDominance(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.SaveH2H(H2HRecord{
		Team1ID: 33, Team2ID: 40,
		Team1Name: "Manchester United", Team2Name: "Liverpool",
		TotalMatches: 10, Team1Wins: 7, Team2Wins: 2, Draws: 1,
	}))

	adj := s.PredictionAdjustments("Manchester United", "Liverpool")
	// (0.7 - 0.5) * 0.10 = +2%.
	assert.InDelta(t, 0.02, adj.HomeAdj, 1e-9)
	assert.InDelta(t, 0.02, adj.ConfidenceBoost, 1e-9)
}
