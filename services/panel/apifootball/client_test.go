// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package apifootball

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tireder/betting-tips/services/panel/telemetry"
)

// --- Mock HTTP Client ---

type MockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

func newTestClient() (*Client, *MockHTTPClient) {
	mock := &MockHTTPClient{}
	c := NewClient("test-key")
	c.HTTPClient = mock
	return c, mock
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// --- Request construction ---

func TestDoRequest_SetsAuthHeaders(t *testing.T) {
	c, mock := newTestClient()

	var got *http.Request
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		got = req
		return jsonResponse(200, `{"errors":[],"results":0,"response":[]}`), nil
	}

	_, err := c.Fixtures(context.Background(), FixtureQuery{Date: "2025-08-29"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "test-key", got.Header.Get("x-rapidapi-key"))
	assert.Equal(t, apiHost, got.Header.Get("x-rapidapi-host"))
	assert.Equal(t, "date=2025-08-29", got.URL.RawQuery)
}

func TestFixtureQuery_OmitsZeroFields(t *testing.T) {
	v := FixtureQuery{League: 39, Season: 2025}.values()
	assert.Equal(t, "39", v.Get("league"))
	assert.Equal(t, "2025", v.Get("season"))
	assert.Empty(t, v.Get("date"))
	assert.Empty(t, v.Get("team"))
	assert.Len(t, v, 2)
}

func TestHeadToHead_BuildsPairParameter(t *testing.T) {
	c, mock := newTestClient()

	var query string
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		query = req.URL.RawQuery
		return jsonResponse(200, `{"errors":[],"results":0,"response":[]}`), nil
	}

	_, err := c.HeadToHead(context.Background(), 33, 40, 10)
	require.NoError(t, err)
	assert.Contains(t, query, "h2h=33-40")
	assert.Contains(t, query, "last=10")
}

// --- Response handling ---

func TestFixtures_DecodesEnvelope(t *testing.T) {
	c, mock := newTestClient()

	body := `{
		"errors": [],
		"results": 1,
		"response": [{
			"fixture": {"id": 1001, "date": "2025-08-29T19:00:00+00:00",
				"status": {"long": "Not Started", "short": "NS"}},
			"league": {"id": 39, "name": "Premier League", "season": 2025},
			"teams": {
				"home": {"id": 33, "name": "Manchester United"},
				"away": {"id": 40, "name": "Liverpool"}
			},
			"goals": {"home": null, "away": null}
		}]
	}`
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, body), nil
	}

	fixtures, err := c.Fixtures(context.Background(), FixtureQuery{ID: 1001})
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	f := fixtures[0]
	assert.Equal(t, 1001, f.Info.ID)
	assert.Equal(t, "NS", f.Info.Status.Short)
	assert.Equal(t, "Manchester United", f.Teams.Home.Name)
	assert.Equal(t, 39, f.League.ID)
	assert.Nil(t, f.Goals.Home)
}

func TestPredictions_EmptyResponseReturnsNil(t *testing.T) {
	c, mock := newTestClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"errors":[],"results":0,"response":[]}`), nil
	}

	p, err := c.Predictions(context.Background(), 1001)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDoRequest_TracksRateLimitHeader(t *testing.T) {
	c, mock := newTestClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		resp := jsonResponse(200, `{"errors":[],"results":0,"response":[]}`)
		resp.Header.Set("x-ratelimit-remaining", "42")
		return resp, nil
	}

	_, err := c.Fixtures(context.Background(), FixtureQuery{Date: "2025-08-29"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.RateLimitRemaining())
}

func TestDoRequest_TransportError(t *testing.T) {
	c, mock := newTestClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network timeout")
	}

	_, err := c.Fixtures(context.Background(), FixtureQuery{Date: "2025-08-29"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network timeout")
}

func TestDoRequest_ServerError(t *testing.T) {
	c, mock := newTestClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return jsonResponse(500, `{}`), nil
	}

	_, err := c.Standings(context.Background(), 39, 2025)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

func TestDoRequest_RateLimitedRetryCancelled(t *testing.T) {
	// The retry sleeps for the full backoff; a cancelled context must cut
	// it short instead of blocking the caller for a minute.
	c, mock := newTestClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{}`), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.Fixtures(ctx, FixtureQuery{Date: "2025-08-29"})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("rate-limited request did not honor context cancellation")
	}
}

// --- Request metrics ---

func testMetrics(t *testing.T) (*telemetry.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewMetrics(provider.Meter("test_api_metrics"))
	require.NoError(t, err)
	return m, reader
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestDoRequest_RecordsMetrics(t *testing.T) {
	metrics, reader := testMetrics(t)
	c, mock := newTestClient()
	c.Metrics = metrics
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"errors":[],"results":0,"response":[]}`), nil
	}

	_, err := c.Fixtures(context.Background(), FixtureQuery{Date: "2025-08-29"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), counterTotal(t, reader, "panel_api_requests_total"))
}

func TestDoRequest_RecordsMetricsOnTransportError(t *testing.T) {
	metrics, reader := testMetrics(t)
	c, mock := newTestClient()
	c.Metrics = metrics
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network timeout")
	}

	_, err := c.Fixtures(context.Background(), FixtureQuery{Date: "2025-08-29"})
	require.Error(t, err)

	assert.Equal(t, int64(1), counterTotal(t, reader, "panel_api_requests_total"))
}

// --- Injuries selector guard ---

func TestInjuries_RequiresSelector(t *testing.T) {
	c, _ := newTestClient()
	_, err := c.Injuries(context.Background(), 0, 0, 0, 0)
	require.Error(t, err)
}

// --- Aggregation ---

func TestAnalyzeH2H(t *testing.T) {
	g := func(n int) *int { return &n }
	matches := []Fixture{
		{
			Info:  FixtureInfo{Date: "2025-01-10T15:00:00+00:00"},
			Teams: Teams{Home: Team{ID: 33, Name: "United"}, Away: Team{ID: 40, Name: "Liverpool"}},
			Goals: Goals{Home: g(3), Away: g(1)},
		},
		{
			Info:  FixtureInfo{Date: "2024-09-01T15:00:00+00:00"},
			Teams: Teams{Home: Team{ID: 40, Name: "Liverpool"}, Away: Team{ID: 33, Name: "United"}},
			Goals: Goals{Home: g(2), Away: g(2)},
		},
		{
			Info:  FixtureInfo{Date: "2024-03-17T15:00:00+00:00"},
			Teams: Teams{Home: Team{ID: 40, Name: "Liverpool"}, Away: Team{ID: 33, Name: "United"}},
			Goals: Goals{Home: g(1), Away: g(0)},
		},
		// Unfinished match is skipped.
		{
			Info:  FixtureInfo{Date: "2025-08-29T19:00:00+00:00"},
			Teams: Teams{Home: Team{ID: 33}, Away: Team{ID: 40}},
		},
	}

	stats := AnalyzeH2H(matches, 33)

	assert.Equal(t, 3, stats.TotalMatches)
	assert.Equal(t, 1, stats.Team1Wins)
	assert.Equal(t, 1, stats.Team2Wins)
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 5, stats.GoalsFor)
	assert.Equal(t, 4, stats.GoalsAgainst)
	assert.Equal(t, 2, stats.Over25Count)
	assert.Equal(t, 2, stats.BTTSCount)
	assert.InDelta(t, 1.0/3.0, stats.Team1WinRate, 1e-9)
	assert.InDelta(t, 3.0, stats.AvgGoals, 1e-9)
	require.Len(t, stats.Recent, 3)
	assert.Equal(t, "2025-01-10T15:00:00+00:00", stats.Recent[0].Date)
}

func TestAnalyzeH2H_Empty(t *testing.T) {
	stats := AnalyzeH2H(nil, 33)
	assert.Zero(t, stats.TotalMatches)
	assert.Zero(t, stats.Team1WinRate)
	assert.Empty(t, stats.Recent)
}

func TestDedupFixtures(t *testing.T) {
	in := []Fixture{
		{Info: FixtureInfo{ID: 2, Date: "2025-08-29T19:00:00+00:00"}},
		{Info: FixtureInfo{ID: 1, Date: "2025-08-29T12:00:00+00:00"}},
		{Info: FixtureInfo{ID: 2, Date: "2025-08-29T19:00:00+00:00"}},
	}
	out := dedupFixtures(in)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Info.ID)
	assert.Equal(t, 2, out[1].Info.ID)
}

// --- Seasons ---

func TestSeasonFor(t *testing.T) {
	aug := time.Date(2025, time.August, 29, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2025, SeasonFor(aug))
	assert.Equal(t, 2024, SeasonFor(feb))
}

func TestWinnerLeagues_KnownEntries(t *testing.T) {
	assert.Equal(t, "Premier League", WinnerLeagues[39])
	assert.Equal(t, "La Liga", WinnerLeagues[140])
	assert.NotContains(t, WinnerLeagues, 0)
}
