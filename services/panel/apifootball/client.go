// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package apifootball is a client for the API-Football V3 REST API.
//
// # Description
//
// The client covers the endpoints the panel consumes: fixtures, odds,
// injuries, predictions, standings, head-to-head and player leaders. All
// calls go through a single request path that paces outbound traffic,
// tracks the server's rate-limit headers, and retries exactly once after
// a 429.
//
// # Thread Safety
//
// A Client is safe for concurrent use.
package apifootball

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/tireder/betting-tips/services/panel/telemetry"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"
	apiHost        = "v3.football.api-sports.io"

	requestTimeout = 30 * time.Second

	// rateLimitBackoff is how long to wait before the single retry after
	// the server answers 429.
	rateLimitBackoff = 60 * time.Second

	// requestsPerSecond paces outbound calls below the plan's per-minute
	// ceiling so bulk fetches do not trip the server limiter at all.
	requestsPerSecond = 8
)

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to API-Football V3.
type Client struct {
	// HTTPClient is exported so tests can inject a mock transport.
	HTTPClient HTTPClient

	// BaseURL is exported so tests can point the client at a local server.
	BaseURL string

	// Metrics, when set, receives a per-request counter and latency
	// observation labelled by endpoint and status.
	Metrics *telemetry.Metrics

	apiKey  string
	limiter *rate.Limiter

	// rateRemaining mirrors the server's x-ratelimit-remaining header.
	rateRemaining atomic.Int64
}

// NewClient creates a Client authenticated with the given API key.
func NewClient(apiKey string) *Client {
	c := &Client{
		HTTPClient: &http.Client{Timeout: requestTimeout},
		BaseURL:    defaultBaseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
	c.rateRemaining.Store(100)
	return c
}

// RateLimitRemaining returns the last seen value of the server's
// remaining-requests header.
func (c *Client) RateLimitRemaining() int64 {
	return c.rateRemaining.Load()
}

// doRequest performs one GET against the API and decodes the envelope
// body into out. A 429 answer waits out the backoff and retries once.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out any) error {
	return c.doRequestRetry(ctx, endpoint, params, out, true)
}

func (c *Client) doRequestRetry(ctx context.Context, endpoint string, params url.Values, out any, allowRetry bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.BaseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-host", apiHost)
	req.Header.Set("x-rapidapi-key", c.apiKey)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	c.observe(ctx, endpoint, resp, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if v := resp.Header.Get("x-ratelimit-remaining"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.rateRemaining.Store(n)
		}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests && allowRetry:
		slog.Warn("api-football rate limit exceeded, backing off",
			"endpoint", endpoint, "backoff", rateLimitBackoff)
		io.Copy(io.Discard, resp.Body)
		select {
		case <-time.After(rateLimitBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		return c.doRequestRetry(ctx, endpoint, params, out, false)
	default:
		return fmt.Errorf("%s returned status %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// observe records the request counter and latency histogram for one
// completed (or failed) upstream call.
func (c *Client) observe(ctx context.Context, endpoint string, resp *http.Response, err error, elapsed time.Duration) {
	if c.Metrics == nil {
		return
	}
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	)
	c.Metrics.APIRequestsTotal.Add(ctx, 1, attrs)
	c.Metrics.APIRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// getList fetches an endpoint whose response is a list of T.
func getList[T any](ctx context.Context, c *Client, endpoint string, params url.Values) ([]T, error) {
	var env envelope[T]
	if err := c.doRequest(ctx, endpoint, params, &env); err != nil {
		return nil, err
	}
	if warns := envelopeWarnings(env.Errors); len(warns) > 0 {
		slog.Warn("api-football reported errors", "endpoint", endpoint, "errors", warns)
	}
	return env.Response, nil
}

// getFirst fetches an endpoint and returns the first response entry, or
// nil when the response is empty.
func getFirst[T any](ctx context.Context, c *Client, endpoint string, params url.Values) (*T, error) {
	list, err := getList[T](ctx, c, endpoint, params)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// envelopeWarnings normalizes the API's errors field, which is an empty
// list on success and an object on failure.
func envelopeWarnings(errs any) map[string]any {
	m, ok := errs.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	return m
}

// =============================================================================
// General
// =============================================================================

// Status returns account status and the remaining request quota.
func (c *Client) Status(ctx context.Context) (*AccountStatus, error) {
	return getFirst[AccountStatus](ctx, c, "status", nil)
}

// =============================================================================
// Fixtures
// =============================================================================

// FixtureQuery selects fixtures. Zero-valued fields are omitted.
type FixtureQuery struct {
	ID       int
	Live     string // "all" or "id-id-id"
	Date     string // YYYY-MM-DD
	League   int
	Season   int
	Team     int
	Last     int
	Next     int
	From     string
	To       string
	Status   string
	Timezone string
}

func (q FixtureQuery) values() url.Values {
	v := url.Values{}
	setInt(v, "id", q.ID)
	setStr(v, "live", q.Live)
	setStr(v, "date", q.Date)
	setInt(v, "league", q.League)
	setInt(v, "season", q.Season)
	setInt(v, "team", q.Team)
	setInt(v, "last", q.Last)
	setInt(v, "next", q.Next)
	setStr(v, "from", q.From)
	setStr(v, "to", q.To)
	setStr(v, "status", q.Status)
	setStr(v, "timezone", q.Timezone)
	return v
}

// Fixtures returns fixtures matching the query.
func (c *Client) Fixtures(ctx context.Context, q FixtureQuery) ([]Fixture, error) {
	return getList[Fixture](ctx, c, "fixtures", q.values())
}

// LiveScores returns all currently live fixtures, optionally restricted
// to the given league ids.
func (c *Client) LiveScores(ctx context.Context, leagueIDs []int) ([]Fixture, error) {
	live := "all"
	if len(leagueIDs) > 0 {
		parts := make([]string, len(leagueIDs))
		for i, id := range leagueIDs {
			parts[i] = strconv.Itoa(id)
		}
		live = strings.Join(parts, "-")
	}
	return c.Fixtures(ctx, FixtureQuery{Live: live})
}

// TeamForm returns a team's last n fixtures.
func (c *Client) TeamForm(ctx context.Context, teamID, n int) ([]Fixture, error) {
	return c.Fixtures(ctx, FixtureQuery{Team: teamID, Last: n})
}

// UpcomingFixtures returns a team's next n fixtures.
func (c *Client) UpcomingFixtures(ctx context.Context, teamID, n int) ([]Fixture, error) {
	return c.Fixtures(ctx, FixtureQuery{Team: teamID, Next: n})
}

// HeadToHead returns the last n meetings between two teams.
func (c *Client) HeadToHead(ctx context.Context, team1, team2, n int) ([]Fixture, error) {
	v := url.Values{}
	v.Set("h2h", fmt.Sprintf("%d-%d", team1, team2))
	setInt(v, "last", n)
	return getList[Fixture](ctx, c, "fixtures/headtohead", v)
}

// FixtureStatistics returns in-match statistics for a fixture.
func (c *Client) FixtureStatistics(ctx context.Context, fixtureID int) ([]FixtureStatistics, error) {
	v := url.Values{}
	setInt(v, "fixture", fixtureID)
	return getList[FixtureStatistics](ctx, c, "fixtures/statistics", v)
}

// FixtureEvents returns goals, cards and substitutions for a fixture.
func (c *Client) FixtureEvents(ctx context.Context, fixtureID int) ([]FixtureEvent, error) {
	v := url.Values{}
	setInt(v, "fixture", fixtureID)
	return getList[FixtureEvent](ctx, c, "fixtures/events", v)
}

// Lineups returns the lineups for a fixture.
func (c *Client) Lineups(ctx context.Context, fixtureID int) ([]Lineup, error) {
	v := url.Values{}
	setInt(v, "fixture", fixtureID)
	return getList[Lineup](ctx, c, "fixtures/lineups", v)
}

// =============================================================================
// Standings, teams, injuries, predictions
// =============================================================================

// Standings returns the ranked table for a league season.
func (c *Client) Standings(ctx context.Context, leagueID, season int) ([]StandingsGroup, error) {
	v := url.Values{}
	setInt(v, "league", leagueID)
	setInt(v, "season", season)
	return getList[StandingsGroup](ctx, c, "standings", v)
}

// TeamStatistics returns a team's season aggregate for a league.
func (c *Client) TeamStatistics(ctx context.Context, leagueID, season, teamID int) (*TeamStatistics, error) {
	v := url.Values{}
	setInt(v, "league", leagueID)
	setInt(v, "season", season)
	setInt(v, "team", teamID)

	// teams/statistics responds with a single object, not a list.
	var env struct {
		Errors   any            `json:"errors"`
		Response TeamStatistics `json:"response"`
	}
	if err := c.doRequest(ctx, "teams/statistics", v, &env); err != nil {
		return nil, err
	}
	return &env.Response, nil
}

// Injuries returns current injuries for a fixture, team or league. At
// least one selector must be set.
func (c *Client) Injuries(ctx context.Context, fixtureID, teamID, leagueID, season int) ([]Injury, error) {
	v := url.Values{}
	setInt(v, "fixture", fixtureID)
	setInt(v, "team", teamID)
	setInt(v, "league", leagueID)
	setInt(v, "season", season)
	if len(v) == 0 {
		return nil, fmt.Errorf("injuries: at least one selector required")
	}
	return getList[Injury](ctx, c, "injuries", v)
}

// Predictions returns the API's own prediction for a fixture, or nil when
// none is available.
func (c *Client) Predictions(ctx context.Context, fixtureID int) (*Prediction, error) {
	v := url.Values{}
	setInt(v, "fixture", fixtureID)
	return getFirst[Prediction](ctx, c, "predictions", v)
}

// =============================================================================
// Odds
// =============================================================================

// OddsQuery selects odds entries. Zero-valued fields are omitted.
type OddsQuery struct {
	Fixture   int
	League    int
	Season    int
	Date      string
	Bookmaker int
	Bet       int
	Page      int
}

func (q OddsQuery) values() url.Values {
	v := url.Values{}
	setInt(v, "fixture", q.Fixture)
	setInt(v, "league", q.League)
	setInt(v, "season", q.Season)
	setStr(v, "date", q.Date)
	setInt(v, "bookmaker", q.Bookmaker)
	setInt(v, "bet", q.Bet)
	setInt(v, "page", q.Page)
	return v
}

// Odds returns pre-match odds matching the query.
func (c *Client) Odds(ctx context.Context, q OddsQuery) ([]OddsEntry, error) {
	return getList[OddsEntry](ctx, c, "odds", q.values())
}

// LiveOdds returns in-play odds for a fixture or league.
func (c *Client) LiveOdds(ctx context.Context, fixtureID, leagueID int) ([]OddsEntry, error) {
	v := url.Values{}
	setInt(v, "fixture", fixtureID)
	setInt(v, "league", leagueID)
	return getList[OddsEntry](ctx, c, "odds/live", v)
}

// =============================================================================
// Player leaders
// =============================================================================

// TopScorers returns the leading scorers for a league season.
func (c *Client) TopScorers(ctx context.Context, leagueID, season int) ([]TopPlayer, error) {
	return c.topPlayers(ctx, "players/topscorers", leagueID, season)
}

// TopAssists returns the leading assist providers for a league season.
func (c *Client) TopAssists(ctx context.Context, leagueID, season int) ([]TopPlayer, error) {
	return c.topPlayers(ctx, "players/topassists", leagueID, season)
}

// TopYellowCards returns the players with most yellow cards.
func (c *Client) TopYellowCards(ctx context.Context, leagueID, season int) ([]TopPlayer, error) {
	return c.topPlayers(ctx, "players/topyellowcards", leagueID, season)
}

// TopRedCards returns the players with most red cards.
func (c *Client) TopRedCards(ctx context.Context, leagueID, season int) ([]TopPlayer, error) {
	return c.topPlayers(ctx, "players/topredcards", leagueID, season)
}

func (c *Client) topPlayers(ctx context.Context, endpoint string, leagueID, season int) ([]TopPlayer, error) {
	v := url.Values{}
	setInt(v, "league", leagueID)
	setInt(v, "season", season)
	return getList[TopPlayer](ctx, c, endpoint, v)
}

// =============================================================================
// Helpers
// =============================================================================

func setInt(v url.Values, key string, val int) {
	if val != 0 {
		v.Set(key, strconv.Itoa(val))
	}
}

func setStr(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}
