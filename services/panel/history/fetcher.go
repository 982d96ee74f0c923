// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tireder/betting-tips/services/panel/apifootball"
	"github.com/tireder/betting-tips/services/panel/telemetry"
)

// FixtureAPI is the slice of the API client the fetcher needs. It allows
// injecting mocks for testing.
type FixtureAPI interface {
	TeamForm(ctx context.Context, teamID, n int) ([]apifootball.Fixture, error)
	HeadToHead(ctx context.Context, team1, team2, n int) ([]apifootball.Fixture, error)
}

// Fetcher populates the cache from the API on demand, respecting the
// freshness window so repeat lookups stay local.
type Fetcher struct {
	api   FixtureAPI
	store *Store

	// Metrics, when set, counts cache hits and misses on the
	// freshness checks, labelled by record kind.
	Metrics *telemetry.Metrics
}

// NewFetcher creates a Fetcher over the given API client and store.
func NewFetcher(api FixtureAPI, store *Store) *Fetcher {
	return &Fetcher{api: api, store: store}
}

// TeamRatings returns a team's ratings, refreshing the cache from the
// API when stale. API failures fall back to whatever is cached, then to
// neutral defaults.
func (f *Fetcher) TeamRatings(ctx context.Context, teamID int, teamName string, leagueID int) Ratings {
	if cached, err := f.store.Team(teamID); err == nil && Fresh(cached.UpdatedAt) {
		f.countCache(ctx, true, "team")
		return cached.Ratings
	}
	f.countCache(ctx, false, "team")

	fixtures, err := f.api.TeamForm(ctx, teamID, MaxMatchesPerTeam)
	if err != nil || len(fixtures) == 0 {
		if err != nil {
			slog.Warn("team history fetch failed, using cached data",
				"team", teamName, "error", err)
		}
		if cached, cerr := f.store.Team(teamID); cerr == nil {
			return cached.Ratings
		}
		return defaultRatings()
	}

	matches := make([]MatchRecord, 0, len(fixtures))
	for _, fx := range fixtures {
		matches = append(matches, matchRecord(fx))
	}
	if err := f.store.SaveMatches(teamID, matches); err != nil {
		slog.Warn("save team matches failed", "team", teamName, "error", err)
	}

	ratings := CalculateRatings(teamID, teamName, matches)
	form := CalculateForm(teamID, teamName, matches)
	if err := f.store.SaveForm(form); err != nil {
		slog.Warn("save team form failed", "team", teamName, "error", err)
	}

	rec := TeamRecord{
		TeamID:   teamID,
		TeamName: teamName,
		LeagueID: leagueID,
		Ratings:  ratings,
	}
	if err := f.store.SaveTeam(rec); err != nil {
		slog.Warn("save team failed", "team", teamName, "error", err)
	}

	return ratings
}

// EnsureH2H returns the head-to-head record for a pairing, fetching and
// caching it when missing or stale.
func (f *Fetcher) EnsureH2H(ctx context.Context, team1ID, team2ID int, team1Name, team2Name string) (H2HRecord, error) {
	cached, cachedErr := f.store.H2H(team1ID, team2ID)
	if cachedErr == nil && Fresh(cached.UpdatedAt) {
		f.countCache(ctx, true, "h2h")
		return cached, nil
	}
	f.countCache(ctx, false, "h2h")

	fixtures, err := f.api.HeadToHead(ctx, team1ID, team2ID, MaxMatchesPerTeam)
	if err != nil {
		if cachedErr == nil {
			return cached, nil
		}
		return H2HRecord{}, fmt.Errorf("fetch h2h %d-%d: %w", team1ID, team2ID, err)
	}
	if len(fixtures) == 0 {
		if cachedErr == nil {
			return cached, nil
		}
		return H2HRecord{}, ErrNotFound
	}

	rec := parseH2H(fixtures, team1ID, team2ID, team1Name, team2Name)
	if err := f.store.SaveH2H(rec); err != nil {
		return rec, err
	}
	// Re-read so the caller sees the canonical side ordering.
	saved, err := f.store.H2H(team1ID, team2ID)
	if err != nil {
		return rec, nil
	}
	return saved, nil
}

// countCache records one hit or miss against the given record kind.
func (f *Fetcher) countCache(ctx context.Context, hit bool, kind string) {
	if f.Metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	if hit {
		f.Metrics.CacheHitsTotal.Add(ctx, 1, attrs)
		return
	}
	f.Metrics.CacheMissesTotal.Add(ctx, 1, attrs)
}

// matchRecord converts an API fixture to the cache representation.
func matchRecord(fx apifootball.Fixture) MatchRecord {
	rec := MatchRecord{
		FixtureID:    fx.Info.ID,
		HomeTeamID:   fx.Teams.Home.ID,
		AwayTeamID:   fx.Teams.Away.ID,
		HomeTeamName: fx.Teams.Home.Name,
		AwayTeamName: fx.Teams.Away.Name,
		LeagueID:     fx.League.ID,
		LeagueName:   fx.League.Name,
		Status:       fx.Info.Status.Short,
		Venue:        fx.Info.Venue.Name,
	}
	if len(fx.Info.Date) >= 10 {
		rec.Date = fx.Info.Date[:10]
	}
	if fx.Goals.Home != nil {
		rec.HomeGoals = *fx.Goals.Home
	}
	if fx.Goals.Away != nil {
		rec.AwayGoals = *fx.Goals.Away
	}
	return rec
}

// parseH2H summarizes up to ten meetings from team1's perspective.
func parseH2H(fixtures []apifootball.Fixture, team1ID, team2ID int, team1Name, team2Name string) H2HRecord {
	if len(fixtures) > MaxMatchesPerTeam {
		fixtures = fixtures[:MaxMatchesPerTeam]
	}

	rec := H2HRecord{
		Team1ID:      team1ID,
		Team2ID:      team2ID,
		Team1Name:    team1Name,
		Team2Name:    team2Name,
		TotalMatches: len(fixtures),
	}

	for _, fx := range fixtures {
		var home, away int
		if fx.Goals.Home != nil {
			home = *fx.Goals.Home
		}
		if fx.Goals.Away != nil {
			away = *fx.Goals.Away
		}

		var gf, ga int
		if fx.Teams.Home.ID == team1ID {
			gf, ga = home, away
		} else {
			gf, ga = away, home
		}
		rec.Team1Goals += gf
		rec.Team2Goals += ga
		switch {
		case gf > ga:
			rec.Team1Wins++
		case gf < ga:
			rec.Team2Wins++
		default:
			rec.Draws++
		}

		date := fx.Info.Date
		if len(date) >= 10 {
			date = date[:10]
		}
		rec.LastMatches = append(rec.LastMatches, fmt.Sprintf(
			"%s %s %d-%d %s", date, fx.Teams.Home.Name, home, away, fx.Teams.Away.Name))
	}

	return rec
}
